// Package config holds the settings of the bgpack commands. Values come
// from an optional YAML file; command-line flags override them.
package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

// Log selects the log level and format ("text" or "json").
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Pack configures the pack command.
type Pack struct {
	Input       string `yaml:"input"`
	Output      string `yaml:"output"`
	Limit       *int   `yaml:"limit"`
	MetricsFile string `yaml:"metrics_file"`
}

// FontModel configures the fontmodel command.
type FontModel struct {
	Fonts  string `yaml:"fonts"`
	Output string `yaml:"output"`
	VizDir string `yaml:"viz_dir"`
}

// Viz configures the viz command.
type Viz struct {
	DB       string `yaml:"db"`
	Out      string `yaml:"out"`
	LineOnly bool   `yaml:"line_only"`
}

// Config is the whole configuration file.
type Config struct {
	Log       Log       `yaml:"log"`
	Pack      Pack      `yaml:"pack"`
	FontModel FontModel `yaml:"fontmodel"`
	Viz       Viz       `yaml:"viz"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Log:       Log{Level: "info", Format: "text"},
		FontModel: FontModel{Output: "font_px2pt.h5"},
		Viz:       Viz{DB: "results/SynthText.h5", Out: "results/visualized"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Validate checks values that do not depend on the command being run.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Pack.Limit != nil && *c.Pack.Limit < 0 {
		return errors.Errorf("pack.limit must be >= 0, got %d", *c.Pack.Limit)
	}
	return nil
}
