// Command bgpack packs background image datasets into one HDF5 container
// and provides the tools that go with it.
package main

import (
	"fmt"
	"io"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/bgpack/internal/config"
	"github.com/robert-malhotra/bgpack/internal/setup"
)

type globalOptions struct {
	Config    string `long:"config" description:"YAML configuration file"`
	LogLevel  string `long:"log-level" description:"Log level, overrides the config file"`
	LogFormat string `long:"log-format" choice:"text" choice:"json" description:"Log format, overrides the config file"`
}

type app struct {
	opts   globalOptions
	stdout io.Writer
	cfg    config.Config
	logger *logrus.Logger
}

// init loads the configuration and initializes the process. Commands call
// it after flags are parsed.
func (a *app) init() error {
	cfg, err := config.Load(a.opts.Config)
	if err != nil {
		return err
	}
	if a.opts.LogLevel != "" {
		cfg.Log.Level = a.opts.LogLevel
	}
	if a.opts.LogFormat != "" {
		cfg.Log.Format = a.opts.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	a.cfg = cfg
	a.logger, err = setup.Initialize(cfg.Log)
	return err
}

func newParser(a *app) *flags.Parser {
	p := flags.NewParser(&a.opts, flags.HelpFlag|flags.PassDoubleDash)
	p.AddCommand("pack", "Pack a dataset root into one container",
		"Joins bg_img, depth.h5 and seg.h5 by the names in imnames.cp and writes "+
			"the complete entries to groups image, depth and seg, with a run summary in meta.",
		&packCommand{app: a})
	p.AddCommand("inspect", "Print the object tree of a container",
		"Lists groups, datasets and attributes of an HDF5 file.",
		&inspectCommand{app: a})
	p.AddCommand("fontmodel", "Fit glyph height against point size for each font",
		"Measures every .ttf and .otf font under a directory at sizes 8 to 199 and "+
			"saves a linear model [a, b] per font.",
		&fontModelCommand{app: a})
	p.AddCommand("viz", "Draw text bounding boxes onto synthesized images",
		"Renders charBB and wordBB (or lineBB) of every image in the data group.",
		&vizCommand{app: a})
	return p
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout}
	if _, err := newParser(a).ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, ferr.Message)
			return 0
		}
		if a.logger != nil {
			a.logger.WithField("action", "bgpack").WithError(err).Error("failed")
		} else {
			fmt.Fprintln(stderr, "bgpack:", err)
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
