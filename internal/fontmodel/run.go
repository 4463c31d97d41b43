package fontmodel

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options configure a fitting run.
type Options struct {
	Fonts  string // directory searched for font files
	Output string // model container
	VizDir string // plots are written here when set
}

// Run fits every font under opts.Fonts and saves the models. It returns
// the number of fonts fitted.
func Run(opts Options, logger logrus.FieldLogger) (int, error) {
	if opts.Fonts == "" || opts.Output == "" {
		return 0, errors.New("font directory and output path are required")
	}
	paths, err := Discover(opts.Fonts)
	if err != nil {
		return 0, err
	}
	logger.WithField("action", "fontmodel").Infof("Total fonts: %d", len(paths))

	models := FitAll(paths, logger)
	if opts.VizDir != "" {
		sizes := Sizes()
		for _, m := range models {
			p := filepath.Join(opts.VizDir, PlotName(m))
			if err := Plot(m, sizes).SavePNG(p); err != nil {
				logger.WithField("action", "fontmodel_plot").WithField("font", m.Name).
					WithError(err).Warn("plot save failed")
			}
		}
	}
	if err := Save(opts.Output, models); err != nil {
		return 0, err
	}
	logger.WithField("action", "fontmodel").Infof("Saved: %s", opts.Output)
	return len(models), nil
}
