package pack

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/bgpack/internal/names"
	"github.com/robert-malhotra/bgpack/internal/report"
	"github.com/robert-malhotra/bgpack/internal/source"
)

// Input store names inside a dataset root.
const (
	DepthFile = "depth.h5"
	SegFile   = "seg.h5"
)

// Options configure a packing run.
type Options struct {
	Input       string // dataset root
	Output      string // container path
	Limit       *int   // nil for no limit
	MetricsFile string // optional Prometheus text file
	Registry    *prometheus.Registry
}

// Validate checks the options before any file is touched.
func (o Options) Validate() error {
	if o.Input == "" {
		return errors.New("input directory is required")
	}
	if o.Output == "" {
		return errors.New("output path is required")
	}
	if o.Limit != nil && *o.Limit < 0 {
		return errors.Errorf("limit must be >= 0, got %d", *o.Limit)
	}
	return nil
}

// RequiredInputs lists the files a dataset root must have.
func RequiredInputs(root string) []string {
	return []string{
		names.Path(root),
		filepath.Join(root, DepthFile),
		filepath.Join(root, SegFile),
	}
}

// Run packs the dataset at opts.Input into opts.Output. Missing inputs are
// reported before the output is touched. The source stores are closed on
// every return path.
func Run(ctx context.Context, opts Options, logger logrus.FieldLogger) (s Summary, err error) {
	if err := opts.Validate(); err != nil {
		return s, err
	}
	for _, p := range RequiredInputs(opts.Input) {
		if _, err := os.Stat(p); err != nil {
			return s, &MissingInputError{Path: p}
		}
	}

	index, err := names.Load(opts.Input)
	if errors.Is(err, names.ErrMissing) {
		return s, &MissingInputError{Path: names.Path(opts.Input)}
	}
	if err != nil {
		return s, err
	}

	images := source.NewImageStore(filepath.Join(opts.Input, source.ImageDir))
	depth, err := source.OpenDepthStore(filepath.Join(opts.Input, DepthFile))
	if err != nil {
		return s, err
	}
	defer closeStore(&err, depth)
	seg, err := source.OpenSegStore(filepath.Join(opts.Input, SegFile))
	if err != nil {
		return s, err
	}
	defer closeStore(&err, seg)
	defer closeStore(&err, images)

	w, err := NewContainerWriter(opts.Output)
	if err != nil {
		return s, err
	}
	defer closeStore(&err, w)

	rep := report.New(logger, opts.Registry)
	attempted := len(index)
	if opts.Limit != nil && *opts.Limit < attempted {
		attempted = *opts.Limit
	}
	rep.Start(attempted, opts.Input, opts.Output)

	engine := &Engine{Images: images, Depth: depth, Seg: seg, Limit: opts.Limit, Observer: rep}
	s, err = engine.Run(ctx, index, w)
	if err != nil {
		return s, err
	}
	if s.SourceDir, err = filepath.Abs(opts.Input); err != nil {
		return s, errors.Wrap(err, "resolve input root")
	}
	if err = w.Finalize(s, index); err != nil {
		return s, err
	}
	if err = w.Close(); err != nil {
		return s, err
	}
	rep.Done(s.Counts, opts.Output)

	if opts.MetricsFile != "" {
		if merr := rep.WriteMetrics(opts.MetricsFile); merr != nil {
			logger.WithField("action", "pack_metrics").WithError(merr).
				Warn("could not write metrics file")
		}
	}
	return s, nil
}

type closer interface {
	Close() error
}

func closeStore(errp *error, c closer) {
	if cerr := c.Close(); cerr != nil {
		*errp = multierror.Append(*errp, cerr).ErrorOrNil()
	}
}
