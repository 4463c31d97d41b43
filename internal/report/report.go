// Package report logs the progress of a packing run and keeps its
// counters as Prometheus metrics.
package report

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// ProgressEvery is the number of written entries between progress lines.
const ProgressEvery = 500

// Counts are the tallies of a run.
type Counts struct {
	Written      int
	MissingDepth int
	MissingSeg   int
	DecodeFailed int
}

// Reporter observes a packing run. Its methods never fail; problems with
// metrics are logged.
type Reporter struct {
	logger   logrus.FieldLogger
	metrics  *Metrics
	gatherer prometheus.Gatherer
	every    int
	now      func() time.Time
	start    time.Time
}

// New returns a reporter logging to logger. Metrics are registered on reg,
// or on a private registry when reg is nil.
func New(logger logrus.FieldLogger, reg *prometheus.Registry) *Reporter {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Reporter{
		logger:   logger,
		gatherer: reg,
		every:    ProgressEvery,
		now:      time.Now,
	}
	m, err := NewMetrics(reg)
	if err != nil {
		logger.WithField("action", "pack_metrics").WithError(err).
			Warn("metrics disabled")
	}
	r.metrics = m
	r.start = r.now()
	return r
}

// Start logs the beginning of a run over n candidates.
func (r *Reporter) Start(n int, input, output string) {
	r.start = r.now()
	r.logger.WithField("action", "pack_start").
		WithField("candidates", n).
		Infof("Packing %d images from %s -> %s", n, input, output)
}

// Elapsed returns the time since Start.
func (r *Reporter) Elapsed() time.Duration {
	return r.now().Sub(r.start)
}

// Written records that the n-th entry was written.
func (r *Reporter) Written(n int) {
	if r.metrics != nil {
		r.metrics.Written.Inc()
	}
	if r.every > 0 && n%r.every == 0 {
		r.logger.WithField("action", "pack_progress").
			WithField("written", n).
			Infof("wrote %d entries (elapsed %.1fs)", n, r.Elapsed().Seconds())
	}
}

// DecodeFailed records an image that could not be read.
func (r *Reporter) DecodeFailed(id string, err error) {
	r.skip(ReasonDecode)
	r.logger.WithField("action", "pack_decode").
		WithField("id", id).
		WithError(err).
		Warn("could not read image, skipping")
}

// Missing records an entry dropped because a source lacks it. These are
// expected and only logged at debug level.
func (r *Reporter) Missing(id, reason string) {
	r.skip(reason)
	r.logger.WithField("action", "pack_skip").
		WithField("id", id).
		WithField("reason", reason).
		Debug("entry skipped")
}

func (r *Reporter) skip(reason string) {
	if r.metrics != nil {
		r.metrics.Skipped.WithLabelValues(reason).Inc()
	}
}

// Done logs the final summary line.
func (r *Reporter) Done(c Counts, output string) {
	elapsed := r.Elapsed()
	if r.metrics != nil {
		r.metrics.Duration.Observe(elapsed.Seconds())
	}
	r.logger.WithField("action", "pack_done").
		WithField("written", c.Written).
		WithField("missing_depth", c.MissingDepth).
		WithField("missing_seg", c.MissingSeg).
		WithField("decode_failed", c.DecodeFailed).
		Infof("DONE: wrote %d entries (skipped depth-missing=%d, seg-missing=%d) -> %s in %.1fs",
			c.Written, c.MissingDepth, c.MissingSeg, output, elapsed.Seconds())
}

// WriteMetrics writes the gathered metrics to path in the text exposition
// format.
func (r *Reporter) WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, r.gatherer)
}
