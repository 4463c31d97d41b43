package report

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons used as the reason label of the skipped counter.
const (
	ReasonDecode = "decode_failed"
	ReasonDepth  = "missing_depth"
	ReasonSeg    = "missing_seg"
)

// Metrics are the collectors of a packing run.
type Metrics struct {
	Written  prometheus.Counter
	Skipped  *prometheus.CounterVec
	Duration prometheus.Histogram
}

// NewMetrics registers the run collectors on reg. Collectors already
// present on reg are reused, so several runs in one process share them.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Written: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bgpack_entries_written_total",
			Help: "Entries written to the packed container",
		}),
		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bgpack_entries_skipped_total",
			Help: "Entries skipped, by reason",
		}, []string{"reason"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bgpack_pack_duration_seconds",
			Help:    "Wall time of a packing run in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
	var err error
	if m.Written, err = register(reg, m.Written); err != nil {
		return nil, err
	}
	if m.Skipped, err = register(reg, m.Skipped); err != nil {
		return nil, err
	}
	if m.Duration, err = register(reg, m.Duration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, errors.Wrap(err, "register collector")
}
