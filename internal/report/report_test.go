package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestReporter(reg *prometheus.Registry) (*Reporter, *test.Hook, *clock) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	c := &clock{t: time.Unix(1000, 0)}
	r := New(logger, reg)
	r.now = c.now
	return r, hook, c
}

func TestProgressLines(t *testing.T) {
	r, hook, c := newTestReporter(nil)
	r.every = 2
	r.Start(5, "/in", "/out.h5")
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "Packing 5 images from /in -> /out.h5", hook.LastEntry().Message)

	c.t = c.t.Add(1500 * time.Millisecond)
	r.Written(1)
	assert.Len(t, hook.Entries, 1)
	r.Written(2)
	require.Len(t, hook.Entries, 2)
	assert.Equal(t, "wrote 2 entries (elapsed 1.5s)", hook.LastEntry().Message)
	assert.Equal(t, "pack_progress", hook.LastEntry().Data["action"])

	r.Written(3)
	r.Written(4)
	assert.Len(t, hook.Entries, 3)
	assert.Equal(t, float64(4), testutil.ToFloat64(r.metrics.Written))
}

func TestSkipsAndDone(t *testing.T) {
	r, hook, c := newTestReporter(nil)
	r.Start(3, "/in", "/out.h5")

	r.DecodeFailed("c.jpg", errors.New("bad jpeg"))
	e := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, e.Level)
	assert.Equal(t, "c.jpg", e.Data["id"])
	assert.EqualError(t, e.Data[logrus.ErrorKey].(error), "bad jpeg")

	r.Missing("b.jpg", ReasonDepth)
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
	r.Missing("d.jpg", ReasonDepth)

	assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.Skipped.WithLabelValues(ReasonDecode)))
	assert.Equal(t, float64(2), testutil.ToFloat64(r.metrics.Skipped.WithLabelValues(ReasonDepth)))

	c.t = c.t.Add(2 * time.Second)
	r.Done(Counts{Written: 1, MissingDepth: 2, DecodeFailed: 1}, "/out.h5")
	e = hook.LastEntry()
	assert.Equal(t, "DONE: wrote 1 entries (skipped depth-missing=2, seg-missing=0) -> /out.h5 in 2.0s", e.Message)
	assert.Equal(t, 1, e.Data["decode_failed"])
	assert.Equal(t, 1, testutil.CollectAndCount(r.metrics.Duration))
}

func TestSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, _, _ := newTestReporter(reg)
	b, _, _ := newTestReporter(reg)
	require.NotNil(t, a.metrics)
	require.NotNil(t, b.metrics)
	a.Written(1)
	b.Written(1)
	assert.Equal(t, float64(2), testutil.ToFloat64(b.metrics.Written))
}

func TestRegisterConflict(t *testing.T) {
	reg := prometheus.NewRegistry()
	// same name, different help: not reusable
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bgpack_entries_written_total",
		Help: "something else",
	}))
	r, hook, _ := newTestReporter(reg)
	assert.Nil(t, r.metrics)
	assert.Equal(t, "metrics disabled", hook.Entries[0].Message)

	// the run still reports
	r.Written(500)
	r.DecodeFailed("x", errors.New("boom"))
	r.Done(Counts{}, "out.h5")
}

func TestWriteMetrics(t *testing.T) {
	r, _, _ := newTestReporter(nil)
	r.Written(1)
	r.Missing("x", ReasonSeg)
	p := filepath.Join(t.TempDir(), "pack.prom")
	require.NoError(t, r.WriteMetrics(p))
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bgpack_entries_written_total 1")
	assert.Contains(t, string(data), `bgpack_entries_skipped_total{reason="missing_seg"} 1`)
}
