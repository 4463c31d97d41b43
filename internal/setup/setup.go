// Package setup performs the one-time process initialization shared by
// every command: the logger and the metrics registry.
package setup

import (
	"os"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/robert-malhotra/bgpack/internal/config"
	"github.com/robert-malhotra/bgpack/internal/report"
	"github.com/robert-malhotra/bgpack/internal/source"
)

var (
	once     sync.Once
	logger   *logrus.Logger
	registry *prometheus.Registry
	initErr  error
)

// Initialize builds the process logger and metrics registry. Only the
// first call does any work; later calls return the same logger and
// error whatever cfg they pass.
func Initialize(cfg config.Log) (*logrus.Logger, error) {
	once.Do(func() {
		logger, initErr = NewLogger(cfg)
		if initErr != nil {
			return
		}
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if _, initErr = report.NewMetrics(registry); initErr != nil {
			return
		}
		logger.WithField("action", "startup").
			WithField("image_formats", strings.Join(source.Formats(), ",")).
			Debug("initialized")
	})
	return logger, initErr
}

// Registry returns the process registry, or nil before Initialize.
func Registry() *prometheus.Registry {
	return registry
}

// NewLogger returns a logger writing to stderr with the configured level
// and format.
func NewLogger(cfg config.Log) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	level := logrus.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = logrus.ParseLevel(cfg.Level); err != nil {
			return nil, err
		}
	}
	l.SetLevel(level)
	return l, nil
}

func reset() {
	once = sync.Once{}
	logger, registry, initErr = nil, nil, nil
}
