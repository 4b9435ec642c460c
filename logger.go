package wail

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wail/graph"
	"github.com/wippyai/wail/resolve"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the pipeline logger. It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures logging for the pipeline and every package it drives.
// This must be called before Run.
func SetLogger(l *zap.Logger) {
	logger = l
	graph.SetLogger(l.Named("graph"))
	resolve.SetLogger(l.Named("resolve"))
}
