package cobj

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger   *zap.Logger
	loggerMu sync.RWMutex
)

// Logger returns the package logger. It is a no-op logger by default.
func Logger() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// SetLogger installs a logger for call and conversion diagnostics.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// debugf is a no-op debug helper. Enable by setting debug = true.
var debug = false

func debugf(format string, args ...any) {
	if debug {
		Logger().Sugar().Debugf(format, args...)
	}
}
