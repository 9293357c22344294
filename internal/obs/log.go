package obs

import (
	"sync"

	"go.uber.org/zap"
)

var (
	loggerMu sync.Mutex
	logger   *zap.Logger
)

// InitLogger builds the shared logger. Development mode enables human
// readable output and stack traces; production emits JSON lines.
func InitLogger(development bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if development {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
	return nil
}

// Logger returns the shared structured logger used across the service.
// Falls back to a no-op logger when InitLogger was never called (tests).
func Logger() *zap.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

// SetLogger replaces the shared logger. Intended for tests that need to
// capture output.
func SetLogger(l *zap.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}

// Sync flushes buffered log entries. Called on shutdown.
func Sync() {
	_ = Logger().Sync()
}
