// Package log wraps logrus behind a small Logger interface so packages do
// not depend on the logging backend directly.
package log

import (
	"sync"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

// Config controls the process-wide logger.
type Config struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // text | json
}

var (
	once   sync.Once
	logger Logger = newLogrusLogger(Config{Level: "info", Format: "text"})
)

// GetLogger returns the process-wide logger. Safe before Init: a default
// info-level text logger is used until then.
func GetLogger() Logger {
	return logger
}

// Init configures the process-wide logger once.
func Init(cfg Config) {
	once.Do(func() {
		logger = newLogrusLogger(cfg)
	})
}
