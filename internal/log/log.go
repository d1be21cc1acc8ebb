// Package log provides the package-level zap logger shared by the pipeline
// and the CLI.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

var log *zap.SugaredLogger

// Init initializes the package-level logger. With debug set, the development
// configuration is used (human-readable output, debug level enabled).
func Init(debug bool) error {
	var zl *zap.Logger
	var err error

	if debug {
		zl, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		zl, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	log = zl.Sugar()
	return nil
}

// Sync flushes buffered log entries. Call before process exit.
func Sync() {
	if log != nil {
		log.Sync()
	}
}

func logger() *zap.SugaredLogger {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return log
}

// Debugf logs a formatted message at debug level.
func Debugf(format string, args ...any) { logger().Debugf(format, args...) }

// Infof logs a formatted message at info level.
func Infof(format string, args ...any) { logger().Infof(format, args...) }

// Warnf logs a formatted message at warn level.
func Warnf(format string, args ...any) { logger().Warnf(format, args...) }

// Errorf logs a formatted message at error level.
func Errorf(format string, args ...any) { logger().Errorf(format, args...) }
