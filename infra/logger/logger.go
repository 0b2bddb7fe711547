// Package logger provides the zerolog implementation of the core logging
// contract.
package logger

import corelogger "github.com/kilianp07/gridmon/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything. Tests use it to silence components.
type NopLogger = corelogger.Nop

// New returns a Logger tagged with component. Output format follows APP_ENV
// and the level follows LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
