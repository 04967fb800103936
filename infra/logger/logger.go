package logger

import corelogger "github.com/stagewatch/stagewatch/core/logger"

// Logger re-exports the core contract so infrastructure packages need a
// single logging import.
type Logger = corelogger.Logger

// New returns a component-tagged Logger backed by zerolog.
func New(component string) Logger {
	return newZerologLogger(component)
}

// NopLogger discards everything. Default for tests and disabled sinks.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}
