package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// zerologLogger adapts rs/zerolog to the core Logger contract. Every entry
// carries the component it was created for, so one output stream serves the
// whole service.
type zerologLogger struct {
	z zerolog.Logger
}

func newZerologLogger(component string) Logger {
	z := zerolog.New(logWriter()).With().Timestamp().Str("component", component).Logger()
	return &zerologLogger{z: z}
}

// logWriter picks human-readable console output when APP_ENV=dev and plain
// JSON everywhere else.
func logWriter() io.Writer {
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return os.Stdout
}

func (l *zerologLogger) Debugf(format string, args ...any) { l.z.Debug().Msgf(format, args...) }
func (l *zerologLogger) Infof(format string, args ...any)  { l.z.Info().Msgf(format, args...) }
func (l *zerologLogger) Warnf(format string, args ...any)  { l.z.Warn().Msgf(format, args...) }
func (l *zerologLogger) Errorf(format string, args ...any) { l.z.Error().Msgf(format, args...) }

func (l *zerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.z.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}
