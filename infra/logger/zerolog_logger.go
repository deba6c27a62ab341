package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/elevsim/core/logger"
)

// ZerologLogger implements Logger on top of rs/zerolog.
type ZerologLogger struct {
	z zerolog.Logger
}

// NewZerologLogger writes JSON lines to the current output, or a console
// rendering when APP_ENV=dev. Every line carries the component field.
func NewZerologLogger(component string) Logger {
	w := currentOutput()
	if strings.EqualFold(os.Getenv("APP_ENV"), "dev") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}
	return NewWithWriter(component, w)
}

// NewWithWriter creates a JSON logger writing to w.
func NewWithWriter(component string, w io.Writer) Logger {
	return &ZerologLogger{z: zerolog.New(w).With().Timestamp().Str("component", component).Logger()}
}

func (l *ZerologLogger) Debugf(format string, args ...any) { l.z.Debug().Msgf(format, args...) }

func (l *ZerologLogger) Debugw(msg string, fields corelogger.Fields) {
	l.z.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any)  { l.z.Info().Msgf(format, args...) }
func (l *ZerologLogger) Warnf(format string, args ...any)  { l.z.Warn().Msgf(format, args...) }
func (l *ZerologLogger) Errorf(format string, args ...any) { l.z.Error().Msgf(format, args...) }
