package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/doeshing/gitscribe-go/internal/ports"
)

// ZeroLogger routes ports.Logger calls to zerolog.
type ZeroLogger struct {
	log zerolog.Logger
}

// New creates a console logger on w. Verbose lowers the level to debug.
func New(w io.Writer, verbose bool) *ZeroLogger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	return &ZeroLogger{log: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// NewStderr is the CLI default.
func NewStderr(verbose bool) *ZeroLogger {
	return New(os.Stderr, verbose)
}

// NewJSON writes newline-delimited JSON, mostly useful in tests.
func NewJSON(w io.Writer, level zerolog.Level) *ZeroLogger {
	return &ZeroLogger{log: zerolog.New(w).Level(level)}
}

// NewNop discards everything.
func NewNop() *ZeroLogger {
	return &ZeroLogger{log: zerolog.Nop()}
}

func (l *ZeroLogger) Debug(msg string, fields map[string]interface{}) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Info(msg string, fields map[string]interface{}) {
	l.log.Info().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, fields map[string]interface{}) {
	l.log.Warn().Fields(fields).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.log.Error().Err(err).Fields(fields).Msg(msg)
}

var _ ports.Logger = (*ZeroLogger)(nil)
