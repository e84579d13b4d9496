package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Interface is the interface all loggers have to implement
type Interface interface {
	Error(message string, err error)
	Info(message string)
	Debug(message string)
	Fatal(err error)
}

// Logger writes structured log lines with zerolog, the zero value discards everything
type Logger struct {
	base    zerolog.Logger
	hasBase bool
}

// NewLogger builds a Logger, console output for development and JSON lines otherwise
func NewLogger(out io.Writer, console bool, debug bool) Logger {
	if out == nil {
		out = os.Stdout
	}

	if console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return Logger{
		base:    zerolog.New(out).Level(level).With().Timestamp().Logger(),
		hasBase: true,
	}
}

func (l Logger) root() *zerolog.Logger {
	if !l.hasBase {
		nop := zerolog.Nop()
		return &nop
	}
	return &l.base
}

// With returns a logger that adds a fixed field to every line
func (l Logger) With(key string, value string) Logger {
	return Logger{base: l.root().With().Str(key, value).Logger(), hasBase: true}
}

// Error is for throwing a log message with status Error
func (l Logger) Error(message string, err error) {
	l.root().Error().Err(err).Msg(message)
}

// Info is for throwing a log message with status Info
func (l Logger) Info(message string) {
	l.root().Info().Msg(message)
}

// Debug is for throwing a log message with status Debug
func (l Logger) Debug(message string) {
	l.root().Debug().Msg(message)
}

// Fatal is for throwing a log message with status Fatal
func (l Logger) Fatal(err error) {
	l.root().WithLevel(zerolog.FatalLevel).Err(err).Msg("fatal error")
	os.Exit(1)
}
