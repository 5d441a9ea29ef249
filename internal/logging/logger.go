// Package logging adapts logrus to the key/value logger contract used by the
// service and the HTTP layer.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger writes structured entries through logrus. Args passed to the level
// methods are alternating key/value pairs.
type Logger struct {
	entry *logrus.Entry
}

// Options configures New.
type Options struct {
	Level  string // debug|info|warn|error (default info)
	Format string // json|text (default json)
	Output io.Writer
}

// New builds a logger. An unknown level falls back to info.
func New(opts Options) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	if opts.Output != nil {
		base.SetOutput(opts.Output)
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)
	if strings.EqualFold(opts.Format, "text") {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Logger{entry: logrus.NewEntry(base)}
}

// With returns a child logger that adds the given key/value pairs to every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{entry: l.entry.WithFields(fields(args))}
}

// Entry exposes the underlying logrus entry.
func (l *Logger) Entry() *logrus.Entry { return l.entry }

func (l *Logger) Debug(msg string, args ...any) { l.entry.WithFields(fields(args)).Debug(msg) }
func (l *Logger) Info(msg string, args ...any)  { l.entry.WithFields(fields(args)).Info(msg) }
func (l *Logger) Warn(msg string, args ...any)  { l.entry.WithFields(fields(args)).Warn(msg) }
func (l *Logger) Error(msg string, args ...any) { l.entry.WithFields(fields(args)).Error(msg) }

// fields pairs up args. A trailing key without a value is kept under
// "!BADKEY"; non-string keys are formatted with %v.
func fields(args []any) logrus.Fields {
	out := make(logrus.Fields, len(args)/2+1)
	for i := 0; i < len(args); i += 2 {
		if i+1 >= len(args) {
			out["!BADKEY"] = args[i]
			break
		}
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		val := args[i+1]
		if err, isErr := val.(error); isErr {
			val = err.Error()
		}
		out[key] = val
	}
	return out
}
