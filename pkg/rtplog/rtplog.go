// Package rtplog provides the diagnostic logging every endpoint uses: a
// level filter backed by logrus, with structured fields attachable to a
// logger via With (the receiver session attaches its id this way). Always
// writes to stderr: stdout/stdin are reserved for the byte sink/source.
package rtplog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return l
}

// SetLevel sets the minimum level that will be emitted. Accepts "debug",
// "info", "warn", "error".
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)
}

// Logger is a namespaced diagnostic logger, e.g. one per connection session,
// carrying a fixed set of structured fields (peer address, session id, ...)
// on every line it emits.
type Logger struct {
	entry *logrus.Entry
}

// New returns a root logger with no fields attached.
func New() *Logger {
	return &Logger{entry: logrus.NewEntry(base)}
}

// With returns a child logger carrying the given fields in addition to this
// logger's own.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// Fatalf logs at fatal level and exits the process with status 1.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}
