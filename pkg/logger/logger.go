package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"regreen-notification-service/pkg/config"
)

type ctxKey struct{}

// RequestIDKey is the context key middleware stores the request id under.
var RequestIDKey = ctxKey{}

// Logger owns the logrus instance and the rotating file writer, if any.
type Logger struct {
	entry *logrus.Logger
	file  *lumberjack.Logger
}

var (
	mu     sync.RWMutex
	global = &Logger{entry: logrus.StandardLogger()}
)

// NewLogger builds a Logger from the log section of cfg.
func NewLogger(cfg *config.Config) *Logger {
	l := logrus.New()
	lc := cfg.Log

	if strings.EqualFold(lc.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	out := &Logger{entry: l}
	var w io.Writer = os.Stdout
	if strings.EqualFold(lc.Output, "file") && lc.Filename != "" {
		out.file = &lumberjack.Logger{
			Filename:   lc.Filename,
			MaxSize:    lc.MaxSize,
			MaxAge:     lc.MaxAge,
			MaxBackups: lc.MaxBackups,
			Compress:   lc.Compress,
		}
		w = out.file
	}
	l.SetOutput(w)
	out.SetLevel(lc.Level)
	return out
}

// SetLevel applies a textual level; unknown levels fall back to info.
func (l *Logger) SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.entry.SetLevel(lvl)
}

// Raw exposes the underlying logrus logger.
func (l *Logger) Raw() *logrus.Logger {
	return l.entry
}

// Close flushes and closes the rotating file, if one is open.
func (l *Logger) Close() {
	if l == nil || l.file == nil {
		return
	}
	_ = l.file.Close()
}

// SetGlobalLogger replaces the process logger used by the package helpers.
func SetGlobalLogger(l *Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	global = l
	mu.Unlock()
}

func current() *logrus.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global.entry
}

// WithContext returns an entry tagged with the request id carried by ctx.
func WithContext(ctx context.Context) *logrus.Entry {
	e := logrus.NewEntry(current())
	if ctx == nil {
		return e
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		e = e.WithField("request_id", id)
	}
	return e
}

// WithFields returns an entry carrying the given structured fields.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return current().WithFields(logrus.Fields(fields))
}

func Debugf(format string, args ...interface{}) { current().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { current().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { current().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { current().Errorf(format, args...) }

// Fatal logs msg and exits the process.
func Fatal(msg string) {
	current().Fatal(msg)
}

// Fatalf is Fatal with formatting.
func Fatalf(format string, args ...interface{}) {
	Fatal(fmt.Sprintf(format, args...))
}
