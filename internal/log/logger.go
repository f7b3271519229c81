// Package log is a thin leveled logging facade over logrus used across
// trackd. Commands toggle debug output once at startup; everything else
// calls the package-level helpers.
package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	return l
}

// SetDebug toggles debug-level output.
func SetDebug(debug bool) {
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Info logs a formatted informational message
func Info(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Debug logs a formatted debug message
func Debug(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Warn logs a formatted warning message
func Warn(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Error logs a formatted error message
func Error(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// WithField returns a logrus entry carrying a structured field, for call
// sites that log the same context repeatedly.
func WithField(key string, value interface{}) *logrus.Entry {
	return logger.WithField(key, value)
}
