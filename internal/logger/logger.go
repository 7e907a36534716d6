// Package logger wraps logrus so the rest of the SDK logs through one place.
// The default level is warn to keep the library quiet inside applications;
// set MEILI_LOG_LEVEL or call SetLevel to change it.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)

	if levelStr := os.Getenv("MEILI_LOG_LEVEL"); levelStr != "" {
		level, err := logrus.ParseLevel(strings.ToLower(levelStr))
		if err != nil {
			l.Warnf("Invalid log level '%s', defaulting to 'warn'", levelStr)
			return l
		}
		l.SetLevel(level)
	}

	return l
}

// SetLevel overrides the configured log level
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// WithFields returns an entry carrying structured fields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// Debugf logs a formatted message at the debug level
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Infof logs a formatted message at the info level
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warnf logs a formatted message at the warn level
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Errorf logs a formatted message at the error level
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}
