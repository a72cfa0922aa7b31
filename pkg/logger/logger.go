// Package logger provides leveled, component-tagged logging for mediaclaw.
//
// Components (gateway, discord, engine, proxy, ...) tag every record so a
// single bot log can be filtered per subsystem. Logging is fire-and-forget:
// callers never block on the sink and never receive errors from it.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Level mirrors the subset of logrus levels the bot uses.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// SetLevel changes the minimum level that gets emitted.
func SetLevel(level Level) {
	switch level {
	case DEBUG:
		log.SetLevel(logrus.DebugLevel)
	case INFO:
		log.SetLevel(logrus.InfoLevel)
	case WARN:
		log.SetLevel(logrus.WarnLevel)
	case ERROR:
		log.SetLevel(logrus.ErrorLevel)
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func entry(component string, fields map[string]any) *logrus.Entry {
	e := log.WithField("component", component)
	if len(fields) > 0 {
		e = e.WithFields(logrus.Fields(fields))
	}
	return e
}

// DebugC logs a debug message for a component.
func DebugC(component, msg string) { entry(component, nil).Debug(msg) }

// DebugCF logs a debug message for a component with structured fields.
func DebugCF(component, msg string, fields map[string]any) { entry(component, fields).Debug(msg) }

// InfoC logs an info message for a component.
func InfoC(component, msg string) { entry(component, nil).Info(msg) }

// InfoCF logs an info message for a component with structured fields.
func InfoCF(component, msg string, fields map[string]any) { entry(component, fields).Info(msg) }

// WarnC logs a warning for a component.
func WarnC(component, msg string) { entry(component, nil).Warn(msg) }

// WarnCF logs a warning for a component with structured fields.
func WarnCF(component, msg string, fields map[string]any) { entry(component, fields).Warn(msg) }

// ErrorC logs an error for a component.
func ErrorC(component, msg string) { entry(component, nil).Error(msg) }

// ErrorCF logs an error for a component with structured fields.
func ErrorCF(component, msg string, fields map[string]any) { entry(component, fields).Error(msg) }
