package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var log = newLogger(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("ENVIRONMENT"))

func newLogger(out io.Writer, level, environment string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(parseLevel(level, environment))

	if environment == "production" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}
	return l
}

func parseLevel(level, environment string) logrus.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARN":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	case "INFO":
		return logrus.InfoLevel
	}
	if environment == "development" {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

// Configure replaces the package logger once configuration has been loaded.
func Configure(level, environment string) {
	log = newLogger(os.Stdout, level, environment)
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

func Get() *logrus.Logger {
	return log
}

func Info(format string, v ...interface{}) {
	log.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

// WithFields returns an entry carrying structured context.
func WithFields(fields map[string]interface{}) *logrus.Entry {
	return log.WithFields(logrus.Fields(fields))
}

func WithComplaint(complaintID, component string) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"complaint_id": complaintID,
		"component":    component,
	})
}
