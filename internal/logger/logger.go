// Package logger builds the service's structured logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// ServiceName is stamped on every entry
const ServiceName = "videohost"

// Options configure New
type Options struct {
	Level  string // debug, info, warn, error
	Format string // json or text
	Output io.Writer
}

// New returns a logger carrying the service field. Unknown levels fall back to info.
func New(opts Options) *logrus.Entry {
	l := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if opts.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	return l.WithField("service", ServiceName)
}

// Discard is a logger that writes nowhere, for tests and tools
func Discard() *logrus.Entry {
	return New(Options{Output: io.Discard})
}
