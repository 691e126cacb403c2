// Package logging builds the process-wide structured logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logrus logger configured for the given environment. JSON
// output is used in production so log shippers can parse it; everything
// else gets the human readable text formatter.
func New(environment, level string) *logrus.Logger {
	return NewWithOutput(os.Stdout, environment, level)
}

func NewWithOutput(out io.Writer, environment, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)

	if environment == "production" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	return l
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
