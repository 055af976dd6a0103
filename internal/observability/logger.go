// Package observability provides the logger and Prometheus metrics shared by
// the dashboard surfaces.
package observability

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a text logger writing to out at the named level.
// An unknown level falls back to info; a nil out means stderr.
func NewLogger(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		QuoteEmptyFields: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// Discard returns a logger that drops everything. Intended for tests and
// for commands whose output must stay clean.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
