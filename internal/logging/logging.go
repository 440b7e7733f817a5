// Package logging builds the logrus loggers shared by the harness.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultLevel keeps the progress stream free of log noise.
const DefaultLevel = logrus.WarnLevel

// New creates a text logger writing to w at the named level. An empty level
// selects DefaultLevel.
func New(w io.Writer, level string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	lvl := DefaultLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}
	log.SetLevel(lvl)

	return log, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(logrus.PanicLevel)
	return log
}
