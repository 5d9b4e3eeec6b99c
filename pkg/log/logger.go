package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// New creates a text-formatted logrus.Logger writing to out.
// An unparseable level falls back to info and is reported as an error
// alongside the usable logger.
func New(levelStr string, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	if levelStr == "" {
		return log, nil
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return log, err
	}
	log.SetLevel(level)
	return log, nil
}

// Discard returns an entry that drops everything. Used by library callers that
// pass no logger.
func Discard() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}
