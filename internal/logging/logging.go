package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. Production and staging get JSON lines;
// everything else gets human-readable text. An unknown level falls back to
// info and is reported once through the new logger.
func New(level string, environment string) *logrus.Logger {
	return NewWithOutput(os.Stdout, level, environment)
}

func NewWithOutput(output io.Writer, level string, environment string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(output)

	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "production", "staging":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
		logger.Warnf("invalid log level %q, defaulting to info", level)
		return logger
	}
	logger.SetLevel(parsed)
	return logger
}
