package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the application logger. Level falls back to info on a bad
// value; format is "json" or "text".
func New(level, format string) *logrus.Logger {
	l := logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}
	l.SetOutput(os.Stdout)
	return l
}
