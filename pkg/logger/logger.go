package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New creates the application logger. It is constructed once in main and
// handed to every component; nothing in this codebase reaches for a global
// logger.
func New() *logrus.Logger {
	log := logrus.New()

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "time",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "msg",
		},
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))

	return log
}

// Configure applies the loaded configuration to an already constructed
// logger. Called after config.Load since the logger must exist before the
// config file is read.
func Configure(log *logrus.Logger, level, format string) {
	if level != "" {
		log.SetLevel(parseLevel(level))
	}

	if strings.EqualFold(format, "text") {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	}
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
