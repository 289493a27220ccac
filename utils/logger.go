package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Components take a FieldLogger derived from it.
var Log = logrus.New()

// InitLogger configures Log from the level and format names in config.
func InitLogger(level, format string) {
	Log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		Log.SetFormatter(&logrus.JSONFormatter{})
	default:
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// ComponentLogger returns Log tagged with the component name.
func ComponentLogger(component string) logrus.FieldLogger {
	return Log.WithField("component", component)
}

// withComponent tags logger with the component name. A nil logger discards output.
func withComponent(logger logrus.FieldLogger, component string) logrus.FieldLogger {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return logger.WithField("component", component)
}
