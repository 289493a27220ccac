package utils

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func AddToLogMessage(logMessagesBuilder *strings.Builder, strToAdd string) {

	if logMessagesBuilder.Len() == logMessagesBuilder.Cap() {

		logMessagesBuilder.Grow(len(strToAdd))
	}

	logMessagesBuilder.WriteString(strToAdd)
	logMessagesBuilder.WriteString(";")
	logMessagesBuilder.WriteString("\n")
}

// FlushLogMessage writes the accumulated request log as one entry.
func FlushLogMessage(requestID string, logMessagesBuilder *strings.Builder) {
	if logMessagesBuilder.Len() == 0 {
		return
	}
	Log.WithFields(logrus.Fields{
		"request_id": requestID,
	}).Info(strings.TrimSuffix(logMessagesBuilder.String(), "\n"))
}

// NewRequestID returns a random identifier used to correlate log lines.
func NewRequestID() string {
	return uuid.NewString()
}
