package notification

import (
	"log"
	"strings"
)

const maxMessageLen = 400

// Warning shows a blocking warning to the user. Where no native dialog is
// available it is only logged.
func Warning(title, message string) {
	message = truncate(message)
	log.Printf("NOTIFY: %s: %s", title, message)
	showWarning(title, message)
}

// Info shows a blocking informational message.
func Info(title, message string) {
	message = truncate(message)
	log.Printf("NOTIFY: %s: %s", title, message)
	showInfo(title, message)
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxMessageLen {
		return s
	}
	return s[:maxMessageLen] + "..."
}
