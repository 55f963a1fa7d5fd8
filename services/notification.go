package services

import (
	"log"
)

// Notifier delivers an outbound notification. Delivery is best-effort: the
// core calls it after the state change commits and only logs failures.
type Notifier interface {
	Notify(kind, recipient string, context map[string]interface{}) error
}

// LogNotifier stands in for the mail adapter; it records what would be sent.
type LogNotifier struct{}

func (LogNotifier) Notify(kind, recipient string, context map[string]interface{}) error {
	log.Printf("📧 notify %s -> %s: %v", kind, recipient, context)
	return nil
}

var notifier Notifier = LogNotifier{}

// SetNotifier swaps the delivery adapter (used by tests).
func SetNotifier(n Notifier) {
	notifier = n
}

// Notify fires a notification and swallows delivery failures. Call it after
// the transaction commits so a mail outage never undoes a state change.
func Notify(kind, recipient string, context map[string]interface{}) {
	if err := notifier.Notify(kind, recipient, context); err != nil {
		log.Printf("⚠️ Failed to send %s notification to %s: %v", kind, recipient, err)
	}
}
