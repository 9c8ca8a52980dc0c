// Package notify delivers short texts to members and the operator via
// the chat gateway. Delivery is fire-and-forget: a notification reports
// on a state change that already happened, so a failed send is logged
// and never rolls anything back.
package notify

import (
	"context"
	"log"
)

// Notifier sends a text to a member id.
type Notifier interface {
	Notify(ctx context.Context, memberID int64, text string)
}

// LogNotifier writes notifications to the log. It stands in for the
// gateway in development and tests.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, memberID int64, text string) {
	n.logger.Printf("notify member=%d text=%q", memberID, text)
}
