package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix is where member notifications are published; the chat
// gateway subscribes to SubjectPrefix.> and fans messages out to the
// chat platform.
const SubjectPrefix = "tgqueue.notify"

// Message is the payload published per notification.
type Message struct {
	MemberID int64  `json:"member_id"`
	Text     string `json:"text"`
}

// NATSNotifier publishes notifications to NATS for the chat gateway.
type NATSNotifier struct {
	conn   *nats.Conn
	logger *log.Logger
}

func NewNATSNotifier(url string, logger *log.Logger) (*NATSNotifier, error) {
	if logger == nil {
		logger = log.Default()
	}
	conn, err := nats.Connect(url, nats.Name("tg-queue-api"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return &NATSNotifier{conn: conn, logger: logger}, nil
}

func (n *NATSNotifier) Notify(ctx context.Context, memberID int64, text string) {
	payload, err := json.Marshal(Message{MemberID: memberID, Text: text})
	if err != nil {
		n.logger.Printf("WARN: marshal notification for member %d: %v", memberID, err)
		return
	}
	subject := fmt.Sprintf("%s.%d", SubjectPrefix, memberID)
	if err := n.conn.Publish(subject, payload); err != nil {
		n.logger.Printf("WARN: publish notification for member %d: %v", memberID, err)
	}
}

func (n *NATSNotifier) Close() {
	n.conn.Close()
}
