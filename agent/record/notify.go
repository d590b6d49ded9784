package record

import (
	"context"
	"time"
)

const (
	EventOrderPlaced  = "order.placed"
	EventCaseResolved = "fraud_case.resolved"
	EventLeadSaved    = "lead.saved"
)

// Event describes one terminal record write.
type Event struct {
	Kind     string    `json:"kind"`
	RecordID string    `json:"record_id"`
	Persona  string    `json:"persona"`
	At       time.Time `json:"at"`
	Payload  any       `json:"payload,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, Event) error { return nil }

// Publisher is satisfied by *qstash.Client.
type Publisher interface {
	Publish(ctx context.Context, body any) (string, error)
}

// PublishNotifier forwards events to a message queue.
type PublishNotifier struct {
	pub Publisher
}

func NewPublishNotifier(pub Publisher) *PublishNotifier {
	return &PublishNotifier{pub: pub}
}

func (n *PublishNotifier) Notify(ctx context.Context, ev Event) error {
	_, err := n.pub.Publish(ctx, ev)
	return err
}
