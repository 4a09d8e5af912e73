package messaging

import (
	"context"
	"time"
)

const (
	TopicOrderCreated       = "orders.created"
	TopicOrderStatusChanged = "orders.status_changed"
	TopicOrderDeleted       = "orders.deleted"
	TopicOrderPaid          = "orders.paid"
)

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
	Close() error
}

// OrderEvent is the payload of every orders.* topic.
type OrderEvent struct {
	OrderID        string    `json:"orderId"`
	UserID         uint      `json:"userId"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Total          string    `json:"total,omitempty"`
	TransactionID  string    `json:"transactionId,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

type nopPublisher struct{}

// NewNopPublisher returns a Publisher that drops every event. Used when no
// broker is configured.
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }

func (nopPublisher) Close() error { return nil }
