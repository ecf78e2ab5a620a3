// Package delivery moves best-effort email and SMS intents from the lifecycle to their transports.
package delivery

import (
	"context"
	"time"
)

// Channel identifies a side-channel transport.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Intent is one message the core asked to deliver.
type Intent struct {
	ID          string    `json:"id"`
	Channel     Channel   `json:"channel"`
	Recipient   string    `json:"recipient"`
	Subject     string    `json:"subject,omitempty"`
	Body        string    `json:"body"`
	ComplaintID string    `json:"complaint_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Queue accepts intents without waiting for delivery.
type Queue interface {
	Enqueue(ctx context.Context, intent Intent) error
}

// Sender performs one delivery attempt.
type Sender interface {
	Send(ctx context.Context, intent Intent) error
}
