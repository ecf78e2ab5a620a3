// Package realtime pushes lifecycle events onto per-actor and per-department channels.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/civicvoice/complaint-service/internal/domain"
)

// Event names carried in Message.Event.
const (
	EventNotificationNew  = "notification:new"
	EventComplaintUpdated = "complaint:updated"
)

// Message is the envelope written to a channel.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Publisher fans a message out to one channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, msg Message) error
}

// UserChannel is the private channel of one actor.
func UserChannel(actorID string) string {
	return "user:" + actorID
}

// DepartmentChannel is shared by everyone observing a department.
func DepartmentChannel(dept domain.Department) string {
	return "dept:" + string(dept)
}

// RedisPublisher publishes JSON envelopes through Redis Pub/Sub.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher wraps a connected client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal realtime message: %w", err)
	}
	return p.client.Publish(ctx, channel, payload).Err()
}

// Nop drops every message.
type Nop struct{}

func (Nop) Publish(context.Context, string, Message) error { return nil }
