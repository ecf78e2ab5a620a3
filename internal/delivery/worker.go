package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	maxRetryAttempts = 3
	initialDelay     = 1 * time.Second
	maxDelay         = 30 * time.Second
)

// ErrNoSender is returned for intents whose channel has no configured transport.
var ErrNoSender = errors.New("no sender for channel")

// RetryPolicy tunes per-intent retries.
type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

// DefaultRetryPolicy is three attempts with exponential backoff from one second.
var DefaultRetryPolicy = RetryPolicy{Attempts: maxRetryAttempts, Delay: initialDelay, MaxDelay: maxDelay}

// Worker delivers intents through the sender registered for their channel.
type Worker struct {
	senders map[Channel]Sender
	policy  RetryPolicy
	logger  *zap.Logger
}

// NewWorker constructs a worker. Channels without a sender are logged and dropped.
func NewWorker(senders map[Channel]Sender, policy RetryPolicy, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy.Attempts == 0 {
		policy = DefaultRetryPolicy
	}
	return &Worker{senders: senders, policy: policy, logger: logger}
}

// Handle delivers one intent with retry and backoff.
func (w *Worker) Handle(ctx context.Context, intent Intent) error {
	sender, ok := w.senders[intent.Channel]
	if !ok || sender == nil {
		return fmt.Errorf("%w: %s", ErrNoSender, intent.Channel)
	}

	return retry.Do(
		func() error {
			return sender.Send(ctx, intent)
		},
		retry.Context(ctx),
		retry.Attempts(w.policy.Attempts),
		retry.Delay(w.policy.Delay),
		retry.MaxDelay(w.policy.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			w.logger.Warn("delivery retry",
				zap.String("intent_id", intent.ID),
				zap.String("channel", string(intent.Channel)),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
}

// Run consumes the broker queues until ctx is done.
func (w *Worker) Run(ctx context.Context, q *RabbitQueue) {
	for _, channel := range []Channel{ChannelEmail, ChannelSMS} {
		go w.consume(ctx, q, channel)
	}
	<-ctx.Done()
	w.logger.Info("delivery worker stopping")
}

func (w *Worker) consume(ctx context.Context, q *RabbitQueue, channel Channel) {
	queueName := queueFor(channel)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := q.Consume(queueName)
		if err != nil {
			w.logger.Warn("delivery consumer unavailable", zap.String("queue", queueName), zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
			continue
		}

		w.logger.Info("delivery consumer listening", zap.String("queue", queueName))
		if !w.drain(ctx, msgs) {
			return
		}
	}
}

// drain returns false when ctx is done and true when the channel closed.
func (w *Worker) drain(ctx context.Context, msgs <-chan amqp.Delivery) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-msgs:
			if !ok {
				return true
			}
			w.process(ctx, msg)
		}
	}
}

func (w *Worker) process(ctx context.Context, msg amqp.Delivery) {
	var intent Intent
	if err := json.Unmarshal(msg.Body, &intent); err != nil {
		w.logger.Warn("delivery: bad payload, dropping", zap.Error(err))
		_ = msg.Nack(false, false)
		return
	}

	if err := w.Handle(ctx, intent); err != nil {
		w.logger.Error("delivery failed, sending to DLQ",
			zap.String("intent_id", intent.ID),
			zap.String("channel", string(intent.Channel)),
			zap.Error(err),
		)
		_ = msg.Nack(false, false)
		return
	}
	_ = msg.Ack(false)
}
