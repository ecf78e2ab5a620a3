package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	ExchangeName    = "civicvoice.delivery"
	DLXExchangeName = "civicvoice.delivery.dlx"

	QueueEmail    = "queue.delivery.email"
	QueueSMS      = "queue.delivery.sms"
	QueueEmailDLQ = "queue.delivery.email.dlq"
	QueueSMSDLQ   = "queue.delivery.sms.dlq"

	reconnectDelay = 5 * time.Second
	publishTimeout = 5 * time.Second
	prefetchCount  = 10
	dlqTTL         = int64(24 * time.Hour / time.Millisecond)
)

type queueConfig struct {
	queueName     string
	routingKey    string
	dlqName       string
	dlqRoutingKey string
}

var queueConfigs = []queueConfig{
	{queueName: QueueEmail, routingKey: routingKeyFor(ChannelEmail), dlqName: QueueEmailDLQ, dlqRoutingKey: "dlq.delivery.email"},
	{queueName: QueueSMS, routingKey: routingKeyFor(ChannelSMS), dlqName: QueueSMSDLQ, dlqRoutingKey: "dlq.delivery.sms"},
}

func routingKeyFor(channel Channel) string {
	return "delivery." + string(channel)
}

func queueFor(channel Channel) string {
	if channel == ChannelSMS {
		return QueueSMS
	}
	return QueueEmail
}

// RabbitQueue publishes intents to a topic exchange with per-channel queues and dead-letter queues.
type RabbitQueue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	url     string
	logger  *zap.Logger
	mu      sync.RWMutex
	done    chan struct{}
}

// NewRabbitQueue dials the broker, declares the topology and keeps the connection alive.
func NewRabbitQueue(url string, logger *zap.Logger) (*RabbitQueue, error) {
	if url == "" {
		return nil, errors.New("rabbitmq url not configured")
	}
	q := &RabbitQueue{url: url, logger: logger, done: make(chan struct{})}
	if err := q.connect(); err != nil {
		return nil, err
	}
	go q.handleReconnect()
	return q, nil
}

func (q *RabbitQueue) connect() error {
	var err error

	q.conn, err = amqp.Dial(q.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	q.channel, err = q.conn.Channel()
	if err != nil {
		q.conn.Close()
		return fmt.Errorf("channel: %w", err)
	}

	if err := q.channel.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	for _, name := range []string{ExchangeName, DLXExchangeName} {
		if err := q.channel.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("exchange declare %s: %w", name, err)
		}
	}

	for _, qc := range queueConfigs {
		if _, err := q.channel.QueueDeclare(qc.dlqName, true, false, false, false,
			amqp.Table{"x-message-ttl": dlqTTL}); err != nil {
			return fmt.Errorf("dlq declare %s: %w", qc.dlqName, err)
		}
		if err := q.channel.QueueBind(qc.dlqName, qc.dlqRoutingKey, DLXExchangeName, false, nil); err != nil {
			return fmt.Errorf("dlq bind %s: %w", qc.dlqName, err)
		}
		if _, err := q.channel.QueueDeclare(qc.queueName, true, false, false, false, amqp.Table{
			"x-dead-letter-exchange":    DLXExchangeName,
			"x-dead-letter-routing-key": qc.dlqRoutingKey,
		}); err != nil {
			return fmt.Errorf("queue declare %s: %w", qc.queueName, err)
		}
		if err := q.channel.QueueBind(qc.queueName, qc.routingKey, ExchangeName, false, nil); err != nil {
			return fmt.Errorf("bind %s->%s: %w", qc.queueName, qc.routingKey, err)
		}
	}

	q.logger.Info("rabbitmq connected", zap.String("exchange", ExchangeName))
	return nil
}

func (q *RabbitQueue) handleReconnect() {
	for {
		q.mu.RLock()
		closed := q.conn.NotifyClose(make(chan *amqp.Error, 1))
		q.mu.RUnlock()

		select {
		case <-q.done:
			return
		case err := <-closed:
			if err != nil {
				q.logger.Warn("rabbitmq disconnected", zap.Error(err))
			}

			q.mu.Lock()
			for {
				select {
				case <-q.done:
					q.mu.Unlock()
					return
				default:
				}
				if err := q.connect(); err != nil {
					q.logger.Warn("rabbitmq reconnect failed", zap.Error(err))
					time.Sleep(reconnectDelay)
					continue
				}
				break
			}
			q.mu.Unlock()
		}
	}
}

// Enqueue publishes intent as a persistent JSON message.
func (q *RabbitQueue) Enqueue(ctx context.Context, intent Intent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.channel == nil {
		return errors.New("channel not available")
	}

	body, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshal intent: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := q.channel.PublishWithContext(ctx, ExchangeName, routingKeyFor(intent.Channel), false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    intent.ID,
			Timestamp:    intent.CreatedAt,
			Body:         body,
		}); err != nil {
		return fmt.Errorf("publish intent: %w", err)
	}
	return nil
}

// Consume registers a manual-ack consumer on queueName.
func (q *RabbitQueue) Consume(queueName string) (<-chan amqp.Delivery, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.channel == nil {
		return nil, errors.New("channel not available")
	}
	msgs, err := q.channel.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", queueName, err)
	}
	return msgs, nil
}

// Close stops reconnection and releases the connection.
func (q *RabbitQueue) Close() {
	close(q.done)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.channel != nil {
		q.channel.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}
