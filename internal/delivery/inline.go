package delivery

import (
	"context"

	"go.uber.org/zap"
)

// InlineQueue hands intents straight to a worker on a detached goroutine. Used when no broker is configured.
type InlineQueue struct {
	worker *Worker
	logger *zap.Logger
}

// NewInlineQueue constructs the broker-less queue.
func NewInlineQueue(worker *Worker, logger *zap.Logger) *InlineQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InlineQueue{worker: worker, logger: logger}
}

// Enqueue never blocks on delivery and never reports transport failures.
func (q *InlineQueue) Enqueue(_ context.Context, intent Intent) error {
	go func() {
		if err := q.worker.Handle(context.Background(), intent); err != nil {
			q.logger.Warn("inline delivery failed",
				zap.String("intent_id", intent.ID),
				zap.String("channel", string(intent.Channel)),
				zap.Error(err),
			)
		}
	}()
	return nil
}
