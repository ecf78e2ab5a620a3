package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/delivery"
)

func TestSendersFollowFlags(t *testing.T) {
	assert.Empty(t, Senders(config.NotificationConfig{}))

	senders := Senders(config.NotificationConfig{EnableEmail: true, EnableSMS: true})
	assert.IsType(t, &delivery.EmailSender{}, senders[delivery.ChannelEmail])
	assert.IsType(t, &delivery.SMSSender{}, senders[delivery.ChannelSMS])
}

func TestStartDeliveryWorkerWithoutBroker(t *testing.T) {
	queue, stop, err := StartDeliveryWorker(context.Background(), &config.Config{}, zap.NewNop())
	require.NoError(t, err)
	defer stop()

	assert.IsType(t, &delivery.InlineQueue{}, queue)
	assert.NoError(t, queue.Enqueue(context.Background(), delivery.Intent{ID: "i-1", Channel: delivery.ChannelSMS}))
}
