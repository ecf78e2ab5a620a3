// Package worker starts the long-running consumers that sit beside the HTTP server.
package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/civicvoice/complaint-service/internal/config"
	"github.com/civicvoice/complaint-service/internal/delivery"
)

// Senders builds the transports enabled by configuration.
func Senders(cfg config.NotificationConfig) map[delivery.Channel]delivery.Sender {
	senders := map[delivery.Channel]delivery.Sender{}
	if cfg.EnableEmail {
		senders[delivery.ChannelEmail] = delivery.NewEmailSender(delivery.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
			From: cfg.EmailFrom,
		})
	}
	if cfg.EnableSMS {
		senders[delivery.ChannelSMS] = delivery.NewSMSSender(delivery.TwilioConfig{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioFrom,
		})
	}
	return senders
}

// StartDeliveryWorker returns the queue the notification fan-out enqueues to.
// With a broker URL intents go through RabbitMQ and a consumer runs until ctx is done;
// otherwise they are delivered in-process. The returned func releases broker resources.
func StartDeliveryWorker(ctx context.Context, cfg *config.Config, logger *zap.Logger) (delivery.Queue, func(), error) {
	worker := delivery.NewWorker(Senders(cfg.Notification), delivery.DefaultRetryPolicy, logger)

	if cfg.RabbitMQ.URL == "" {
		logger.Info("RABBITMQ_URL not provided; delivering notifications in-process")
		return delivery.NewInlineQueue(worker, logger), func() {}, nil
	}

	queue, err := delivery.NewRabbitQueue(cfg.RabbitMQ.URL, logger)
	if err != nil {
		return nil, nil, err
	}
	go worker.Run(ctx, queue)
	return queue, queue.Close, nil
}
