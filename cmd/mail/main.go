package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/guardops-backend/internal/config"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/email"
	"github.com/cmlabs-hris/guardops-backend/internal/pkg/mailqueue"
	amqp "github.com/rabbitmq/amqp091-go"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.App).With("component", "mail-worker")
	slog.SetDefault(logger)

	if cfg.RabbitMQ.DSN == "" {
		logger.Error("RABBITMQ_DSN is required for the mail worker")
		os.Exit(1)
	}

	sender, err := email.NewSender(cfg.SMTP)
	if err != nil {
		logger.Error("Failed to initialize mail sender", "error", err)
		os.Exit(1)
	}
	defer sender.Close()

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("Failed to open channel", "error", err)
		os.Exit(1)
	}
	defer ch.Close()

	q, err := mailqueue.DeclareQueue(ch, cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Error("Failed to declare queue", "queue", cfg.RabbitMQ.Queue, "error", err)
		os.Exit(1)
	}

	// One message at a time so a failing SMTP server does not drain the queue.
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("Failed to set prefetch", "error", err)
		os.Exit(1)
	}

	deliveries, err := ch.Consume(
		q.Name,
		"",    // consumer tag assigned by the broker
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		logger.Error("Failed to consume queue", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := mailqueue.NewConsumer(sender, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.Run(ctx, deliveries)
	}()

	logger.Info("Mail worker waiting for messages", "queue", q.Name)
	select {
	case <-ctx.Done():
		logger.Info("Shutting down mail worker")
		<-done
	case <-done:
		logger.Error("Mail worker stopped consuming, broker connection lost")
		os.Exit(1)
	}
	logger.Info("Mail worker stopped")
}
