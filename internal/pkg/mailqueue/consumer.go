package mailqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPermanent marks failures that will not succeed on retry, such as an unknown template.
var ErrPermanent = errors.New("permanent mail failure")

// Permanent wraps err so the consumer drops the message instead of requeueing it.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Consumer struct {
	sender Sender
	logger *slog.Logger
}

func NewConsumer(sender Sender, logger *slog.Logger) *Consumer {
	return &Consumer{sender: sender, logger: logger}
}

// Run handles deliveries until ctx is cancelled or the channel closes.
func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Warn("mail delivery channel closed")
				return
			}
			c.Handle(ctx, d)
		}
	}
}

// Handle acks sent messages, requeues transient send failures and drops bad payloads.
func (c *Consumer) Handle(ctx context.Context, d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Error("failed to decode mail message", "error", err)
		c.nack(d, false)
		return
	}
	if msg.Type == "" || msg.To == "" {
		c.logger.Error("mail message missing type or recipient", "type", msg.Type)
		c.nack(d, false)
		return
	}

	if err := c.sender.Send(ctx, msg); err != nil {
		requeue := !errors.Is(err, ErrPermanent)
		c.logger.Error("failed to send mail", "type", msg.Type, "requeue", requeue, "error", err)
		c.nack(d, requeue)
		return
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error("failed to ack mail message", "error", err)
		return
	}
	c.logger.Info("mail sent", "type", msg.Type)
}

func (c *Consumer) nack(d amqp.Delivery, requeue bool) {
	if err := d.Nack(false, requeue); err != nil {
		c.logger.Error("failed to nack mail message", "error", err)
	}
}
