package amqpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/streadway/amqp"

	"adbudget/internal/core/port"
)

const maxRetries = 3

// Consumer drains spend events from a durable AMQP queue and feeds them into
// the ledger. Events that fail validation are acked and dropped (a retry
// cannot fix them); transient failures are requeued up to maxRetries using
// an x-retry-count header. Duplicate reference ids are acked as normal
// no-ops, so redelivery after a crash is harmless.
type Consumer struct {
	url    string
	queue  string
	ledger port.Ledger
	logger *slog.Logger
}

func NewConsumer(url, queue string, ledger port.Ledger, logger *slog.Logger) *Consumer {
	return &Consumer{url: url, queue: queue, ledger: ledger, logger: logger}
}

// Run connects, declares the queue and consumes until ctx is cancelled or
// the connection drops.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(c.queue, true, false, false, false, nil)
	if err != nil {
		return err
	}

	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.logger.Info("spend consumer running", slog.String("queue", q.Name))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("amqp channel closed")
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var ev port.SpendEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		c.logger.Warn("invalid spend event payload", slog.Any("error", err))
		_ = d.Ack(false)
		return
	}

	res, err := c.ledger.ApplySpend(ctx, ev)
	switch {
	case err == nil:
		if !res.Applied {
			c.logger.Info("duplicate spend event",
				slog.String("reference_id", ev.ReferenceID))
		}
		_ = d.Ack(false)
	case errors.Is(err, port.ErrInvalidAmount),
		errors.Is(err, port.ErrBrandNotFound),
		errors.Is(err, port.ErrCampaignNotFound),
		errors.Is(err, port.ErrCampaignMismatch):
		// Permanent: redelivery cannot succeed.
		c.logger.Error("rejected spend event",
			slog.String("reference_id", ev.ReferenceID), slog.Any("error", err))
		_ = d.Ack(false)
	default:
		retries := retryCount(d.Headers)
		if retries < maxRetries {
			c.logger.Warn("requeueing spend event",
				slog.String("reference_id", ev.ReferenceID),
				slog.Int("retries", retries), slog.Any("error", err))
			_ = d.Nack(false, true)
			return
		}
		c.logger.Error("dropping spend event after retries",
			slog.String("reference_id", ev.ReferenceID), slog.Any("error", err))
		_ = d.Ack(false)
	}
}

func retryCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	switch v := headers["x-retry-count"].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	default:
		return 0
	}
}
