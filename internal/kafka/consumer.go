package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"charity-events/internal/logger"
	"charity-events/internal/models"
	"charity-events/internal/notify"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer relays changes published by any instance to a local publisher,
// normally the stream hub.
type Consumer struct {
	Reader MessageReader
	Logger *logger.Logger
	// Backoff is the first wait after a failed read. It doubles on each
	// consecutive failure up to maxBackoff. Zero means one second.
	Backoff time.Duration
}

const maxBackoff = 30 * time.Second

// NewConsumer reads the change topics in its own group so every instance
// sees every change.
func NewConsumer(brokers, topics []string, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: topics,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{Reader: reader, Logger: log}
}

// Run blocks until ctx is cancelled. Read errors are logged and retried
// after a backoff, so a broker outage does not end the relay.
func (c *Consumer) Run(ctx context.Context, pub notify.Publisher) {
	c.info("Kafka change relay started")
	base := c.Backoff
	if base <= 0 {
		base = time.Second
	}
	wait := base
	for {
		msg, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.info("Kafka change relay stopped")
				return
			}
			c.warn(fmt.Sprintf("Error reading message, retrying in %s: %v", wait, err))
			select {
			case <-ctx.Done():
				c.info("Kafka change relay stopped")
				return
			case <-time.After(wait):
			}
			if wait *= 2; wait > maxBackoff {
				wait = maxBackoff
			}
			continue
		}
		wait = base

		var change models.Change
		if err := json.Unmarshal(msg.Value, &change); err != nil {
			c.warn(fmt.Sprintf("Failed to unmarshal message at offset %d: %v", msg.Offset, err))
			continue
		}
		pub.Publish(ctx, change)
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.Reader.Close()
}

func (c *Consumer) info(msg string) {
	if c.Logger != nil {
		c.Logger.Info("KAFKA", msg)
	}
}

func (c *Consumer) warn(msg string) {
	if c.Logger != nil {
		c.Logger.Warn("KAFKA", msg)
	}
}
