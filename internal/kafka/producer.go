package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"charity-events/internal/config"
	"charity-events/internal/logger"
	"charity-events/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	Topics config.TopicConfig
	Logger *logger.Logger
}

// NewProducer builds an async writer; delivery errors are logged from the
// completion callback rather than returned to the request.
func NewProducer(brokers []string, topics config.TopicConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil && log != nil {
				log.Error("KAFKA", fmt.Sprintf("Failed to deliver %d messages: %v", len(messages), err))
			}
		},
	}
	return &Producer{Writer: writer, Topics: topics, Logger: log}
}

// TopicFor maps an entity to its topic. Events and categories share one.
func (p *Producer) TopicFor(entity string) string {
	if entity == models.EntityRegistration {
		return p.Topics.Registrations
	}
	return p.Topics.Events
}

// Publish streams the change keyed by entity id so one entity's changes stay
// ordered within a partition.
func (p *Producer) Publish(ctx context.Context, change models.Change) {
	value, err := json.Marshal(change)
	if err != nil {
		p.logError(fmt.Sprintf("Failed to marshal change %s: %v", change.ID, err))
		return
	}

	topic := p.TopicFor(change.Entity)
	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(change.Entity + ":" + strconv.FormatInt(change.EntityID, 10)),
		Value: value,
	})
	if err != nil {
		p.logError(fmt.Sprintf("Failed to publish %s %s to %s: %v", change.Entity, change.Action, topic, err))
		return
	}
	if p.Logger != nil {
		p.Logger.LogKafka("PUBLISH", topic, fmt.Sprintf("%s %s %d", change.Entity, change.Action, change.EntityID))
	}
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

func (p *Producer) logError(msg string) {
	if p.Logger != nil {
		p.Logger.Error("KAFKA", msg)
	}
}
