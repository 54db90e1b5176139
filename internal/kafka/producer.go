package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/models"
)

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Topics maps each change type to the topic it is published on.
type Topics struct {
	EventCreated string
	EventUpdated string
}

func (t Topics) For(change models.ChangeType) (string, error) {
	switch change {
	case models.ChangeCreated:
		return t.EventCreated, nil
	case models.ChangeUpdated:
		return t.EventUpdated, nil
	}
	return "", fmt.Errorf("no topic for change type %q", change)
}

func (t Topics) All() []string {
	return []string{t.EventCreated, t.EventUpdated}
}

type Producer struct {
	Writer MessageWriter
	Topics Topics
	Logger *logger.Logger
}

// publishBatchTimeout bounds how long a message waits for a batch to fill.
const publishBatchTimeout = 10 * time.Millisecond

func NewProducer(brokers []string, topics Topics, log *logger.Logger) *Producer {
	return &Producer{Writer: newWriter(brokers, log), Topics: topics, Logger: log}
}

// newWriter builds an async writer: WriteMessages returns once the messages
// are queued and delivery failures are reported through Completion.
func newWriter(brokers []string, log *logger.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           publishBatchTimeout,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err == nil {
				return
			}
			for _, m := range messages {
				log.LogKafka("PUBLISH_FAILED", m.Topic, fmt.Sprintf("event %s: %v", m.Key, err))
			}
		},
	}
}

// Publish streams change to its topic, keyed by event id so that all changes
// of one event land on the same partition.
func (p *Producer) Publish(ctx context.Context, change models.EventChange) error {
	topic, err := p.Topics.For(change.Type)
	if err != nil {
		return err
	}
	msgBytes, err := json.Marshal(change)
	if err != nil {
		return err
	}

	p.Logger.LogKafka("PUBLISH", topic, change.EventID)

	return p.Writer.WriteMessages(ctx,
		kafka.Message{
			Topic: topic,
			Key:   []byte(change.EventID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
