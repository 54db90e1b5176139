package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/models"
)

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader MessageReader
	logger *logger.Logger
}

// NewConsumer reads every change topic under one consumer group.
func NewConsumer(brokers []string, topics Topics, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupTopics: topics.All(),
		GroupID:     groupID,
		MinBytes:    10e3, // 10KB
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: log}
}

func NewConsumerWithReader(reader MessageReader, log *logger.Logger) *Consumer {
	return &Consumer{reader: reader, logger: log}
}

// Start hands each decoded change to handler until ctx is cancelled.
// Undecodable messages are logged and skipped.
func (c *Consumer) Start(ctx context.Context, handler func(models.EventChange)) error {
	c.logger.Info("KAFKA", "Event change consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.logger.Error("KAFKA", fmt.Sprintf("Error reading message: %v", err))
			return err
		}

		var change models.EventChange
		if err := json.Unmarshal(msg.Value, &change); err != nil {
			c.logger.Warn("KAFKA", fmt.Sprintf("Failed to unmarshal message at %s/%d: %v", msg.Topic, msg.Offset, err))
			continue
		}

		c.logger.LogKafka("RECEIVE", msg.Topic, change.EventID)
		handler(change)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
