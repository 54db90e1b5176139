package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ms-scheduler/internal/config"
	"ms-scheduler/internal/kafka"
	"ms-scheduler/internal/logger"
	"ms-scheduler/internal/models"
)

// event-watcher tails the event change topics and logs every change.
func main() {
	cfg, _ := config.Load()
	logger := logger.NewLogger(cfg.LogDir)
	defer logger.Close()

	if len(cfg.Kafka.Brokers) == 0 {
		logger.Fatal("CONFIG", "KAFKA_BROKERS not set")
	}

	topics := kafka.Topics{EventCreated: cfg.Kafka.Topics.EventCreated, EventUpdated: cfg.Kafka.Topics.EventUpdated}
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topics, cfg.Kafka.GroupID, logger)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := consumer.Start(ctx, func(change models.EventChange) {
		msg := fmt.Sprintf("%s by %s, participants [%s]", change.Type, change.ActorID, strings.Join(change.ProfileIDs, ", "))
		if len(change.Fields) > 0 {
			msg += fmt.Sprintf(", fields [%s]", strings.Join(change.Fields, ", "))
		}
		logger.LogEvent(strings.ToUpper(string(change.Type)), change.EventID, msg)
	})
	if err != nil {
		logger.Error("KAFKA", fmt.Sprintf("Consumer stopped: %v", err))
	}
	logger.Info("APP", "Event watcher stopped")
}
