package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/quiz-registration-service/internal/config"
	"github.com/segmentio/kafka-go"
)

// RegistrationEventProducer writes registration events synchronously so the outbox
// only marks a message processed once the broker has acknowledged it.
type RegistrationEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewRegistrationEventProducer ensures the registration topic exists and opens a writer.
func NewRegistrationEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*RegistrationEventProducer, error) {
	if cfg.RegistrationTopic == "" {
		return nil, fmt.Errorf("kafka registration topic is not configured")
	}

	if err := dialAndEnsureTopic(cfg.Brokers, cfg.RegistrationTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure registration topic %s exists: %w", cfg.RegistrationTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.RegistrationTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: cfg.MaxWait,
	}

	return &RegistrationEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.RegistrationTopic,
	}, nil
}

// Publish encodes value as JSON and writes it keyed by key. Events for the same
// account share a key and therefore a partition.
func (p *RegistrationEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal registration event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish registration event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish registration event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published registration event", "topic", p.topic, "key", key)
	return nil
}

func (p *RegistrationEventProducer) Close() error {
	p.logger.Info("Closing registration event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
