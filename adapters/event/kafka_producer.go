package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/resume-builder/internal/config"
	"github.com/khoahotran/resume-builder/internal/domain/profile"
	"github.com/khoahotran/resume-builder/pkg/logger"
)

const DefaultProfileTopic = "profile.events"

// KafkaProducerClient publishes profile events keyed by user id so every
// change to one profile lands on the same partition in commit order.
type KafkaProducerClient struct {
	ProfileEventsWriter *kafka.Writer
	logger              logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	topic := cfg.Kafka.ProfileTopic
	if topic == "" {
		topic = DefaultProfileTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	log.Info("Initialize Kafka Producer successfully.", zap.String("topic", topic))

	return &KafkaProducerClient{ProfileEventsWriter: writer, logger: log}, nil
}

func (c *KafkaProducerClient) Publish(ctx context.Context, ev profile.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal profile event failed: %w", err)
	}

	err = c.ProfileEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.UserID.String()),
		Value: value,
		Time:  ev.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("write profile event failed: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.ProfileEventsWriter != nil {
		if err := c.ProfileEventsWriter.Close(); err != nil {
			c.logger.Warn("Close Kafka producer failed", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka Producer")
}

// DecodeEvent parses a message written by Publish.
func DecodeEvent(msg kafka.Message) (profile.Event, error) {
	var ev profile.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal profile event failed: %w", err)
	}
	if ev.EventType == "" {
		return ev, fmt.Errorf("profile event without event_type")
	}
	return ev, nil
}
