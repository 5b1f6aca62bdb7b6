package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"walking-route-service/internal/domain"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher writes search events to a Kafka topic. The writer is
// asynchronous: Publish enqueues and delivery errors are logged.
type KafkaPublisher struct {
	writer *kafkago.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		Async:                  true,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	w.Completion = func(messages []kafkago.Message, err error) {
		if err != nil {
			log.Warn("search event delivery failed", zap.Int("messages", len(messages)), zap.Error(err))
		}
	}
	return &KafkaPublisher{writer: w, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev domain.SearchEvent) error {
	msg, err := serializeToMessage(ev)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish search event: %w", err)
	}
	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a SearchEvent into a Kafka message keyed by session.
func serializeToMessage(ev domain.SearchEvent) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize search event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.SessionID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(ev.Outcome)},
			{Key: "searched_at", Value: []byte(ev.At.Format(time.RFC3339))},
		},
	}, nil
}
