package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher forwards events to an external stream.
type Publisher interface {
	Forward(ctx context.Context, event Event) error
	Close() error
}

// messageWriter is the subset of kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer writes complaint events to a topic keyed by complaint id.
// With no brokers or topic configured every call is a no-op.
type KafkaProducer struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaProducer creates the producer.
func NewKafkaProducer(brokers []string, topic string, logger *zap.Logger) *KafkaProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(brokers) == 0 || topic == "" {
		return &KafkaProducer{logger: logger}
	}
	return &KafkaProducer{
		topic:  topic,
		logger: logger,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Enabled reports whether events leave the process.
func (p *KafkaProducer) Enabled() bool {
	return p != nil && p.writer != nil
}

// Forward serializes the event and writes it. Keying by complaint id keeps
// each complaint's events ordered within a partition.
func (p *KafkaProducer) Forward(ctx context.Context, event Event) error {
	if !p.Enabled() {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(event.ComplaintID),
		Value: body,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("kafka write failed", zap.String("topic", p.topic), zap.String("event_type", string(event.Type)), zap.Error(err))
		return err
	}
	return nil
}

// Close closes the writer.
func (p *KafkaProducer) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
