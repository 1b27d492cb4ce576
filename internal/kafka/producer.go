package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/gold-quote-crawler/internal/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles publishing quote events to Kafka
type Producer struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
		now:    time.Now,
	}
}

// PublishQuoteSynced publishes a QUOTE_SYNCED event keyed by the quote date
func (p *Producer) PublishQuoteSynced(ctx context.Context, q models.Quote, created bool) error {
	quote := q
	event := models.QuoteEvent{
		EventType: models.EventQuoteSynced,
		Date:      q.Date,
		Quote:     &quote,
		Created:   created,
		Timestamp: p.now().UTC(),
	}
	return p.publish(ctx, q.Date, event)
}

// QuoteSynced publishes every quote the store accepted
func (p *Producer) QuoteSynced(ctx context.Context, q models.Quote, created bool) error {
	return p.PublishQuoteSynced(ctx, q, created)
}

func (p *Producer) publish(ctx context.Context, key string, event models.QuoteEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
