package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/gold-quote-crawler/internal/models"
	"go.uber.org/zap"
)

// QuoteSink receives quotes carried by QUOTE_SYNCED events
type QuoteSink interface {
	SetQuote(ctx context.Context, q models.Quote) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer applies quote events from Kafka to a QuoteSink
type Consumer struct {
	reader messageReader
	sink   QuoteSink
	logger *zap.Logger
}

// NewConsumer creates a new Kafka consumer for quote events
func NewConsumer(brokers []string, topic, groupID string, sink QuoteSink, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		sink:   sink,
		logger: logger,
	}
}

// Start consumes messages until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting kafka consumer")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("kafka consumer shutting down")
				return nil
			}
			c.logger.Warn("failed to read message", zap.Error(err))
			continue
		}

		if err := c.processMessage(ctx, msg); err != nil {
			c.logger.Error("failed to process message",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.QuoteEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal quote event: %w", err)
	}

	if event.EventType != models.EventQuoteSynced {
		c.logger.Debug("ignoring event", zap.String("event_type", event.EventType))
		return nil
	}
	if event.Quote == nil {
		return fmt.Errorf("event for %s has no quote", event.Date)
	}

	if err := c.sink.SetQuote(ctx, *event.Quote); err != nil {
		return fmt.Errorf("failed to apply quote %s: %w", event.Date, err)
	}

	c.logger.Debug("applied quote event", zap.String("date", event.Date), zap.Bool("created", event.Created))
	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
