// Package kafka publishes issue lifecycle events.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/logging"
)

// ErrProducerClosed is returned by Publish after Close
var ErrProducerClosed = errors.New("kafka: producer closed")

// WriterInterface abstracts kafka.Writer for testing
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerConfig names the brokers and topic
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
	WriteTimeout time.Duration
}

// Validate reports a missing broker list or topic
func (c ProducerConfig) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("kafka: at least one broker is required")
	}
	if c.Topic == "" {
		return errors.New("kafka: topic is required")
	}
	return nil
}

// Producer writes events keyed by issue ID so one issue's events stay ordered
type Producer struct {
	writer WriterInterface
	logger logging.Logger
	closed atomic.Bool
}

// NewProducer creates a synchronous writer for cfg
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 250 * time.Millisecond
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           cfg.BatchTimeout,
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return newProducer(w, logger), nil
}

func newProducer(w WriterInterface, logger logging.Logger) *Producer {
	return &Producer{writer: w, logger: logger.Named("kafka")}
}

// Publish writes one event
func (p *Producer) Publish(ctx context.Context, event Event) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: failed to encode %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.IssueID, 10)),
		Value: body,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: failed to publish %s for issue %d: %w", event.Type, event.IssueID, err)
	}
	p.logger.Debug("event published",
		logging.String("type", event.Type),
		logging.Int64("issue_id", event.IssueID),
	)
	return nil
}

// Close flushes and closes the writer; it is safe to call twice
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

// NopPublisher drops every event; used when no brokers are configured
type NopPublisher struct{}

// Publish does nothing
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close does nothing
func (NopPublisher) Close() error { return nil }
