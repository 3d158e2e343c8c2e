package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/noah-isme/coursemart-api/pkg/config"
)

// Event types emitted by checkout.
const (
	TypePaymentRecorded  = "payment.recorded"
	TypeEnrollmentFailed = "enrollment.failed"
	TypeCheckoutSettled  = "checkout.settled"
	TypeTransferDecided  = "transfer.decided"
)

// Event is the envelope written to the checkout topic.
type Event struct {
	Type       string      `json:"type"`
	Reference  string      `json:"reference"`
	UserID     int64       `json:"user_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes checkout events. A producer without brokers skips every publish.
type Producer struct {
	writer messageWriter
	logger *zap.Logger
}

// NewProducer builds a producer for cfg.CheckoutTopic.
func NewProducer(cfg config.EventsConfig, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Brokers) == 0 || cfg.CheckoutTopic == "" {
		logger.Info("checkout events disabled: no kafka brokers configured")
		return &Producer{logger: logger}
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.CheckoutTopic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			WriteTimeout:           10 * time.Second,
			AllowAutoTopicCreation: true,
		},
		logger: logger,
	}
}

// Enabled reports whether events leave the process.
func (p *Producer) Enabled() bool {
	return p != nil && p.writer != nil
}

// Publish writes the event keyed by its reference so one checkout stays on one partition.
func (p *Producer) Publish(ctx context.Context, evt Event) error {
	if !p.Enabled() {
		return nil
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", evt.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.Reference),
		Value: value,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	}); err != nil {
		return fmt.Errorf("publish %s event: %w", evt.Type, err)
	}
	return nil
}

// Close flushes and releases the writer.
func (p *Producer) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
