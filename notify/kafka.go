package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/domain"
)

// ErrKafkaDisabled is returned when no brokers are configured.
var ErrKafkaDisabled = errors.New("kafka disabled")

// Event is the JSON envelope written to the notifications topic.
type Event struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Purchase   *domain.Purchase       `json:"purchase,omitempty"`
	Removal    *domain.ProductRemoval `json:"removal,omitempty"`
}

// KafkaClient builds readers and writers for a broker list.
type KafkaClient struct {
	Brokers []string
}

// NewKafkaClient parses a comma separated broker list.
func NewKafkaClient(brokersCSV string) *KafkaClient {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &KafkaClient{Brokers: brokers}
}

// Enabled reports whether any broker is configured.
func (c *KafkaClient) Enabled() bool {
	return len(c.Brokers) > 0
}

// NewWriter returns a writer that hashes keys to partitions, so events for
// one ticket or product stay ordered.
func (c *KafkaClient) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

// NewReader returns a consumer-group reader for topic.
func (c *KafkaClient) NewReader(topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  c.Brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher is a Sink that writes events to Kafka.
type Publisher struct {
	writer MessageWriter
	now    domain.Clock
}

var _ Sink = (*Publisher)(nil)

// NewPublisher wraps writer.
func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer, now: time.Now}
}

// PurchaseConfirmed publishes the purchase keyed by ticket code.
func (p *Publisher) PurchaseConfirmed(ctx context.Context, purchase domain.Purchase) error {
	return p.publish(ctx, purchase.Ticket.Code, Event{Type: KindPurchaseConfirmed, Purchase: &purchase})
}

// ProductRemoved publishes the removal keyed by product id.
func (p *Publisher) ProductRemoved(ctx context.Context, removal domain.ProductRemoval) error {
	return p.publish(ctx, removal.Product.ID, Event{Type: KindProductRemoved, Removal: &removal})
}

func (p *Publisher) publish(ctx context.Context, key string, event Event) error {
	event.ID = common.NewID()
	event.OccurredAt = p.now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	msg := kafka.Message{Key: []byte(key), Value: data, Time: event.OccurredAt}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Consumer reads events from Kafka and hands them to a Sink, normally the
// Mailer. Messages are committed after handling; undecodable ones are logged
// and skipped.
type Consumer struct {
	reader MessageReader
	sink   Sink
	logger *zap.Logger
}

// NewConsumer wires reader to sink.
func NewConsumer(reader MessageReader, sink Sink, logger *zap.Logger) *Consumer {
	return &Consumer{reader: reader, sink: sink, logger: logger}
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}
		if err := c.Handle(ctx, msg); err != nil {
			c.logger.Error("notification delivery failed",
				zap.ByteString("key", msg.Key),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit message: %w", err)
		}
	}
}

// Handle decodes one message and delivers it.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) error {
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	switch {
	case event.Type == KindPurchaseConfirmed && event.Purchase != nil:
		return c.sink.PurchaseConfirmed(ctx, *event.Purchase)
	case event.Type == KindProductRemoved && event.Removal != nil:
		return c.sink.ProductRemoved(ctx, *event.Removal)
	default:
		return fmt.Errorf("unsupported event type %q", event.Type)
	}
}
