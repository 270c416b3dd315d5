package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"account-ledger/config"
	"account-ledger/internal/core/domain"
	"account-ledger/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements ports.EventPublisher on a Kafka topic.
// Messages are keyed by sender id so one account's transfers stay ordered.
type Publisher struct {
	writer  messageWriter
	topic   string
	signer  ports.EventSigner // optional
	timeout time.Duration     // 0 = bounded by the caller's context only
	log     zerolog.Logger
}

// HeaderSignature carries the hex HMAC-SHA256 of the message value.
const HeaderSignature = "signature"

// NewPublisher creates a publisher writing to cfg.Topic on cfg.Brokers.
// A non-nil signer adds a signature header to every message. Each publish,
// retries included, is bounded by cfg.PublishTimeout.
func NewPublisher(cfg config.KafkaConfig, signer ports.EventSigner, log zerolog.Logger) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.PublishTimeout,
		MaxAttempts:  3,
	}
	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Dur("publish_timeout", cfg.PublishTimeout).
		Msg("Kafka publisher configured")
	return newPublisher(w, cfg.Topic, signer, cfg.PublishTimeout, log)
}

func newPublisher(w messageWriter, topic string, signer ports.EventSigner, timeout time.Duration, log zerolog.Logger) *Publisher {
	return &Publisher{writer: w, topic: topic, signer: signer, timeout: timeout, log: log}
}

// PublishTransfer writes one transfer event.
func (p *Publisher) PublishTransfer(ctx context.Context, event domain.TransferEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode transfer event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.SenderID.String()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
		Time: event.OccurredAt,
	}
	if p.signer != nil {
		msg.Headers = append(msg.Headers, kafka.Header{Key: HeaderSignature, Value: []byte(p.signer.Sign(data))})
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Type, p.topic, err)
	}

	p.log.Debug().Str("transfer_id", event.TransferID.String()).Msg("transfer event published")
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
