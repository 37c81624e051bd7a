package events

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/cerdowizard/node-wallet/internal/ledger"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaPublisher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher writes events to a Kafka topic keyed by wallet id, so rows of
// one wallet land on one partition in commit order.
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaPublisher wraps a configured writer.
func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish writes the event.
func (p *KafkaPublisher) Publish(ctx context.Context, tx ledger.Transaction) error {
	payload, err := encode(tx)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(tx.WalletID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(TypeTransactionCompleted)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}
	return nil
}

var _ ledger.Publisher = (*KafkaPublisher)(nil)
