package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cerdowizard/node-wallet/internal/ledger"
)

const (
	// TypeTransactionCompleted is emitted once per committed transaction row.
	TypeTransactionCompleted = "transaction.completed"

	// DefaultChannel is the Redis pub/sub channel used by RedisPublisher.
	DefaultChannel = "wallet:transaction:events"
)

// TransactionCompleted is the wire payload announced after a ledger commit.
type TransactionCompleted struct {
	EventType     string          `json:"event_type"`
	TransactionID string          `json:"transaction_id"`
	Reference     string          `json:"reference"`
	WalletID      string          `json:"wallet_id"`
	UserID        string          `json:"user_id"`
	Type          string          `json:"transaction_type"`
	Direction     string          `json:"direction"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Counterparty  string          `json:"counterparty,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FromTransaction builds the event for a committed transaction.
func FromTransaction(tx ledger.Transaction) TransactionCompleted {
	return TransactionCompleted{
		EventType:     TypeTransactionCompleted,
		TransactionID: tx.ID,
		Reference:     tx.Reference,
		WalletID:      tx.WalletID,
		UserID:        tx.UserID,
		Type:          string(tx.Type),
		Direction:     string(tx.Direction),
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		BalanceAfter:  tx.BalanceAfter,
		Counterparty:  tx.Counterparty,
		CreatedAt:     tx.CreatedAt,
	}
}

func encode(tx ledger.Transaction) ([]byte, error) {
	payload, err := json.Marshal(FromTransaction(tx))
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return payload, nil
}

// LogPublisher writes events to the structured logger. It is the default sink
// in development.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs a logging publisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish writes the event to the structured logger.
func (p *LogPublisher) Publish(_ context.Context, tx ledger.Transaction) error {
	if p == nil || p.logger == nil {
		return nil
	}
	p.logger.Info("event",
		slog.String("event_type", TypeTransactionCompleted),
		slog.String("transaction_id", tx.ID),
		slog.String("wallet_id", tx.WalletID),
		slog.String("direction", string(tx.Direction)),
		slog.String("amount", tx.Amount.String()),
	)
	return nil
}

var _ ledger.Publisher = (*LogPublisher)(nil)
