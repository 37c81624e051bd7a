package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// TransactionType classifies a completed monetary operation.
type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypeTransfer   TransactionType = "TRANSFER"
)

// TransactionStatus is the outcome recorded on a transaction row.
type TransactionStatus string

const (
	StatusSuccess TransactionStatus = "SUCCESS"
	// StatusFailed is reserved for imported history; rejected operations leave
	// no transaction row and are recorded in the audit log instead.
	StatusFailed TransactionStatus = "FAILED"
)

// Direction tells whether a transaction row moved money into or out of its wallet.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

const (
	// DefaultCurrency is used when a wallet is opened without an explicit currency.
	DefaultCurrency = "USD"

	addressPrefix = "wal_"
)

// Wallet is the single balance-holding account owned by a user.
type Wallet struct {
	ID        string
	UserID    string
	Address   string
	Balance   decimal.Decimal
	Currency  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is an immutable record of a committed balance change on one wallet.
type Transaction struct {
	ID           string
	WalletID     string
	UserID       string
	Amount       decimal.Decimal
	Type         TransactionType
	Direction    Direction
	Currency     string
	Description  string
	Status       TransactionStatus
	BalanceAfter decimal.Decimal
	Reference    string
	Counterparty string
	CreatedAt    time.Time
}

// AuditEvent records an attempted action, whether or not it changed a balance.
type AuditEvent struct {
	ID         string
	UserID     string
	ActionType string
	ActionName string
	Payload    map[string]any
	CreatedAt  time.Time
}

// NewWallet builds a zero-balance wallet for the user with a fresh address.
func NewWallet(userID, currency string) Wallet {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	now := time.Now().UTC()
	return Wallet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Address:   NewAddress(),
		Balance:   decimal.Zero,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewAddress returns a unique, stable wallet address used as a transfer target.
func NewAddress() string {
	return addressPrefix + strings.ToLower(ulid.Make().String())
}
