package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the durable home of wallets, the transaction log and the audit log.
// Implementations must make every Update all-or-nothing and must serialize
// Updates that share a wallet while letting disjoint wallets proceed in parallel.
type Store interface {
	// CreateWallet persists a new wallet. Returns ErrWalletExists on duplicates.
	CreateWallet(ctx context.Context, w Wallet) error

	// WalletByUser and WalletByAddress return committed state or ErrWalletNotFound.
	WalletByUser(ctx context.Context, userID string) (Wallet, error)
	WalletByAddress(ctx context.Context, address string) (Wallet, error)

	// Update locks the given wallets in ascending id order and runs fn. Writes
	// staged through the Unit commit only if fn returns nil and ctx is still live.
	Update(ctx context.Context, walletIDs []string, fn func(ctx context.Context, u Unit) error) error

	// AppendEvent records a standalone audit event in its own atomic unit.
	AppendEvent(ctx context.Context, ev AuditEvent) error

	// ListTransactions returns a wallet's transactions in commit order.
	ListTransactions(ctx context.Context, walletID string, limit, offset int) ([]Transaction, error)

	// ListEvents returns a user's audit events in commit order.
	ListEvents(ctx context.Context, userID string, limit, offset int) ([]AuditEvent, error)
}

// Unit is the view of the store inside one Update. Wallet reads reflect writes
// already staged in the same unit.
type Unit interface {
	Wallet(ctx context.Context, id string) (Wallet, error)
	SetBalance(ctx context.Context, walletID string, balance decimal.Decimal) error
	AppendTransaction(ctx context.Context, tx Transaction) error
	AppendEvent(ctx context.Context, ev AuditEvent) error
}

// Publisher receives committed transactions for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, tx Transaction) error
}

// Observer receives the outcome of every ledger operation.
type Observer interface {
	ObserveOperation(op, code string, elapsed time.Duration)
}

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// NormalizePage applies the default page size, the maximum page size and a
// non-negative offset.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
