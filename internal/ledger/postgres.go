package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

const walletColumns = `id, user_id, wallet_address, balance::text, currency, created_at, updated_at`

// PostgresStore persists wallets, transactions and audit events in PostgreSQL.
// Update runs inside one transaction and takes row locks with SELECT ... FOR UPDATE.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateWallet inserts a wallet outside of any caller transaction.
func (s *PostgresStore) CreateWallet(ctx context.Context, w Wallet) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := InsertWallet(ctx, tx, w); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// InsertWallet writes a wallet row using the caller's transaction so the wallet
// can be created atomically with its owner.
func InsertWallet(ctx context.Context, tx pgx.Tx, w Wallet) error {
	_, err := tx.Exec(ctx, `INSERT INTO wallets (id, user_id, wallet_address, balance, currency, created_at, updated_at)
        VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)`,
		w.ID, w.UserID, w.Address, w.Balance.String(), w.Currency, w.CreatedAt.UTC(), w.UpdatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrWalletExists
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// WalletByUser returns the committed wallet of a user.
func (s *PostgresStore) WalletByUser(ctx context.Context, userID string) (Wallet, error) {
	row := s.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, userID)
	return scanWallet(row)
}

// WalletByAddress returns the committed wallet behind an address.
func (s *PostgresStore) WalletByAddress(ctx context.Context, address string) (Wallet, error) {
	row := s.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE wallet_address = $1`, address)
	return scanWallet(row)
}

// Update locks the wallets one by one in ascending id order, then runs fn
// against the open transaction.
func (s *PostgresStore) Update(ctx context.Context, walletIDs []string, fn func(ctx context.Context, u Unit) error) error {
	ids := slices.Clone(walletIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	u := &postgresUnit{tx: tx, locked: make(map[string]Wallet, len(ids))}
	for _, id := range ids {
		row := tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, id)
		w, err := scanWallet(row)
		if err != nil {
			return err
		}
		u.locked[id] = w
	}

	if err := fn(ctx, u); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// AppendEvent inserts a standalone audit event.
func (s *PostgresStore) AppendEvent(ctx context.Context, ev AuditEvent) error {
	return insertEvent(ctx, s.db, ev)
}

// ListTransactions returns transactions for a wallet in commit order.
func (s *PostgresStore) ListTransactions(ctx context.Context, walletID string, limit, offset int) ([]Transaction, error) {
	limit, offset = NormalizePage(limit, offset)
	rows, err := s.db.Query(ctx, `SELECT id, wallet_id, user_id, amount::text, transaction_type, direction,
            currency, description, status, balance_after::text, reference, counterparty, created_at
        FROM transactions WHERE wallet_id = $1 ORDER BY seq ASC LIMIT $2 OFFSET $3`, walletID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		var (
			t                    Transaction
			amount, balanceAfter string
			txType, dir, status  string
		)
		if err := rows.Scan(&t.ID, &t.WalletID, &t.UserID, &amount, &txType, &dir, &t.Currency, &t.Description,
			&status, &balanceAfter, &t.Reference, &t.Counterparty, &t.CreatedAt); err != nil {
			return nil, err
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if t.BalanceAfter, err = decimal.NewFromString(balanceAfter); err != nil {
			return nil, err
		}
		t.Type = TransactionType(txType)
		t.Direction = Direction(dir)
		t.Status = TransactionStatus(status)
		t.CreatedAt = t.CreatedAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEvents returns audit events for a user in commit order.
func (s *PostgresStore) ListEvents(ctx context.Context, userID string, limit, offset int) ([]AuditEvent, error) {
	limit, offset = NormalizePage(limit, offset)
	rows, err := s.db.Query(ctx, `SELECT id, user_id, action_type, action_name, payload::text, created_at
        FROM audit_events WHERE user_id = $1 ORDER BY seq ASC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AuditEvent{}
	for rows.Next() {
		var (
			ev      AuditEvent
			payload string
		)
		if err := rows.Scan(&ev.ID, &ev.UserID, &ev.ActionType, &ev.ActionName, &payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &ev.Payload); err != nil {
			return nil, fmt.Errorf("decode audit payload %s: %w", ev.ID, err)
		}
		ev.CreatedAt = ev.CreatedAt.UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}

type postgresUnit struct {
	tx     pgx.Tx
	locked map[string]Wallet
}

func (u *postgresUnit) Wallet(_ context.Context, id string) (Wallet, error) {
	w, ok := u.locked[id]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return w, nil
}

func (u *postgresUnit) SetBalance(ctx context.Context, walletID string, balance decimal.Decimal) error {
	w, ok := u.locked[walletID]
	if !ok {
		return ErrWalletNotFound
	}
	now := time.Now().UTC()
	_, err := u.tx.Exec(ctx, `UPDATE wallets SET balance = $2::numeric, updated_at = $3 WHERE id = $1`,
		walletID, balance.String(), now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return ErrInsufficientBalance
		}
		return fmt.Errorf("update balance: %w", err)
	}
	w.Balance = balance
	w.UpdatedAt = now
	u.locked[walletID] = w
	return nil
}

func (u *postgresUnit) AppendTransaction(ctx context.Context, t Transaction) error {
	_, err := u.tx.Exec(ctx, `INSERT INTO transactions (id, wallet_id, user_id, amount, transaction_type, direction,
            currency, description, status, balance_after, reference, counterparty, created_at)
        VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10::numeric, $11, $12, $13)`,
		t.ID, t.WalletID, t.UserID, t.Amount.String(), string(t.Type), string(t.Direction), t.Currency,
		t.Description, string(t.Status), t.BalanceAfter.String(), t.Reference, t.Counterparty, t.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (u *postgresUnit) AppendEvent(ctx context.Context, ev AuditEvent) error {
	return insertEvent(ctx, u.tx, ev)
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertEvent(ctx context.Context, db execer, ev AuditEvent) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("encode audit payload: %w", err)
	}
	_, err = db.Exec(ctx, `INSERT INTO audit_events (id, user_id, action_type, action_name, payload, created_at)
        VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
		ev.ID, ev.UserID, ev.ActionType, ev.ActionName, string(payload), ev.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w       Wallet
		balance string
	)
	if err := row.Scan(&w.ID, &w.UserID, &w.Address, &balance, &w.Currency, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, err
	}
	b, err := decimal.NewFromString(balance)
	if err != nil {
		return Wallet{}, fmt.Errorf("decode balance for wallet %s: %w", w.ID, err)
	}
	w.Balance = b
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return w, nil
}

var _ Store = (*PostgresStore)(nil)
