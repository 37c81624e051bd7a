package ledger

import (
	"context"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operation names reported to observers and logs.
const (
	OpFund     = "fund"
	OpWithdraw = "withdraw"
	OpTransfer = "transfer"
)

// Audit action tags.
const (
	ActionTypePost = "POST"

	ActionFund     = "POST /api/v1/wallet/fund"
	ActionWithdraw = "POST /api/v1/wallet/withdraw"
	ActionTransfer = "POST /api/v1/wallet/transfer"
)

const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
)

// Service is the ledger operations engine. Each monetary operation runs as one
// Store.Update: balance writes, transaction rows and the audit event commit
// together or not at all.
type Service struct {
	store     Store
	resolver  *Resolver
	publisher Publisher
	observer  Observer
	logger    *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithPublisher sets the sink notified after each committed operation.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithObserver sets the sink receiving per-operation outcomes and latency.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// NewService builds the engine over an explicitly constructed store.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, resolver: NewResolver(store), logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fund credits amount to the caller's wallet and returns the DEPOSIT transaction.
func (s *Service) Fund(ctx context.Context, userID string, amount decimal.Decimal) (Transaction, error) {
	start := time.Now()
	tx, err := s.fund(ctx, userID, amount)
	s.finish(OpFund, userID, start, err)
	return tx, err
}

func (s *Service) fund(ctx context.Context, userID string, amount decimal.Decimal) (Transaction, error) {
	// Invalid amounts never reach a store, so no audit event is written for them.
	if amount.Sign() <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	payload := map[string]any{"amount": amount.String()}

	w, err := s.resolver.ByUser(ctx, userID)
	if err != nil {
		return Transaction{}, s.rejected(ctx, userID, ActionFund, payload, err)
	}

	var out Transaction
	err = s.store.Update(ctx, []string{w.ID}, func(ctx context.Context, u Unit) error {
		cur, err := u.Wallet(ctx, w.ID)
		if err != nil {
			return err
		}
		balance := cur.Balance.Add(amount)
		out = newTransaction(cur, TypeDeposit, DirectionCredit, amount, balance, "Fund wallet")
		if err := u.AppendTransaction(ctx, out); err != nil {
			return err
		}
		if err := u.SetBalance(ctx, cur.ID, balance); err != nil {
			return err
		}
		return appendAudit(ctx, u, userID, ActionFund, succeeded(payload, out))
	})
	if err != nil {
		return Transaction{}, s.rejected(ctx, userID, ActionFund, payload, err)
	}

	s.publish(ctx, out)
	return out, nil
}

// Withdraw debits amount from the caller's wallet. currency is recorded for the
// audit trail only; no conversion takes place.
func (s *Service) Withdraw(ctx context.Context, userID string, amount decimal.Decimal, currency string) (Transaction, error) {
	start := time.Now()
	tx, err := s.withdraw(ctx, userID, amount, currency)
	s.finish(OpWithdraw, userID, start, err)
	return tx, err
}

func (s *Service) withdraw(ctx context.Context, userID string, amount decimal.Decimal, currency string) (Transaction, error) {
	// Invalid amounts never reach a store, so no audit event is written for them.
	if amount.Sign() <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	payload := map[string]any{"amount": amount.String(), "currency": normalizeCurrency(currency)}

	w, err := s.resolver.ByUser(ctx, userID)
	if err != nil {
		return Transaction{}, s.rejected(ctx, userID, ActionWithdraw, payload, err)
	}

	var out Transaction
	err = s.store.Update(ctx, []string{w.ID}, func(ctx context.Context, u Unit) error {
		cur, err := u.Wallet(ctx, w.ID)
		if err != nil {
			return err
		}
		if cur.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}
		balance := cur.Balance.Sub(amount)
		out = newTransaction(cur, TypeWithdrawal, DirectionDebit, amount, balance, "Withdraw wallet")
		if err := u.AppendTransaction(ctx, out); err != nil {
			return err
		}
		if err := u.SetBalance(ctx, cur.ID, balance); err != nil {
			return err
		}
		return appendAudit(ctx, u, userID, ActionWithdraw, succeeded(payload, out))
	})
	if err != nil {
		return Transaction{}, s.rejected(ctx, userID, ActionWithdraw, payload, err)
	}

	s.publish(ctx, out)
	return out, nil
}

// Transfer moves amount from the caller's wallet to the wallet at
// recipientAddress. Both legs commit in one unit; the sender's TRANSFER row is
// returned.
func (s *Service) Transfer(ctx context.Context, userID, recipientAddress string, amount decimal.Decimal, currency string) (Transaction, error) {
	start := time.Now()
	tx, err := s.transfer(ctx, userID, recipientAddress, amount, currency)
	s.finish(OpTransfer, userID, start, err)
	return tx, err
}

func (s *Service) transfer(ctx context.Context, userID, recipientAddress string, amount decimal.Decimal, currency string) (Transaction, error) {
	// Invalid amounts never reach a store, so no audit event is written for them.
	if amount.Sign() <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	payload := map[string]any{
		"amount":                   amount.String(),
		"currency":                 normalizeCurrency(currency),
		"recipient_wallet_address": strings.TrimSpace(recipientAddress),
	}

	sender, err := s.resolver.ByUser(ctx, userID)
	if err != nil {
		return Transaction{}, s.rejected(ctx, userID, ActionTransfer, payload, err)
	}
	recipient, err := s.resolver.recipient(ctx, recipientAddress)
	if err != nil {
		return Transaction{}, s.rejected(ctx, userID, ActionTransfer, payload, err)
	}
	if sender.ID == recipient.ID {
		return Transaction{}, s.rejected(ctx, userID, ActionTransfer, payload, ErrSelfTransfer)
	}

	var legs [2]Transaction
	err = s.store.Update(ctx, []string{sender.ID, recipient.ID}, func(ctx context.Context, u Unit) error {
		from, err := u.Wallet(ctx, sender.ID)
		if err != nil {
			return err
		}
		to, err := u.Wallet(ctx, recipient.ID)
		if err != nil {
			return err
		}
		if from.Balance.LessThan(amount) {
			return ErrInsufficientBalance
		}

		fromBalance := from.Balance.Sub(amount)
		toBalance := to.Balance.Add(amount)
		reference := uuid.NewString()

		debit := newTransaction(from, TypeTransfer, DirectionDebit, amount, fromBalance, "Transfer to "+to.Address)
		debit.Reference = reference
		debit.Counterparty = to.Address
		credit := newTransaction(to, TypeTransfer, DirectionCredit, amount, toBalance, "Transfer from "+from.Address)
		credit.Reference = reference
		credit.Counterparty = from.Address
		legs = [2]Transaction{debit, credit}

		for _, leg := range legs {
			if err := u.AppendTransaction(ctx, leg); err != nil {
				return err
			}
		}
		if err := u.SetBalance(ctx, from.ID, fromBalance); err != nil {
			return err
		}
		if err := u.SetBalance(ctx, to.ID, toBalance); err != nil {
			return err
		}
		return appendAudit(ctx, u, userID, ActionTransfer, succeeded(payload, debit))
	})
	if err != nil {
		return Transaction{}, s.rejected(ctx, userID, ActionTransfer, payload, err)
	}

	s.publish(ctx, legs[:]...)
	return legs[0], nil
}

// Wallet returns the caller's wallet record.
func (s *Service) Wallet(ctx context.Context, userID string) (Wallet, error) {
	return s.resolver.ByUser(ctx, userID)
}

// GetBalance returns the committed balance of the caller's wallet.
func (s *Service) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	w, err := s.resolver.ByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

// ListTransactions returns the caller's transactions in commit order.
func (s *Service) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	w, err := s.resolver.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, w.ID, limit, offset)
	if err != nil {
		return nil, unavailable(err)
	}
	return txs, nil
}

// ListEvents returns the caller's audit events in commit order.
func (s *Service) ListEvents(ctx context.Context, userID string, limit, offset int) ([]AuditEvent, error) {
	events, err := s.store.ListEvents(ctx, userID, limit, offset)
	if err != nil {
		return nil, unavailable(err)
	}
	return events, nil
}

// rejected classifies err and, for business rejections, records the attempt in
// the audit log in its own unit. The unit that carried the attempt has already
// rolled back.
func (s *Service) rejected(ctx context.Context, userID, action string, payload map[string]any, err error) error {
	err = unavailable(err)
	if !IsRejection(err) || userID == "" {
		return err
	}
	p := maps.Clone(payload)
	p["outcome"] = outcomeRejected
	p["code"] = Code(err)
	if auditErr := s.store.AppendEvent(ctx, newEvent(userID, action, p)); auditErr != nil {
		s.logger.Error("record rejected attempt",
			slog.String("user_id", userID),
			slog.String("action", action),
			slog.Any("error", auditErr),
		)
	}
	return err
}

func (s *Service) finish(op, userID string, start time.Time, err error) {
	code := Code(err)
	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveOperation(op, code, elapsed)
	}
	attrs := []any{
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.String("code", code),
		slog.Duration("duration", elapsed),
	}
	switch {
	case err == nil:
		s.logger.Info("ledger operation committed", attrs...)
	case Retryable(err):
		s.logger.Error("ledger operation failed", append(attrs, slog.Any("error", err))...)
	default:
		s.logger.Warn("ledger operation rejected", attrs...)
	}
}

// publish hands committed rows to the publisher. Failures are logged: the
// ledger is already committed and stays the source of truth.
func (s *Service) publish(ctx context.Context, txs ...Transaction) {
	if s.publisher == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, tx := range txs {
		if err := s.publisher.Publish(ctx, tx); err != nil {
			s.logger.Error("publish transaction",
				slog.String("transaction_id", tx.ID),
				slog.String("wallet_id", tx.WalletID),
				slog.Any("error", err),
			)
		}
	}
}

func appendAudit(ctx context.Context, u Unit, userID, action string, payload map[string]any) error {
	if err := u.AppendEvent(ctx, newEvent(userID, action, payload)); err != nil {
		return auditFailed(err)
	}
	return nil
}

func newTransaction(w Wallet, typ TransactionType, dir Direction, amount, balanceAfter decimal.Decimal, description string) Transaction {
	id := uuid.NewString()
	return Transaction{
		ID:           id,
		WalletID:     w.ID,
		UserID:       w.UserID,
		Amount:       amount,
		Type:         typ,
		Direction:    dir,
		Currency:     w.Currency,
		Description:  description,
		Status:       StatusSuccess,
		BalanceAfter: balanceAfter,
		Reference:    id,
		CreatedAt:    time.Now().UTC(),
	}
}

func newEvent(userID, action string, payload map[string]any) AuditEvent {
	return AuditEvent{
		ID:         uuid.NewString(),
		UserID:     userID,
		ActionType: ActionTypePost,
		ActionName: action,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}
}

func succeeded(payload map[string]any, tx Transaction) map[string]any {
	p := maps.Clone(payload)
	p["outcome"] = outcomeSuccess
	p["wallet_id"] = tx.WalletID
	p["transaction_id"] = tx.ID
	p["reference"] = tx.Reference
	p["balance_after"] = tx.BalanceAfter.String()
	if _, ok := p["currency"]; !ok || p["currency"] == "" {
		p["currency"] = tx.Currency
	}
	return p
}

func normalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}
