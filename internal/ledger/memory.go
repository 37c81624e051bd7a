package ledger

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryStore is a concurrency-safe in-memory Store used in development and tests.
//
// Each wallet owns a one-slot semaphore; Update acquires them in ascending id
// order, so operations on the same wallet run one at a time while operations on
// different wallets do not wait on each other. Committed state lives behind mu,
// which is only held for short copies and the final commit.
type MemoryStore struct {
	mu           sync.RWMutex
	wallets      map[string]Wallet
	byUser       map[string]string
	byAddress    map[string]string
	transactions map[string][]Transaction
	events       map[string][]AuditEvent

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		wallets:      make(map[string]Wallet),
		byUser:       make(map[string]string),
		byAddress:    make(map[string]string),
		transactions: make(map[string][]Transaction),
		events:       make(map[string][]AuditEvent),
		locks:        make(map[string]chan struct{}),
	}
}

func (m *MemoryStore) CreateWallet(ctx context.Context, w Wallet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.wallets[w.ID]; exists {
		return ErrWalletExists
	}
	if _, exists := m.byUser[w.UserID]; exists {
		return ErrWalletExists
	}
	if _, exists := m.byAddress[w.Address]; exists {
		return ErrWalletExists
	}
	m.wallets[w.ID] = w
	m.byUser[w.UserID] = w.ID
	m.byAddress[w.Address] = w.ID
	return nil
}

func (m *MemoryStore) WalletByUser(_ context.Context, userID string) (Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byUser[userID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return m.wallets[id], nil
}

func (m *MemoryStore) WalletByAddress(_ context.Context, address string) (Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byAddress[address]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return m.wallets[id], nil
}

func (m *MemoryStore) Update(ctx context.Context, walletIDs []string, fn func(ctx context.Context, u Unit) error) error {
	ids := slices.Clone(walletIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	release, err := m.acquire(ctx, ids)
	if err != nil {
		return err
	}
	defer release()

	u := &memoryUnit{locked: make(map[string]Wallet, len(ids))}
	m.mu.RLock()
	for _, id := range ids {
		w, ok := m.wallets[id]
		if !ok {
			m.mu.RUnlock()
			return ErrWalletNotFound
		}
		u.locked[id] = w
	}
	m.mu.RUnlock()

	if err := fn(ctx, u); err != nil {
		return err
	}
	// A caller that went away before commit gets a full rollback.
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now().UTC()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range u.dirty {
		w := u.locked[id]
		w.UpdatedAt = now
		m.wallets[id] = w
	}
	for _, tx := range u.transactions {
		m.transactions[tx.WalletID] = append(m.transactions[tx.WalletID], tx)
	}
	for _, ev := range u.events {
		m.events[ev.UserID] = append(m.events[ev.UserID], ev)
	}
	return nil
}

func (m *MemoryStore) AppendEvent(ctx context.Context, ev AuditEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.Payload = maps.Clone(ev.Payload)
	m.events[ev.UserID] = append(m.events[ev.UserID], ev)
	return nil
}

func (m *MemoryStore) ListTransactions(_ context.Context, walletID string, limit, offset int) ([]Transaction, error) {
	limit, offset = NormalizePage(limit, offset)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return page(m.transactions[walletID], limit, offset), nil
}

func (m *MemoryStore) ListEvents(_ context.Context, userID string, limit, offset int) ([]AuditEvent, error) {
	limit, offset = NormalizePage(limit, offset)
	m.mu.RLock()
	defer m.mu.RUnlock()
	return page(m.events[userID], limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return slices.Clone(items[offset:end])
}

func (m *MemoryStore) walletLock(id string) chan struct{} {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		m.locks[id] = l
	}
	return l
}

// acquire takes the wallet locks in the given (sorted) order. On cancellation
// every lock taken so far is released.
func (m *MemoryStore) acquire(ctx context.Context, ids []string) (func(), error) {
	held := make([]chan struct{}, 0, len(ids))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i]
		}
	}
	for _, id := range ids {
		l := m.walletLock(id)
		select {
		case l <- struct{}{}:
			held = append(held, l)
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}
	return release, nil
}

type memoryUnit struct {
	locked       map[string]Wallet
	dirty        map[string]struct{}
	transactions []Transaction
	events       []AuditEvent
}

func (u *memoryUnit) Wallet(_ context.Context, id string) (Wallet, error) {
	w, ok := u.locked[id]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return w, nil
}

func (u *memoryUnit) SetBalance(_ context.Context, walletID string, balance decimal.Decimal) error {
	w, ok := u.locked[walletID]
	if !ok {
		return ErrWalletNotFound
	}
	if balance.IsNegative() {
		return ErrInsufficientBalance
	}
	w.Balance = balance
	u.locked[walletID] = w
	if u.dirty == nil {
		u.dirty = make(map[string]struct{})
	}
	u.dirty[walletID] = struct{}{}
	return nil
}

func (u *memoryUnit) AppendTransaction(_ context.Context, tx Transaction) error {
	if _, ok := u.locked[tx.WalletID]; !ok {
		return ErrWalletNotFound
	}
	u.transactions = append(u.transactions, tx)
	return nil
}

func (u *memoryUnit) AppendEvent(_ context.Context, ev AuditEvent) error {
	ev.Payload = maps.Clone(ev.Payload)
	u.events = append(u.events, ev)
	return nil
}

var _ Store = (*MemoryStore)(nil)
