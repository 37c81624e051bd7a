package identity

import (
	"context"
	"sync"

	"github.com/cerdowizard/node-wallet/internal/ledger"
)

// WalletCreator opens wallets. ledger.Store satisfies it.
type WalletCreator interface {
	CreateWallet(ctx context.Context, w ledger.Wallet) error
}

type memoryRepository struct {
	mu      sync.RWMutex
	users   map[string]User
	byID    map[string]string
	wallets WalletCreator
}

// NewMemoryRepository builds an in-memory user store that opens wallets
// through the given creator.
func NewMemoryRepository(wallets WalletCreator) Repository {
	return &memoryRepository{
		users:   make(map[string]User),
		byID:    make(map[string]string),
		wallets: wallets,
	}
}

func (r *memoryRepository) Create(ctx context.Context, user User, wallet ledger.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Email]; exists {
		return ErrUserExists
	}
	// The user becomes visible only once its wallet exists.
	if err := r.wallets.CreateWallet(ctx, wallet); err != nil {
		return err
	}
	r.users[user.Email] = user
	r.byID[user.ID] = user.Email
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email, ok := r.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return r.users[email], nil
}
