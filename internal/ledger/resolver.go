package ledger

import (
	"context"
	"errors"
	"strings"
)

// Resolver maps a user identity or a wallet address to the wallet record.
// It only reads committed state; mutating operations re-read the wallet under
// its lock inside Store.Update.
type Resolver struct {
	store Store
}

// NewResolver builds a resolver over the store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ByUser returns the caller's wallet or ErrWalletNotFound.
func (r *Resolver) ByUser(ctx context.Context, userID string) (Wallet, error) {
	if strings.TrimSpace(userID) == "" {
		return Wallet{}, ErrWalletNotFound
	}
	w, err := r.store.WalletByUser(ctx, userID)
	if err != nil {
		return Wallet{}, unavailable(err)
	}
	return w, nil
}

// ByAddress returns the wallet behind an address or ErrWalletNotFound.
func (r *Resolver) ByAddress(ctx context.Context, address string) (Wallet, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Wallet{}, ErrWalletNotFound
	}
	w, err := r.store.WalletByAddress(ctx, address)
	if err != nil {
		return Wallet{}, unavailable(err)
	}
	return w, nil
}

// recipient resolves a transfer target, reporting a miss as ErrRecipientWalletNotFound.
func (r *Resolver) recipient(ctx context.Context, address string) (Wallet, error) {
	w, err := r.ByAddress(ctx, address)
	if errors.Is(err, ErrWalletNotFound) {
		return Wallet{}, ErrRecipientWalletNotFound
	}
	return w, err
}
