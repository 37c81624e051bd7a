package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// SeedBalance is a test helper that overwrites a wallet balance when using the
// in-memory store. It bypasses the transaction log.
func SeedBalance(s Store, walletID string, amount decimal.Decimal) {
	mem, ok := s.(*MemoryStore)
	if !ok {
		return
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	if w, exists := mem.wallets[walletID]; exists {
		w.Balance = amount
		w.UpdatedAt = time.Now().UTC()
		mem.wallets[walletID] = w
	}
}
