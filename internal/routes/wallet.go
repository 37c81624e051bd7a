package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cerdowizard/node-wallet/internal/wallet"
)

// RegisterWalletRoutes wires the caller's wallet endpoints on r, which is
// expected to be the authenticated /wallet group. Mutations pass through
// idempotency when it is configured.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, idempotency fiber.Handler) {
	r.Get("/", h.Get)
	r.Get("/balance", h.Balance)
	r.Get("/transactions", h.Transactions)
	r.Get("/events", h.Events)

	mutate := []fiber.Handler{}
	if idempotency != nil {
		mutate = append(mutate, idempotency)
	}
	r.Post("/fund", append(mutate, h.Fund)...)
	r.Post("/withdraw", append(mutate, h.Withdraw)...)
	r.Post("/transfer", append(mutate, h.Transfer)...)
}
