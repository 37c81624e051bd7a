package wallet

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cerdowizard/node-wallet/internal/httperr"
	"github.com/cerdowizard/node-wallet/internal/ledger"
	"github.com/cerdowizard/node-wallet/internal/middleware"
)

// Handler exposes the caller's wallet over HTTP.
type Handler struct {
	ledger   *ledger.Service
	validate *validator.Validate
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(svc *ledger.Service, validate *validator.Validate) *Handler {
	return &Handler{ledger: svc, validate: validate}
}

// Get returns the caller's wallet record.
func (h *Handler) Get(c *fiber.Ctx) error {
	w, err := h.ledger.Wallet(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return ledgerError(err)
	}
	return c.Status(http.StatusOK).JSON(toWallet(w))
}

// Balance returns the committed balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	balance, err := h.ledger.GetBalance(c.UserContext(), userID)
	if err != nil {
		return ledgerError(err)
	}
	// Currency is fixed when the wallet is opened.
	w, err := h.ledger.Wallet(c.UserContext(), userID)
	if err != nil {
		return ledgerError(err)
	}
	return c.Status(http.StatusOK).JSON(balanceResponse{Balance: balance, Currency: w.Currency})
}

// Transactions lists the caller's transactions, oldest first.
func (h *Handler) Transactions(c *fiber.Ctx) error {
	limit, offset := ledger.NormalizePage(c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	txs, err := h.ledger.ListTransactions(c.UserContext(), middleware.UserID(c), limit, offset)
	if err != nil {
		return ledgerError(err)
	}
	items := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		items = append(items, toTransaction(tx))
	}
	return c.Status(http.StatusOK).JSON(pageResponse[transactionResponse]{Items: items, Limit: limit, Offset: offset})
}

// Events lists the caller's audit events, oldest first.
func (h *Handler) Events(c *fiber.Ctx) error {
	limit, offset := ledger.NormalizePage(c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	events, err := h.ledger.ListEvents(c.UserContext(), middleware.UserID(c), limit, offset)
	if err != nil {
		return ledgerError(err)
	}
	items := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		items = append(items, toEvent(ev))
	}
	return c.Status(http.StatusOK).JSON(pageResponse[eventResponse]{Items: items, Limit: limit, Offset: offset})
}

// Fund credits the caller's wallet.
func (h *Handler) Fund(c *fiber.Ctx) error {
	var req fundRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}
	tx, err := h.ledger.Fund(c.UserContext(), middleware.UserID(c), req.Amount)
	if err != nil {
		return ledgerError(err)
	}
	return c.Status(http.StatusCreated).JSON(toTransaction(tx))
}

// Withdraw debits the caller's wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	var req withdrawRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}
	tx, err := h.ledger.Withdraw(c.UserContext(), middleware.UserID(c), req.Amount, req.Currency)
	if err != nil {
		return ledgerError(err)
	}
	return c.Status(http.StatusCreated).JSON(toTransaction(tx))
}

// Transfer moves funds to another wallet by address.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := h.parse(c, &req); err != nil {
		return err
	}
	tx, err := h.ledger.Transfer(c.UserContext(), middleware.UserID(c), req.RecipientWalletAddress, req.Amount, req.Currency)
	if err != nil {
		return ledgerError(err)
	}
	return c.Status(http.StatusCreated).JSON(toTransaction(tx))
}

func (h *Handler) parse(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return httperr.BadRequest("invalid request body")
	}
	if err := h.validate.Struct(out); err != nil {
		return httperr.BadRequest(err.Error())
	}
	return nil
}
