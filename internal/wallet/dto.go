package wallet

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cerdowizard/node-wallet/internal/ledger"
)

type fundRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type withdrawRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" validate:"omitempty,iso4217"`
}

type transferRequest struct {
	RecipientWalletAddress string          `json:"recipient_wallet_address" validate:"required,max=64"`
	Amount                 decimal.Decimal `json:"amount"`
	Currency               string          `json:"currency" validate:"omitempty,iso4217"`
}

type walletResponse struct {
	ID        string          `json:"id"`
	Address   string          `json:"wallet_address"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type balanceResponse struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

type transactionResponse struct {
	ID           string          `json:"id"`
	WalletID     string          `json:"wallet_id"`
	Type         string          `json:"transaction_type"`
	Direction    string          `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Status       string          `json:"status"`
	Description  string          `json:"description"`
	Reference    string          `json:"reference"`
	Counterparty string          `json:"counterparty,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type eventResponse struct {
	ID         string         `json:"id"`
	ActionType string         `json:"action_type"`
	ActionName string         `json:"action_name"`
	Payload    map[string]any `json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}

type pageResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func toWallet(w ledger.Wallet) walletResponse {
	return walletResponse{
		ID:        w.ID,
		Address:   w.Address,
		Balance:   w.Balance,
		Currency:  w.Currency,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toTransaction(tx ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:           tx.ID,
		WalletID:     tx.WalletID,
		Type:         string(tx.Type),
		Direction:    string(tx.Direction),
		Amount:       tx.Amount,
		Currency:     tx.Currency,
		BalanceAfter: tx.BalanceAfter,
		Status:       string(tx.Status),
		Description:  tx.Description,
		Reference:    tx.Reference,
		Counterparty: tx.Counterparty,
		CreatedAt:    tx.CreatedAt,
	}
}

func toEvent(ev ledger.AuditEvent) eventResponse {
	return eventResponse{
		ID:         ev.ID,
		ActionType: ev.ActionType,
		ActionName: ev.ActionName,
		Payload:    ev.Payload,
		CreatedAt:  ev.CreatedAt,
	}
}
