package wallet

import (
	"net/http"

	"github.com/cerdowizard/node-wallet/internal/httperr"
	"github.com/cerdowizard/node-wallet/internal/ledger"
)

var statusByCode = map[string]int{
	ledger.CodeInvalidAmount:           http.StatusBadRequest,
	ledger.CodeWalletNotFound:          http.StatusNotFound,
	ledger.CodeRecipientWalletNotFound: http.StatusNotFound,
	ledger.CodeInsufficientBalance:     http.StatusUnprocessableEntity,
	ledger.CodeSelfTransfer:            http.StatusUnprocessableEntity,
	ledger.CodeWalletExists:            http.StatusConflict,
	ledger.CodeAuditWriteFailed:        http.StatusServiceUnavailable,
	ledger.CodeUnavailable:             http.StatusServiceUnavailable,
}

// ledgerError translates a ledger error into the API envelope. Infrastructure
// detail stays in the logs.
func ledgerError(err error) *httperr.Error {
	code := ledger.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusServiceUnavailable
	}
	message := err.Error()
	if ledger.Retryable(err) {
		message = "ledger temporarily unavailable, retry the request"
		if code == ledger.CodeAuditWriteFailed {
			message = "operation could not be recorded, retry the request"
		}
	}
	return &httperr.Error{Status: status, Code: code, Message: message, Retryable: ledger.Retryable(err)}
}
