package ledger

import (
	"context"
	"errors"
)

var (
	// ErrInvalidAmount is returned when an amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrWalletNotFound is returned when the caller has no wallet.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrRecipientWalletNotFound is returned when a transfer target address does not resolve.
	ErrRecipientWalletNotFound = errors.New("recipient wallet not found")

	// ErrInsufficientBalance is returned when a debit would take the balance below zero.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrSelfTransfer is returned when sender and recipient resolve to the same wallet.
	ErrSelfTransfer = errors.New("cannot transfer to own wallet")

	// ErrWalletExists is returned when a wallet id, owner or address is already taken.
	ErrWalletExists = errors.New("wallet already exists")

	// ErrAuditWriteFailed is returned when the audit event of an operation could not be
	// recorded. The operation is rolled back.
	ErrAuditWriteFailed = errors.New("audit event could not be recorded")

	// ErrUnavailable wraps store and infrastructure failures. No partial effect is visible.
	ErrUnavailable = errors.New("ledger store unavailable")
)

// Stable error codes exposed to callers.
const (
	CodeOK                      = "OK"
	CodeInvalidAmount           = "INVALID_AMOUNT"
	CodeWalletNotFound          = "WALLET_NOT_FOUND"
	CodeRecipientWalletNotFound = "RECIPIENT_WALLET_NOT_FOUND"
	CodeInsufficientBalance     = "INSUFFICIENT_BALANCE"
	CodeSelfTransfer            = "SELF_TRANSFER"
	CodeWalletExists            = "WALLET_EXISTS"
	CodeAuditWriteFailed        = "AUDIT_WRITE_FAILED"
	CodeUnavailable             = "UNAVAILABLE"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidAmount, CodeInvalidAmount},
	{ErrRecipientWalletNotFound, CodeRecipientWalletNotFound},
	{ErrWalletNotFound, CodeWalletNotFound},
	{ErrInsufficientBalance, CodeInsufficientBalance},
	{ErrSelfTransfer, CodeSelfTransfer},
	{ErrWalletExists, CodeWalletExists},
	{ErrAuditWriteFailed, CodeAuditWriteFailed},
	{ErrUnavailable, CodeUnavailable},
}

// Code maps an error returned by this package to its stable code. Unknown errors
// are reported as unavailable.
func Code(err error) string {
	if err == nil {
		return CodeOK
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeUnavailable
}

// Retryable reports whether retrying the same call may succeed. Business
// rejections never become retryable.
func Retryable(err error) bool {
	switch Code(err) {
	case CodeAuditWriteFailed, CodeUnavailable:
		return true
	default:
		return false
	}
}

// IsRejection reports whether err is a business or validation rejection rather
// than an infrastructure failure.
func IsRejection(err error) bool {
	return err != nil && !Retryable(err)
}

func known(err error) bool {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return true
		}
	}
	return false
}

// unavailable tags an infrastructure error so callers can branch on it while
// keeping the root cause reachable through errors.Is.
func unavailable(err error) error {
	if err == nil || known(err) {
		return err
	}
	return errors.Join(ErrUnavailable, err)
}

func auditFailed(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrUnavailable, err)
	}
	return errors.Join(ErrAuditWriteFailed, err)
}
