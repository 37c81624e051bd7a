package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCodeAndRetryable(t *testing.T) {
	dbDown := errors.New("connection refused")
	cases := []struct {
		name      string
		err       error
		code      string
		retryable bool
	}{
		{"nil", nil, CodeOK, false},
		{"invalid amount", ErrInvalidAmount, CodeInvalidAmount, false},
		{"wallet not found", fmt.Errorf("lookup: %w", ErrWalletNotFound), CodeWalletNotFound, false},
		{"recipient not found", ErrRecipientWalletNotFound, CodeRecipientWalletNotFound, false},
		{"insufficient", ErrInsufficientBalance, CodeInsufficientBalance, false},
		{"self transfer", ErrSelfTransfer, CodeSelfTransfer, false},
		{"audit", auditFailed(errors.New("disk full")), CodeAuditWriteFailed, true},
		{"audit canceled", auditFailed(context.Canceled), CodeUnavailable, true},
		{"infra", unavailable(dbDown), CodeUnavailable, true},
		{"unknown", dbDown, CodeUnavailable, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Code(tc.err); got != tc.code {
				t.Fatalf("expected code %s got %s", tc.code, got)
			}
			if got := Retryable(tc.err); got != tc.retryable {
				t.Fatalf("expected retryable=%v got %v", tc.retryable, got)
			}
		})
	}
}

func TestUnavailableKeepsCause(t *testing.T) {
	dbDown := errors.New("connection refused")
	err := unavailable(dbDown)
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, dbDown) {
		t.Fatalf("expected both kind and cause in %v", err)
	}
	if got := unavailable(ErrInsufficientBalance); got != ErrInsufficientBalance {
		t.Fatalf("rejections must pass through unchanged, got %v", got)
	}
	if IsRejection(err) {
		t.Fatal("infrastructure failure reported as rejection")
	}
	if !IsRejection(ErrSelfTransfer) {
		t.Fatal("self transfer should be a rejection")
	}
}
