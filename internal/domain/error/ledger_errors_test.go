package error

import (
	"errors"
	"fmt"
	"testing"
)

func TestLedgerErrorCodeCategory(t *testing.T) {
	tests := []struct {
		code     LedgerErrorCode
		expected ErrorCategory
	}{
		{ErrCodeInvalidAmount, CategoryValidation},
		{ErrCodeMissingFields, CategoryValidation},
		{ErrCodeForbidden, CategoryForbidden},
		{ErrCodeTargetNotFound, CategoryNotFound},
		{ErrCodeTransferNotFound, CategoryNotFound},
		{ErrCodeDuplicateActiveTarget, CategoryConflict},
		{ErrCodeInsufficientFunds, CategoryConflict},
		{ErrCodeReconciliationRunning, CategoryConflict},
		{ErrCodeStoreUnavailable, CategoryTransient},
		{LedgerErrorCode("LED-9"), CategoryInternal},
		{LedgerErrorCode("LED-990001"), CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Category(); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestLedgerError(t *testing.T) {
	t.Run("message includes wrapped error", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := NewLedgerError(ErrCodeStoreUnavailable, "ledger store unavailable", cause)

		if err.Error() != "ledger store unavailable: connection reset" {
			t.Errorf("unexpected message %q", err.Error())
		}
		if !errors.Is(err, cause) {
			t.Error("expected errors.Is to reach the cause")
		}
		if !err.Retryable() {
			t.Error("expected transient error to be retryable")
		}
	})

	t.Run("conflicts are not retryable", func(t *testing.T) {
		err := NewLedgerError(ErrCodeSelfTransfer, ErrSelfTransfer.Error(), nil)
		if err.Retryable() {
			t.Error("expected conflict not to be retryable")
		}
		if CategoryOf(err) != CategoryConflict {
			t.Errorf("expected conflict category, got %s", CategoryOf(err))
		}
	})

	t.Run("uncoded errors are internal", func(t *testing.T) {
		if CategoryOf(errors.New("boom")) != CategoryInternal {
			t.Error("expected internal category")
		}
	})
}

func TestClassify(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		if Classify(nil) != nil {
			t.Error("expected nil")
		}
	})

	t.Run("bare sentinel", func(t *testing.T) {
		err := Classify(ErrTargetNotFound)

		var ledgerErr *LedgerError
		if !errors.As(err, &ledgerErr) {
			t.Fatalf("expected LedgerError, got %T", err)
		}
		if ledgerErr.Code != ErrCodeTargetNotFound {
			t.Errorf("expected code %s, got %s", ErrCodeTargetNotFound, ledgerErr.Code)
		}
		if err.Error() != "target not found" {
			t.Errorf("unexpected message %q", err.Error())
		}
		if !errors.Is(err, ErrTargetNotFound) {
			t.Error("expected sentinel to stay reachable")
		}
	})

	t.Run("wrapped sentinel keeps detail", func(t *testing.T) {
		wrapped := fmt.Errorf("requested 10.00, available 5.00: %w", ErrInsufficientFunds)
		err := Classify(wrapped)

		var ledgerErr *LedgerError
		if !errors.As(err, &ledgerErr) {
			t.Fatalf("expected LedgerError, got %T", err)
		}
		if ledgerErr.Code != ErrCodeInsufficientFunds {
			t.Errorf("expected code %s, got %s", ErrCodeInsufficientFunds, ledgerErr.Code)
		}
		if ledgerErr.Message != "insufficient funds" {
			t.Errorf("unexpected message %q", ledgerErr.Message)
		}
		if !errors.Is(err, ErrInsufficientFunds) {
			t.Error("expected sentinel to stay reachable")
		}
	})

	t.Run("coded error passes through", func(t *testing.T) {
		coded := NewLedgerError(ErrCodeStoreUnavailable, "ledger store unavailable", nil)
		if Classify(coded) != error(coded) {
			t.Error("expected the same error back")
		}
	})

	t.Run("unknown error passes through", func(t *testing.T) {
		unknown := errors.New("disk on fire")
		if Classify(unknown) != unknown {
			t.Error("expected the same error back")
		}
	})
}

func TestNewForbiddenError(t *testing.T) {
	err := NewForbiddenError("only root may reverse transfers")

	if err.Code != ErrCodeForbidden {
		t.Errorf("expected code %s, got %s", ErrCodeForbidden, err.Code)
	}
	if !errors.Is(err, ErrForbidden) {
		t.Error("expected error to wrap ErrForbidden")
	}
	if CategoryOf(err) != CategoryForbidden {
		t.Errorf("expected category %s, got %s", CategoryForbidden, CategoryOf(err))
	}
	if err.Retryable() {
		t.Error("expected forbidden error not to be retryable")
	}
}
