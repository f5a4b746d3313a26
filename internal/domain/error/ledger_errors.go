// Package error defines domain-specific errors for the target ledger.
package error

import (
	"errors"
	"strings"
)

// Ledger domain errors.
var (
	// ErrTargetNotFound is returned when a target is not found in the system.
	ErrTargetNotFound = errors.New("target not found")

	// ErrDuplicateActiveTarget is returned when the owner already has an active target for the period.
	ErrDuplicateActiveTarget = errors.New("owner already has an active target for this period")

	// ErrTargetNotActive is returned when an operation requires an active target.
	ErrTargetNotActive = errors.New("target is not active")

	// ErrProgressNotFound is returned when a progress entry is not found.
	ErrProgressNotFound = errors.New("progress entry not found")

	// ErrAlreadyInState is returned when a decision matches the entry's current status.
	ErrAlreadyInState = errors.New("progress entry already in requested state")

	// ErrTransferNotFound is returned when a fund transfer is not found.
	ErrTransferNotFound = errors.New("fund transfer not found")

	// ErrSelfTransfer is returned when sender and recipient are the same owner.
	ErrSelfTransfer = errors.New("cannot transfer to self")

	// ErrInsufficientFunds is returned when the transfer exceeds the sender's available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoActiveTarget is returned when the sender has no active target.
	ErrNoActiveTarget = errors.New("no active target")

	// ErrRecipientNoActiveTarget is returned when the recipient has no active target.
	ErrRecipientNoActiveTarget = errors.New("recipient has no active target")

	// ErrNotReversible is returned when reversing a transfer that is not active.
	ErrNotReversible = errors.New("transfer is not reversible")

	// ErrForbidden is returned when the actor lacks the role for an operation.
	ErrForbidden = errors.New("operation not permitted")

	// ErrInvalidAmount is returned for negative or zero amounts where positive values are required.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidCategory is returned for unknown target categories.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidStatus is returned for unknown statuses or decisions.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidPeriod is returned when the period bounds are inconsistent.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrStoreUnavailable is returned when the store fails transiently.
	ErrStoreUnavailable = errors.New("ledger store unavailable")

	// ErrReconciliationRunning is returned when another reconciliation holds the lock.
	ErrReconciliationRunning = errors.New("reconciliation already running")
)

// LedgerErrorCode defines error codes for ledger errors.
// Format: LED-XXYYYY where XX is category and YYYY is specific error.
type LedgerErrorCode string

const (
	// Validation errors (01XXXX)
	ErrCodeInvalidAmount   LedgerErrorCode = "LED-010001"
	ErrCodeInvalidCategory LedgerErrorCode = "LED-010002"
	ErrCodeInvalidStatus   LedgerErrorCode = "LED-010003"
	ErrCodeInvalidPeriod   LedgerErrorCode = "LED-010004"
	ErrCodeMissingFields   LedgerErrorCode = "LED-010005"

	// Authorization errors (02XXXX)
	ErrCodeForbidden LedgerErrorCode = "LED-020001"

	// Not found errors (03XXXX)
	ErrCodeTargetNotFound   LedgerErrorCode = "LED-030001"
	ErrCodeProgressNotFound LedgerErrorCode = "LED-030002"
	ErrCodeTransferNotFound LedgerErrorCode = "LED-030003"

	// Conflict errors (04XXXX)
	ErrCodeDuplicateActiveTarget   LedgerErrorCode = "LED-040001"
	ErrCodeAlreadyInState          LedgerErrorCode = "LED-040002"
	ErrCodeInsufficientFunds       LedgerErrorCode = "LED-040003"
	ErrCodeSelfTransfer            LedgerErrorCode = "LED-040004"
	ErrCodeNotReversible           LedgerErrorCode = "LED-040005"
	ErrCodeNoActiveTarget          LedgerErrorCode = "LED-040006"
	ErrCodeRecipientNoActiveTarget LedgerErrorCode = "LED-040007"
	ErrCodeTargetNotActive         LedgerErrorCode = "LED-040008"
	ErrCodeReconciliationRunning   LedgerErrorCode = "LED-040009"

	// Transient errors (05XXXX)
	ErrCodeStoreUnavailable LedgerErrorCode = "LED-050001"
)

// ErrorCategory groups error codes by how callers should react.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryForbidden  ErrorCategory = "forbidden"
	CategoryNotFound   ErrorCategory = "not_found"
	CategoryConflict   ErrorCategory = "conflict"
	CategoryTransient  ErrorCategory = "transient"
	CategoryInternal   ErrorCategory = "internal"
)

// Category returns the category encoded in the code's XX segment.
func (c LedgerErrorCode) Category() ErrorCategory {
	s := strings.TrimPrefix(string(c), "LED-")
	if len(s) < 2 {
		return CategoryInternal
	}
	switch s[:2] {
	case "01":
		return CategoryValidation
	case "02":
		return CategoryForbidden
	case "03":
		return CategoryNotFound
	case "04":
		return CategoryConflict
	case "05":
		return CategoryTransient
	}
	return CategoryInternal
}

// LedgerError represents a ledger error with code and message.
type LedgerError struct {
	Code    LedgerErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LedgerError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *LedgerError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the operation may be safely retried.
func (e *LedgerError) Retryable() bool {
	return e.Code.Category() == CategoryTransient
}

// NewLedgerError creates a new LedgerError with the given code and message.
func NewLedgerError(code LedgerErrorCode, message string, err error) *LedgerError {
	return &LedgerError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewForbiddenError creates a LedgerError for an actor lacking the required role or ownership.
func NewForbiddenError(message string) *LedgerError {
	return NewLedgerError(ErrCodeForbidden, message, ErrForbidden)
}

// CategoryOf returns the category of err, or CategoryInternal for uncoded errors.
func CategoryOf(err error) ErrorCategory {
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Code.Category()
	}
	return CategoryInternal
}

// sentinelCodes maps repository sentinels to their coded form.
var sentinelCodes = []struct {
	err  error
	code LedgerErrorCode
}{
	{ErrTargetNotFound, ErrCodeTargetNotFound},
	{ErrProgressNotFound, ErrCodeProgressNotFound},
	{ErrTransferNotFound, ErrCodeTransferNotFound},
	{ErrDuplicateActiveTarget, ErrCodeDuplicateActiveTarget},
	{ErrTargetNotActive, ErrCodeTargetNotActive},
	{ErrAlreadyInState, ErrCodeAlreadyInState},
	{ErrSelfTransfer, ErrCodeSelfTransfer},
	{ErrInsufficientFunds, ErrCodeInsufficientFunds},
	{ErrNoActiveTarget, ErrCodeNoActiveTarget},
	{ErrRecipientNoActiveTarget, ErrCodeRecipientNoActiveTarget},
	{ErrNotReversible, ErrCodeNotReversible},
	{ErrForbidden, ErrCodeForbidden},
	{ErrInvalidAmount, ErrCodeInvalidAmount},
	{ErrInvalidCategory, ErrCodeInvalidCategory},
	{ErrInvalidStatus, ErrCodeInvalidStatus},
	{ErrInvalidPeriod, ErrCodeInvalidPeriod},
	{ErrStoreUnavailable, ErrCodeStoreUnavailable},
	{ErrReconciliationRunning, ErrCodeReconciliationRunning},
}

// Classify converts a known sentinel (possibly wrapped with detail) into a
// LedgerError. Coded errors and unknown errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var ledgerErr *LedgerError
	if errors.As(err, &ledgerErr) {
		return err
	}
	for _, s := range sentinelCodes {
		if err == s.err {
			return NewLedgerError(s.code, s.err.Error(), nil)
		}
		if errors.Is(err, s.err) {
			return NewLedgerError(s.code, s.err.Error(), err)
		}
	}
	return err
}
