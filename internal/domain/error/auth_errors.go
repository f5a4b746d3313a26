// Package error defines domain-specific errors for the target ledger.
package error

import "errors"

// Authentication errors raised while resolving the caller identity.
var (
	// ErrInvalidToken is returned when a token is invalid or malformed.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUnknownRole is returned when the token carries a role the ledger does not know.
	ErrUnknownRole = errors.New("unknown role")
)

// AuthErrorCode defines error codes for authentication errors.
// Format: AUTH-XXYYYY where XX is category and YYYY is specific error.
type AuthErrorCode string

const (
	// Token errors (03XXXX)
	ErrCodeInvalidToken AuthErrorCode = "AUTH-030001"
	ErrCodeMissingToken AuthErrorCode = "AUTH-030003"
	ErrCodeUnknownRole  AuthErrorCode = "AUTH-030004"

	// Rate limiting (02XXXX)
	ErrCodeRateLimited AuthErrorCode = "AUTH-020003"
)
