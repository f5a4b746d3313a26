// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/target-ledger/backend/internal/domain/entity"
)

// TokenClaims represents the claims contained in a JWT token.
type TokenClaims struct {
	UserID      uuid.UUID
	Role        entity.Role
	DisplayName string
	ExpiresAt   time.Time
}

// TokenService validates identity tokens issued by the identity provider.
type TokenService interface {
	// ValidateAccessToken validates an access token and returns its claims.
	ValidateAccessToken(ctx context.Context, token string) (*TokenClaims, error)
}
