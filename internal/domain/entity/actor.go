// Package entity defines the core business entities for the domain layer.
package entity

import "github.com/google/uuid"

// Role identifies the privileges of a caller as supplied by the identity provider.
type Role string

const (
	// RoleRoot is the distinguished administrator role that owns the roll-up targets.
	RoleRoot  Role = "root"
	RoleOwner Role = "owner"
)

// Actor is the caller identity trusted by the ledger for authorization.
type Actor struct {
	OwnerID     uuid.UUID
	Role        Role
	DisplayName string
}

// IsRoot reports whether the actor holds the root role.
func (a Actor) IsRoot() bool {
	return a.Role == RoleRoot
}

// CanActFor reports whether the actor may operate on the given owner's data.
func (a Actor) CanActFor(ownerID uuid.UUID) bool {
	return a.IsRoot() || a.OwnerID == ownerID
}
