// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChangeAction names what happened to the ledger.
type ChangeAction string

const (
	ChangeActionCreated           ChangeAction = "created"
	ChangeActionExtended          ChangeAction = "extended"
	ChangeActionUpdated           ChangeAction = "updated"
	ChangeActionDeleted           ChangeAction = "deleted"
	ChangeActionProgressSubmitted ChangeAction = "progress_submitted"
	ChangeActionProgressApproved  ChangeAction = "progress_approved"
	ChangeActionProgressRejected  ChangeAction = "progress_rejected"
	ChangeActionFundShared        ChangeAction = "fund_shared"
	ChangeActionFundReversed      ChangeAction = "fund_reversed"
	ChangeActionRecalculated      ChangeAction = "recalculated"
)

// ChangeEvent is broadcast after a successful mutation. Delivery is best-effort.
type ChangeEvent struct {
	ID          uuid.UUID    `json:"event_id"`
	Action      ChangeAction `json:"action"`
	TargetID    uint         `json:"target_id,omitempty"`
	OwnerID     uuid.UUID    `json:"owner_id"`
	PeriodStart string       `json:"period_start,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// NewChangeEvent creates a change event for the given target.
func NewChangeEvent(action ChangeAction, target *Target) ChangeEvent {
	ev := ChangeEvent{
		ID:         uuid.New(),
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
	if target != nil {
		ev.TargetID = target.ID
		ev.OwnerID = target.OwnerID
		ev.PeriodStart = PeriodKey(target.PeriodStart)
	}
	return ev
}

// AuditRecord is a best-effort trace of a mutation request.
type AuditRecord struct {
	ID         uint
	ActorID    uuid.UUID
	ActorRole  Role
	Action     ChangeAction
	EntityType string
	EntityID   uint
	Payload    []byte
	CreatedAt  time.Time
}
