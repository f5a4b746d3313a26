// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/target-ledger/backend/internal/domain/entity"
)

// ChangeNotifier broadcasts "something changed" events. Delivery is best-effort.
type ChangeNotifier interface {
	Notify(ctx context.Context, event entity.ChangeEvent) error
}

// AuditRecorder stores a best-effort record of each mutation.
type AuditRecorder interface {
	Record(ctx context.Context, record *entity.AuditRecord) error
}

// ErrLockNotObtained is returned by Locker.Obtain when the key is held elsewhere.
var ErrLockNotObtained = errors.New("lock not obtained")

// Lock is a held distributed lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker obtains short-lived distributed locks.
type Locker interface {
	// Obtain tries to take the lock for key. Returns ErrLockNotObtained when held elsewhere.
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}
