// Package adaptertest provides in-memory adapter implementations for tests.
package adaptertest

import (
	"context"
	"sync"
	"time"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
)

// RecordingNotifier keeps every notified event. Err, when set, is returned
// from Notify after recording.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []entity.ChangeEvent
	Err    error
}

// Notify records the event.
func (n *RecordingNotifier) Notify(_ context.Context, event entity.ChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.Err
}

// Events returns a copy of the recorded events.
func (n *RecordingNotifier) Events() []entity.ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]entity.ChangeEvent(nil), n.events...)
}

// Actions returns the recorded event actions in order.
func (n *RecordingNotifier) Actions() []entity.ChangeAction {
	events := n.Events()
	actions := make([]entity.ChangeAction, len(events))
	for i, ev := range events {
		actions[i] = ev.Action
	}
	return actions
}

// MemoryLocker is a process-local Locker.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]bool

	// ObtainErr, when set, is returned by every Obtain call.
	ObtainErr error
}

// NewMemoryLocker creates an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]bool)}
}

// Obtain takes key or returns adapter.ErrLockNotObtained when it is held.
func (l *MemoryLocker) Obtain(_ context.Context, key string, _ time.Duration) (adapter.Lock, error) {
	if l.ObtainErr != nil {
		return nil, l.ObtainErr
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, adapter.ErrLockNotObtained
	}
	l.held[key] = true
	return &memoryLock{locker: l, key: key}, nil
}

// Held reports whether key is currently locked.
func (l *MemoryLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

type memoryLock struct {
	locker *MemoryLocker
	key    string
}

func (m *memoryLock) Release(context.Context) error {
	m.locker.mu.Lock()
	defer m.locker.mu.Unlock()
	delete(m.locker.held, m.key)
	return nil
}
