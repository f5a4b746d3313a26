package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("second obtain is refused until release", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		locker := NewRedisLocker(rdb, 0)

		first, err := locker.Obtain(ctx, "ledger:test", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := locker.Obtain(ctx, "ledger:test", time.Minute); !errors.Is(err, adapter.ErrLockNotObtained) {
			t.Errorf("expected ErrLockNotObtained, got %v", err)
		}

		if err := first.Release(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := locker.Obtain(ctx, "ledger:test", time.Minute)
		if err != nil {
			t.Fatalf("expected lock after release, got %v", err)
		}
		_ = second.Release(ctx)
	})

	t.Run("keys are independent", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		locker := NewRedisLocker(rdb, 0)

		if _, err := locker.Obtain(ctx, "ledger:a", time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := locker.Obtain(ctx, "ledger:b", time.Minute); err != nil {
			t.Errorf("expected independent key to be free, got %v", err)
		}
	})

	t.Run("expired lock is free and releasing it is not an error", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		locker := NewRedisLocker(rdb, 0)

		first, err := locker.Obtain(ctx, "ledger:ttl", time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		mr.FastForward(2 * time.Second)

		if _, err := locker.Obtain(ctx, "ledger:ttl", time.Second); err != nil {
			t.Errorf("expected expired lock to be free, got %v", err)
		}
		if err := first.Release(ctx); err != nil {
			t.Errorf("expected nil releasing an expired lock, got %v", err)
		}
	})

	t.Run("retrying locker gives up", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		locker := NewRedisLocker(rdb, 10*time.Millisecond)

		if _, err := locker.Obtain(ctx, "ledger:retry", time.Minute); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		start := time.Now()
		_, err := locker.Obtain(ctx, "ledger:retry", 50*time.Millisecond)
		if !errors.Is(err, adapter.ErrLockNotObtained) {
			t.Errorf("expected ErrLockNotObtained, got %v", err)
		}
		if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
			t.Errorf("expected retries before giving up, returned after %s", elapsed)
		}
	})

	t.Run("unreachable server is a plain error", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		locker := NewRedisLocker(rdb, 0)
		mr.Close()

		_, err := locker.Obtain(ctx, "ledger:down", time.Second)
		if err == nil || errors.Is(err, adapter.ErrLockNotObtained) {
			t.Errorf("expected connection error, got %v", err)
		}
	})
}

func TestRedisNotifier_Notify(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, rdb := newTestRedis(t)

	sub := rdb.Subscribe(ctx, "ledger.test")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	target := &entity.Target{
		ID:          7,
		OwnerID:     uuid.New(),
		PeriodStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	event := entity.NewChangeEvent(entity.ChangeActionFundShared, target)

	if err := NewRedisNotifier(rdb, "ledger.test").Notify(ctx, event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var got entity.ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		if got.ID != event.ID || got.Action != entity.ChangeActionFundShared || got.TargetID != 7 {
			t.Errorf("expected event %s fund_shared on target 7, got %+v", event.ID, got)
		}
		if got.OwnerID != target.OwnerID {
			t.Errorf("expected owner %s, got %s", target.OwnerID, got.OwnerID)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestRedisNotifier_DefaultChannel(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)

	if err := NewRedisNotifier(rdb, "").Notify(ctx, entity.NewChangeEvent(entity.ChangeActionCreated, nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mr.Close()
	if err := NewRedisNotifier(rdb, "").Notify(ctx, entity.NewChangeEvent(entity.ChangeActionCreated, nil)); err == nil {
		t.Error("expected publish error once redis is gone")
	}
}

func TestLogNotifier_Notify(t *testing.T) {
	if err := NewLogNotifier().Notify(context.Background(), entity.NewChangeEvent(entity.ChangeActionDeleted, nil)); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}
