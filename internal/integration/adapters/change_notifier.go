// Package adapters implements adapter interfaces from the application layer.
package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
)

// DefaultNotifyChannel is the Redis channel ledger change events are published on.
const DefaultNotifyChannel = "ledger.changes"

// redisNotifier implements the adapter.ChangeNotifier interface with Redis PUBLISH.
type redisNotifier struct {
	rdb     *redis.Client
	channel string
}

// NewRedisNotifier creates a notifier publishing JSON events on channel.
func NewRedisNotifier(rdb *redis.Client, channel string) adapter.ChangeNotifier {
	if channel == "" {
		channel = DefaultNotifyChannel
	}
	return &redisNotifier{
		rdb:     rdb,
		channel: channel,
	}
}

// Notify publishes the event.
func (n *redisNotifier) Notify(ctx context.Context, event entity.ChangeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	if err := n.rdb.Publish(ctx, n.channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}

// logNotifier implements the adapter.ChangeNotifier interface by logging events.
type logNotifier struct{}

// NewLogNotifier creates a notifier that only logs events. Used when Redis is not configured.
func NewLogNotifier() adapter.ChangeNotifier {
	return logNotifier{}
}

// Notify logs the event.
func (logNotifier) Notify(ctx context.Context, event entity.ChangeEvent) error {
	slog.InfoContext(ctx, "Ledger changed",
		"event_id", event.ID,
		"action", event.Action,
		"target_id", event.TargetID,
		"owner_id", event.OwnerID,
		"period_start", event.PeriodStart,
	)
	return nil
}
