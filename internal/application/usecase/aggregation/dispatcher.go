// Package aggregation derives target aggregates and the per-period roll-up.
package aggregation

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/domain/entity"
	"github.com/target-ledger/backend/internal/infra/metrics"
)

// DefaultSideEffectTimeout bounds the post-commit work of one mutation.
const DefaultSideEffectTimeout = 30 * time.Second

// Effect describes the post-commit work of one committed mutation.
type Effect struct {
	Actor   entity.Actor
	Action  entity.ChangeAction
	Subject *entity.Target // target the change event is about

	// Recompute lists targets to recompute. The roll-up of every non-root
	// target in the list is refreshed as well.
	Recompute []*entity.Target

	// Periods lists additional roll-up periods to refresh.
	Periods []time.Time

	EntityType string
	EntityID   uint
	Payload    any
}

// Dispatcher runs recompute, change notification and audit after a mutation
// has committed. Failures are logged and counted, never returned.
type Dispatcher struct {
	engine   *Engine
	notifier adapter.ChangeNotifier
	auditor  adapter.AuditRecorder
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher creates a new side-effect dispatcher. Nil notifier or
// auditor disables that side effect.
func NewDispatcher(engine *Engine, notifier adapter.ChangeNotifier, auditor adapter.AuditRecorder, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultSideEffectTimeout
	}
	return &Dispatcher{
		engine:   engine,
		notifier: notifier,
		auditor:  auditor,
		timeout:  timeout,
	}
}

// Dispatch schedules the effect in the background and returns immediately.
func (d *Dispatcher) Dispatch(effect Effect) {
	metrics.RecordMutation(string(effect.Action))

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run(effect)
	}()
}

// Wait blocks until every dispatched effect has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(effect Effect) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordSideEffectFailure("panic")
			slog.Error("Side effect panicked", "action", effect.Action, "panic", r)
		}
	}()

	d.recompute(ctx, effect)
	d.notify(ctx, effect)
	d.audit(ctx, effect)
}

func (d *Dispatcher) recompute(ctx context.Context, effect Effect) {
	periods := make(map[string]time.Time)

	for _, target := range effect.Recompute {
		if target == nil {
			continue
		}
		agg, err := d.engine.Recompute(ctx, target.ID)
		if err != nil {
			d.fail("recompute", effect, err, "target_id", target.ID)
		} else {
			slog.DebugContext(ctx, "Target recomputed",
				"action", effect.Action,
				"target_id", target.ID,
				"net_amount", agg.NetAmount.String(),
				"percentage", agg.ProgressPercentage.String(),
			)
		}
		if !d.engine.IsRootOwner(target.OwnerID) {
			periods[entity.PeriodKey(target.PeriodStart)] = target.PeriodStart
		}
	}
	for _, period := range effect.Periods {
		periods[entity.PeriodKey(period)] = period
	}

	for key, period := range periods {
		if _, err := d.engine.RecomputeRollup(ctx, period); err != nil {
			d.fail("recompute", effect, err, "period_start", key)
		}
	}
}

func (d *Dispatcher) notify(ctx context.Context, effect Effect) {
	if d.notifier == nil {
		return
	}
	if err := d.notifier.Notify(ctx, entity.NewChangeEvent(effect.Action, effect.Subject)); err != nil {
		d.fail("notify", effect, err)
	}
}

func (d *Dispatcher) audit(ctx context.Context, effect Effect) {
	if d.auditor == nil {
		return
	}

	var payload []byte
	if effect.Payload != nil {
		var err error
		payload, err = json.Marshal(effect.Payload)
		if err != nil {
			d.fail("audit", effect, err)
			return
		}
	}

	record := &entity.AuditRecord{
		ActorID:    effect.Actor.OwnerID,
		ActorRole:  effect.Actor.Role,
		Action:     effect.Action,
		EntityType: effect.EntityType,
		EntityID:   effect.EntityID,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}
	if err := d.auditor.Record(ctx, record); err != nil {
		d.fail("audit", effect, err)
	}
}

func (d *Dispatcher) fail(kind string, effect Effect, err error, attrs ...any) {
	metrics.RecordSideEffectFailure(kind)
	args := append([]any{"kind", kind, "action", effect.Action, "error", err}, attrs...)
	slog.Warn("Side effect failed", args...)
}
