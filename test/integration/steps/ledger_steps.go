package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/target-ledger/backend/internal/domain/entity"
	"github.com/target-ledger/backend/internal/integration/adapters"
)

type testUser struct {
	id    uuid.UUID
	role  entity.Role
	token string
}

// registerLedgerSteps registers steps that seed and inspect ledger state.
func registerLedgerSteps(ctx *godog.ScenarioContext) {
	ctx.Step(`^the following users exist:$`, theFollowingUsersExist)
	ctx.Step(`^"([^"]*)" has an active "([^"]*)" target "([^"]*)" of (\d+) for period "([^"]*)"$`, userHasAnActiveTarget)
	ctx.Step(`^"([^"]*)" has approved progress of (\d+) on target "([^"]*)"$`, userHasApprovedProgress)
	ctx.Step(`^side effects have settled$`, sideEffectsHaveSettled)
	ctx.Step(`^a "([^"]*)" change event should be published for target "([^"]*)"$`, aChangeEventShouldBePublished)
	ctx.Step(`^the "([^"]*)" table should have (\d+) rows?$`, theTableShouldHaveRows)
}

func theFollowingUsersExist(ctx context.Context, table *godog.Table) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}

	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) < 2 {
			return ctx, fmt.Errorf("users table row %d needs name and role", i)
		}
		name := row.Cells[0].Value
		role := entity.Role(row.Cells[1].Value)

		id := uuid.New()
		if role == entity.RoleRoot {
			id = tc.rootID
		}
		token, err := adapters.SignToken(testJWTSecret, id, role, name, time.Hour)
		if err != nil {
			return ctx, fmt.Errorf("failed to sign token for %s: %w", name, err)
		}
		tc.users[name] = testUser{id: id, role: role, token: token}
	}
	return SetTestContext(ctx, tc), nil
}

// as sends a request as the named user without changing the current actor.
func (tc *TestContext) as(name, method, endpoint string, body map[string]any, expectedStatus int) error {
	previous := tc.actor
	tc.actor = name
	defer func() { tc.actor = previous }()

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode body: %w", err)
	}
	if err := tc.send(method, endpoint, bytes.NewReader(raw)); err != nil {
		return err
	}
	if tc.response.StatusCode != expectedStatus {
		return fmt.Errorf("%s %s as %s: expected status %d, got %d. Body: %s",
			method, endpoint, name, expectedStatus, tc.response.StatusCode, string(tc.responseBody))
	}
	return nil
}

func userHasAnActiveTarget(ctx context.Context, owner, category, name string, amount int, period string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}

	err := tc.as(owner, http.MethodPost, "/api/v1/targets", map[string]any{
		"target_amount": strconv.Itoa(amount),
		"category":      category,
		"period_start":  period,
	}, http.StatusCreated)
	if err != nil {
		return ctx, err
	}

	id, err := tc.field("id")
	if err != nil {
		return ctx, err
	}
	tc.saved[name] = fmt.Sprintf("%v", id)
	return SetTestContext(ctx, tc), nil
}

func userHasApprovedProgress(ctx context.Context, owner string, amount int, target string) (context.Context, error) {
	tc := GetTestContext(ctx)
	if tc == nil {
		return ctx, fmt.Errorf("test context not found")
	}

	err := tc.as(owner, http.MethodPost, "/api/v1/targets/{"+target+"}/progress", map[string]any{
		"amount": strconv.Itoa(amount),
	}, http.StatusCreated)
	if err != nil {
		return ctx, err
	}
	id, err := tc.field("id")
	if err != nil {
		return ctx, err
	}

	root := ""
	for name, u := range tc.users {
		if u.role == entity.RoleRoot {
			root = name
		}
	}
	if root == "" {
		return ctx, fmt.Errorf("no root user configured")
	}

	err = tc.as(root, http.MethodPost, fmt.Sprintf("/api/v1/progress/%v/decision", id), map[string]any{
		"decision": string(entity.ProgressStatusApproved),
	}, http.StatusOK)
	if err != nil {
		return ctx, err
	}
	tc.injector.Dispatcher.Wait()
	return SetTestContext(ctx, tc), nil
}

func sideEffectsHaveSettled(ctx context.Context) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}
	tc.injector.Dispatcher.Wait()
	return nil
}

func aChangeEventShouldBePublished(ctx context.Context, action, target string) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	id, err := strconv.ParseUint(tc.expand("{"+target+"}"), 10, 64)
	if err != nil {
		return fmt.Errorf("unknown target %q", target)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if tc.events.Has(entity.ChangeAction(action), uint(id)) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("no %s event for target %d, got %v", action, id, tc.events.Actions())
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func theTableShouldHaveRows(ctx context.Context, table string, expected int) error {
	tc := GetTestContext(ctx)
	if tc == nil {
		return fmt.Errorf("test context not found")
	}

	n, err := tc.db.Count(table)
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", table, err)
	}
	if n != int64(expected) {
		return fmt.Errorf("expected %d rows in %s, got %d", expected, table, n)
	}
	return nil
}

// eventCollector records change events published on the notify channel.
type eventCollector struct {
	sub    *redis.PubSub
	mu     sync.Mutex
	events []entity.ChangeEvent
}

func collectEvents(rdb *redis.Client, channel string) (*eventCollector, error) {
	sub := rdb.Subscribe(context.Background(), channel)
	if _, err := sub.Receive(context.Background()); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	c := &eventCollector{sub: sub}
	go func() {
		for msg := range sub.Channel() {
			var ev entity.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				continue
			}
			c.mu.Lock()
			c.events = append(c.events, ev)
			c.mu.Unlock()
		}
	}()
	return c, nil
}

func (c *eventCollector) Has(action entity.ChangeAction, targetID uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ev := range c.events {
		if ev.Action == action && ev.TargetID == targetID {
			return true
		}
	}
	return false
}

func (c *eventCollector) Actions() []entity.ChangeAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	actions := make([]entity.ChangeAction, 0, len(c.events))
	for _, ev := range c.events {
		actions = append(actions, ev.Action)
	}
	return actions
}

func (c *eventCollector) Close() {
	_ = c.sub.Close()
}
