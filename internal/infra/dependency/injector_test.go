package dependency

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/target-ledger/backend/config"
	"github.com/target-ledger/backend/internal/domain/entity"
	domainerror "github.com/target-ledger/backend/internal/domain/error"
	"github.com/target-ledger/backend/internal/integration/adapters"
	"github.com/target-ledger/backend/internal/integration/entrypoint/dto"
	"github.com/target-ledger/backend/internal/integration/persistence/persistencetest"
)

const testSecret = "injector-test-secret"

type apiClient struct {
	t       *testing.T
	engine  *gin.Engine
	tokens  map[string]string
	owners  map[string]uuid.UUID
	root    uuid.UUID
	settled func()
}

func newAPIClient(t *testing.T, rdb *redis.Client) *apiClient {
	t.Helper()

	root := uuid.New()
	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		JWT:    config.JWTConfig{Secret: testSecret},
		Ledger: config.LedgerConfig{
			RootOwnerID:       root,
			NotifyChannel:     "ledger.test",
			SideEffectTimeout: 5 * time.Second,
			TransferLockTTL:   time.Second,
			ReconcileInterval: time.Hour,
			ReconcileTimeout:  time.Minute,
		},
	}
	injector := NewInjector(cfg, persistencetest.Open(t), rdb)
	t.Cleanup(injector.Dispatcher.Wait)

	c := &apiClient{
		t:       t,
		engine:  injector.Router.Setup(cfg.Server.Environment),
		tokens:  map[string]string{},
		owners:  map[string]uuid.UUID{"root": root},
		root:    root,
		settled: injector.Dispatcher.Wait,
	}
	c.login("root", root, entity.RoleRoot)
	c.login("alice", uuid.New(), entity.RoleOwner)
	c.login("bob", uuid.New(), entity.RoleOwner)
	return c
}

func (c *apiClient) login(name string, id uuid.UUID, role entity.Role) {
	token, err := adapters.SignToken(testSecret, id, role, name, time.Hour)
	if err != nil {
		c.t.Fatalf("failed to sign token: %v", err)
	}
	c.tokens[name] = token
	c.owners[name] = id
}

func (c *apiClient) do(as, method, path string, body any, out any) int {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token, ok := c.tokens[as]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			c.t.Fatalf("failed to decode %s %s response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code
}

func expectStatus(t *testing.T, step string, expected, got int) {
	t.Helper()
	if got != expected {
		t.Fatalf("%s: expected status %d, got %d", step, expected, got)
	}
}

func expectAmount(t *testing.T, name string, expected int64, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(expected)) {
		t.Errorf("expected %s %d, got %s", name, expected, got)
	}
}

func TestInjector_LedgerFlow(t *testing.T) {
	c := newAPIClient(t, nil)

	var a, b dto.TargetResponse
	expectStatus(t, "create A", http.StatusCreated, c.do("alice", http.MethodPost, "/api/v1/targets", map[string]any{
		"target_amount": "1000",
		"category":      "employee",
		"period_start":  "2024-01-01",
	}, &a))
	expectStatus(t, "create B", http.StatusCreated, c.do("bob", http.MethodPost, "/api/v1/targets", map[string]any{
		"target_amount": "500",
		"category":      "student",
		"period_start":  "2024-01-01",
	}, &b))
	if a.Aggregate == nil {
		t.Fatal("expected aggregate in create response")
	}
	expectAmount(t, "A remaining", 1000, a.Aggregate.RemainingAmount)

	var entry dto.ProgressEntryResponse
	expectStatus(t, "submit", http.StatusCreated, c.do("alice", http.MethodPost, fmt.Sprintf("/api/v1/targets/%d/progress", a.ID), map[string]any{
		"amount": "300",
	}, &entry))
	if entry.Status != string(entity.ProgressStatusPending) {
		t.Errorf("expected pending entry, got %s", entry.Status)
	}

	var forbidden dto.ErrorResponse
	expectStatus(t, "owner decision", http.StatusForbidden, c.do("alice", http.MethodPost, fmt.Sprintf("/api/v1/progress/%d/decision", entry.ID), map[string]any{
		"decision": "approved",
	}, &forbidden))

	var decision dto.DecisionResponse
	expectStatus(t, "approve", http.StatusOK, c.do("root", http.MethodPost, fmt.Sprintf("/api/v1/progress/%d/decision", entry.ID), map[string]any{
		"decision": "approved",
	}, &decision))
	if !decision.Recomputed || decision.PreviousStatus != string(entity.ProgressStatusPending) {
		t.Errorf("expected recomputed decision from pending, got %+v", decision)
	}

	var got dto.TargetResponse
	expectStatus(t, "get A", http.StatusOK, c.do("alice", http.MethodGet, fmt.Sprintf("/api/v1/targets/%d", a.ID), nil, &got))
	expectAmount(t, "A total progress", 300, got.Aggregate.TotalProgress)
	expectAmount(t, "A percentage", 30, got.Aggregate.ProgressPercentage)

	var tr dto.TransferResponse
	expectStatus(t, "transfer", http.StatusCreated, c.do("alice", http.MethodPost, "/api/v1/transfers", map[string]any{
		"to_owner_id": c.owners["bob"].String(),
		"amount":      "100",
	}, &tr))
	if tr.FromTargetID != a.ID || tr.ToTargetID != b.ID {
		t.Errorf("expected transfer %d -> %d, got %d -> %d", a.ID, b.ID, tr.FromTargetID, tr.ToTargetID)
	}

	var insufficient dto.ErrorResponse
	expectStatus(t, "overdraw", http.StatusConflict, c.do("alice", http.MethodPost, "/api/v1/transfers", map[string]any{
		"to_owner_id": c.owners["bob"].String(),
		"amount":      "500",
	}, &insufficient))
	if insufficient.Code != string(domainerror.ErrCodeInsufficientFunds) || insufficient.Details == "" {
		t.Errorf("expected insufficient funds with details, got %+v", insufficient)
	}

	expectStatus(t, "get B", http.StatusOK, c.do("bob", http.MethodGet, fmt.Sprintf("/api/v1/targets/%d", b.ID), nil, &got))
	expectAmount(t, "B shared in", 100, got.Aggregate.SharedIn)
	expectAmount(t, "B net", 100, got.Aggregate.NetAmount)

	var reversed dto.TransferResponse
	expectStatus(t, "reverse", http.StatusOK, c.do("root", http.MethodPost, fmt.Sprintf("/api/v1/transfers/%d/reverse", tr.ID), map[string]any{
		"reason": "mistake",
	}, &reversed))
	if reversed.Status != string(entity.TransferStatusReversed) || reversed.ReversalReason != "mistake" {
		t.Errorf("expected reversed transfer, got %+v", reversed)
	}
	c.settled()

	var rollup dto.RollupResponse
	expectStatus(t, "rollup", http.StatusOK, c.do("root", http.MethodGet, "/api/v1/rollups/2024-01-01", nil, &rollup))
	expectAmount(t, "roll-up target", 1500, rollup.Aggregate.TargetAmount)
	expectAmount(t, "roll-up net", 300, rollup.Aggregate.NetAmount)
	if rollup.Constituents != 2 {
		t.Errorf("expected 2 constituents, got %d", rollup.Constituents)
	}

	var report dto.RecalculateResponse
	expectStatus(t, "recalculate", http.StatusOK, c.do("root", http.MethodPost, "/api/v1/reconciliation/recalculate", nil, &report))
	if len(report.Repairs) != 0 {
		t.Errorf("expected no repairs on consistent data, got %+v", report.Repairs)
	}
	expectStatus(t, "owner recalculate", http.StatusForbidden, c.do("alice", http.MethodPost, "/api/v1/reconciliation/recalculate", nil, nil))

	var diagnostics dto.DiagnosticsResponse
	expectStatus(t, "diagnostics", http.StatusOK, c.do("root", http.MethodGet, fmt.Sprintf("/api/v1/targets/%d/diagnostics", a.ID), nil, &diagnostics))
	if diagnostics.Drift || len(diagnostics.TransfersOut) != 1 {
		t.Errorf("expected no drift and one outgoing transfer, got drift=%v out=%d", diagnostics.Drift, len(diagnostics.TransfersOut))
	}

	var extended dto.ExtendTargetResponse
	expectStatus(t, "extend", http.StatusCreated, c.do("alice", http.MethodPost, fmt.Sprintf("/api/v1/targets/%d/extend", a.ID), map[string]any{
		"additional_amount": "500",
	}, &extended))
	if extended.PreviousTargetID != a.ID {
		t.Errorf("expected previous target %d, got %d", a.ID, extended.PreviousTargetID)
	}
	expectAmount(t, "extended amount", 1500, extended.Target.TargetAmount)

	var list dto.TargetListResponse
	expectStatus(t, "list", http.StatusOK, c.do("alice", http.MethodGet, "/api/v1/targets?status=active", nil, &list))
	if len(list.Targets) != 1 || list.Targets[0].ID != extended.Target.ID {
		t.Errorf("expected only the successor to be active, got %+v", list.Targets)
	}

	expectStatus(t, "owner delete", http.StatusForbidden, c.do("bob", http.MethodDelete, fmt.Sprintf("/api/v1/targets/%d", b.ID), nil, nil))
	expectStatus(t, "delete", http.StatusNoContent, c.do("root", http.MethodDelete, fmt.Sprintf("/api/v1/targets/%d", b.ID), nil, nil))
	expectStatus(t, "get deleted", http.StatusNotFound, c.do("root", http.MethodGet, fmt.Sprintf("/api/v1/targets/%d", b.ID), nil, nil))
}

func TestInjector_RequestValidation(t *testing.T) {
	c := newAPIClient(t, nil)

	cases := []struct {
		name     string
		as       string
		method   string
		path     string
		body     any
		expected int
	}{
		{"no token", "", http.MethodGet, "/api/v1/targets", nil, http.StatusUnauthorized},
		{"bad id", "alice", http.MethodGet, "/api/v1/targets/abc", nil, http.StatusBadRequest},
		{"bad period", "alice", http.MethodPost, "/api/v1/targets", map[string]any{"target_amount": "1", "category": "employee", "period_start": "01/01/2024"}, http.StatusBadRequest},
		{"unknown category", "alice", http.MethodPost, "/api/v1/targets", map[string]any{"target_amount": "1", "category": "sales", "period_start": "2024-01-01"}, http.StatusBadRequest},
		{"negative amount", "alice", http.MethodPost, "/api/v1/targets", map[string]any{"target_amount": "-1", "category": "employee", "period_start": "2024-01-01"}, http.StatusBadRequest},
		{"self transfer", "alice", http.MethodPost, "/api/v1/transfers", map[string]any{"to_owner_id": "__alice__", "amount": "1"}, http.StatusConflict},
		{"bad recipient", "alice", http.MethodPost, "/api/v1/transfers", map[string]any{"to_owner_id": "nope", "amount": "1"}, http.StatusBadRequest},
		{"missing rollup", "root", http.MethodGet, "/api/v1/rollups/2030-01-01", nil, http.StatusNotFound},
		{"bad rollup period", "root", http.MethodGet, "/api/v1/rollups/soon", nil, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := tc.body
			if m, ok := body.(map[string]any); ok && m["to_owner_id"] == "__alice__" {
				m["to_owner_id"] = c.owners["alice"].String()
			}
			var resp dto.ErrorResponse
			if code := c.do(tc.as, tc.method, tc.path, body, &resp); code != tc.expected {
				t.Errorf("expected status %d, got %d (%+v)", tc.expected, code, resp)
			}
		})
	}
}

func TestInjector_HealthAndMetrics(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	c := newAPIClient(t, rdb)

	var health map[string]string
	expectStatus(t, "health", http.StatusOK, c.do("", http.MethodGet, "/health", nil, &health))
	if health["database"] != "connected" || health["redis"] != "connected" {
		t.Errorf("expected database and redis connected, got %v", health)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("ledger_rollup_repairs_total")) {
		t.Errorf("expected ledger metrics to be exposed, got status %d", w.Code)
	}
}
