package config

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("LEDGER_ROOT_OWNER_ID", "")
		cfg := Load()

		if cfg.Server.Port != 8080 {
			t.Errorf("expected port 8080, got %d", cfg.Server.Port)
		}
		if cfg.Ledger.NotifyChannel != "ledger.changes" {
			t.Errorf("expected default channel, got %s", cfg.Ledger.NotifyChannel)
		}
		if cfg.Ledger.RootOwnerID != uuid.Nil {
			t.Errorf("expected nil root owner for unparsable value, got %s", cfg.Ledger.RootOwnerID)
		}
		if cfg.Database.StatementTimeout != 10*time.Second {
			t.Errorf("expected 10s statement timeout, got %s", cfg.Database.StatementTimeout)
		}
	})

	t.Run("reads ledger overrides", func(t *testing.T) {
		root := uuid.New()
		t.Setenv("LEDGER_ROOT_OWNER_ID", root.String())
		t.Setenv("LEDGER_RECONCILE_ENABLED", "false")
		t.Setenv("LEDGER_RECONCILE_INTERVAL", "15m")
		t.Setenv("LEDGER_TRANSFER_LOCK_TTL", "3s")
		cfg := Load()

		if cfg.Ledger.RootOwnerID != root {
			t.Errorf("expected root owner %s, got %s", root, cfg.Ledger.RootOwnerID)
		}
		if cfg.Ledger.ReconcileEnabled {
			t.Error("expected reconciliation disabled")
		}
		if cfg.Ledger.ReconcileInterval != 15*time.Minute {
			t.Errorf("expected 15m interval, got %s", cfg.Ledger.ReconcileInterval)
		}
		if cfg.Ledger.TransferLockTTL != 3*time.Second {
			t.Errorf("expected 3s lock ttl, got %s", cfg.Ledger.TransferLockTTL)
		}
	})

	t.Run("ignores malformed numbers", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "not-a-port")
		t.Setenv("DB_STATEMENT_TIMEOUT", "soon")
		cfg := Load()

		if cfg.Server.Port != 8080 {
			t.Errorf("expected fallback port 8080, got %d", cfg.Server.Port)
		}
		if cfg.Database.StatementTimeout != 10*time.Second {
			t.Errorf("expected fallback timeout, got %s", cfg.Database.StatementTimeout)
		}
	})
}
