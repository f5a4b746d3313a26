// Package persistencetest opens isolated in-memory ledger databases for tests.
package persistencetest

import (
	"context"
	"database/sql"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/target-ledger/backend/internal/application/adapter"
	"github.com/target-ledger/backend/internal/integration/persistence"
	"github.com/target-ledger/backend/internal/integration/persistence/model"
)

// Open returns a migrated ledger database private to the test. The database
// lives as long as its single connection and is closed on cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dbSQL, err := sql.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	dbSQL.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = dbSQL.Close() })

	db, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if _, err := persistence.MigrateLedger(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate ledger schema: %v", err)
	}

	return db
}

// Ledger bundles the repositories of one test database.
type Ledger struct {
	DB         *gorm.DB
	Targets    adapter.TargetRepository
	Progress   adapter.ProgressRepository
	Transfers  adapter.TransferRepository
	Aggregates adapter.AggregateRepository
	Audit      adapter.AuditRecorder
}

// NewLedger opens a test database and builds its repositories.
func NewLedger(t testing.TB) *Ledger {
	t.Helper()
	db := Open(t)
	return &Ledger{
		DB:         db,
		Targets:    persistence.NewTargetRepository(db),
		Progress:   persistence.NewProgressRepository(db),
		Transfers:  persistence.NewTransferRepository(db),
		Aggregates: persistence.NewAggregateRepository(db),
		Audit:      persistence.NewAuditRepository(db),
	}
}

// AuditActions returns the recorded audit actions in insertion order.
func (l *Ledger) AuditActions(t testing.TB) []string {
	t.Helper()
	var actions []string
	if err := l.DB.Model(&model.AuditRecordModel{}).Order("id ASC").Pluck("action", &actions).Error; err != nil {
		t.Fatalf("failed to read audit records: %v", err)
	}
	return actions
}
