// Package mock provides in-process stand-ins for the ledger's infrastructure.
package mock

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/target-ledger/backend/internal/integration/persistence"
	"github.com/target-ledger/backend/internal/integration/persistence/model"
)

var once sync.Once
var db *Db

type Db struct {
	DbConn *gorm.DB
	models []any
}

// NewDb opens the shared in-memory ledger database and migrates it once.
func NewDb(name string) *Db {
	once.Do(func() {
		db = open(name)
	})
	return db
}

func open(name string) *Db {
	dbSQL, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		panic(err)
	}

	dbSQL.SetMaxOpenConns(1)

	dbConn, err := gorm.Open(sqlite.Dialector{Conn: dbSQL}, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect to database. err: " + err.Error())
	}

	if _, err := persistence.MigrateLedger(context.Background(), dbConn); err != nil {
		panic("failed to migrate ledger schema. err: " + err.Error())
	}

	newDbMock := &Db{
		DbConn: dbConn,
		models: model.LedgerModels(),
	}

	if err := newDbMock.checkTables(); err != nil {
		panic(err)
	}

	return newDbMock
}

// ClearDB deletes every ledger row and resets the id sequences so each
// scenario starts from target id 1.
func (d *Db) ClearDB() error {
	// Children first so the cascade constraint never fires.
	for i := len(d.models) - 1; i >= 0; i-- {
		m := d.models[i]
		err := d.DbConn.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error
		if err != nil {
			return err
		}

		stmt := &gorm.Statement{DB: d.DbConn}
		if err := stmt.Parse(m); err != nil {
			return err
		}

		err = d.DbConn.Exec("DELETE FROM sqlite_sequence WHERE name = ?", stmt.Schema.Table).Error
		if err != nil && !strings.Contains(err.Error(), "no such table: sqlite_sequence") {
			return err
		}
	}

	return nil
}

// Count returns the number of rows stored for the given table.
func (d *Db) Count(table string) (int64, error) {
	var n int64
	err := d.DbConn.Table(table).Count(&n).Error
	return n, err
}

func (d *Db) checkTables() error {
	for _, m := range d.models {
		if !d.DbConn.Migrator().HasTable(m) {
			return fmt.Errorf("table for model %T was not created", m)
		}
	}
	return nil
}
