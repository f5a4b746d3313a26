// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"database/sql"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dialectPostgres = "postgres"

// snapshotOptions returns the transaction options for a consistent read
// snapshot. SQLite transactions are already serializable.
func snapshotOptions(db *gorm.DB) []*sql.TxOptions {
	if db.Dialector.Name() != dialectPostgres {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
}

// forUpdate adds a row lock on dialects that support one.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() != dialectPostgres {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
