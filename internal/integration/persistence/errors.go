// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainerror "github.com/target-ledger/backend/internal/domain/error"
)

// storeError wraps a database failure with the operation name. Transient
// failures become coded store-unavailable errors so callers can retry.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}

	var ledgerErr *domainerror.LedgerError
	if errors.As(err, &ledgerErr) || isDomainSentinel(err) {
		return err
	}

	if isTransient(err) {
		return domainerror.NewLedgerError(
			domainerror.ErrCodeStoreUnavailable,
			"ledger store unavailable",
			fmt.Errorf("%s: %w", op, err),
		)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func isDomainSentinel(err error) bool {
	return domainerror.Classify(err) != err
}

// isTransient reports whether err is a connectivity or timeout failure that
// is safe to retry because the failed unit of work was rolled back.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), // connection exception
			strings.HasPrefix(pgErr.Code, "53"), // insufficient resources
			pgErr.Code == "40001",               // serialization failure
			pgErr.Code == "40P01",               // deadlock detected
			pgErr.Code == "57014",               // statement timeout
			pgErr.Code == "57P01":               // admin shutdown
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// isUniqueViolation reports whether err is a unique constraint failure.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
