package db

import (
	"strings"
	"testing"
	"time"
)

func TestWithStatementTimeout(t *testing.T) {
	tests := []struct {
		name     string
		dsn      string
		timeout  time.Duration
		contains string
	}{
		{
			name:     "url form",
			dsn:      "postgres://u:p@localhost:5432/ledger?sslmode=disable",
			timeout:  10 * time.Second,
			contains: "statement_timeout=10000",
		},
		{
			name:     "key value form",
			dsn:      "host=localhost dbname=ledger",
			timeout:  1500 * time.Millisecond,
			contains: "dbname=ledger statement_timeout=1500",
		},
		{
			name:     "zero timeout leaves dsn",
			dsn:      "postgres://localhost/ledger",
			timeout:  0,
			contains: "postgres://localhost/ledger",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := withStatementTimeout(tt.dsn, tt.timeout)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("expected %q to contain %q", got, tt.contains)
			}
		})
	}

	t.Run("keeps existing timeout", func(t *testing.T) {
		dsn := "postgres://localhost/ledger?statement_timeout=5"
		if got := withStatementTimeout(dsn, time.Second); got != dsn {
			t.Errorf("expected dsn unchanged, got %s", got)
		}
	})
}
