// Package reconciliation contains ledger reconciliation and diagnostic use cases.
package reconciliation

import (
	"sort"
	"time"

	"github.com/target-ledger/backend/internal/domain/entity"
)

// distinctPeriods returns the sorted distinct period starts of the targets.
func distinctPeriods(targets []*entity.Target) []time.Time {
	seen := make(map[string]time.Time)
	for _, t := range targets {
		seen[entity.PeriodKey(t.PeriodStart)] = entity.NormalizePeriod(t.PeriodStart)
	}

	periods := make([]time.Time, 0, len(seen))
	for _, p := range seen {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })
	return periods
}
