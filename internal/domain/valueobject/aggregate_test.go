package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewAggregate(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		totals     LedgerTotals
		net        string
		percentage string
		remaining  string
	}{
		{
			name:       "progress only",
			target:     "1000",
			totals:     LedgerTotals{TotalProgress: d("250")},
			net:        "250",
			percentage: "25",
			remaining:  "750",
		},
		{
			name:       "transfers in and out",
			target:     "1000",
			totals:     LedgerTotals{TotalProgress: d("500"), SharedIn: d("100"), SharedOut: d("200")},
			net:        "400",
			percentage: "40",
			remaining:  "600",
		},
		{
			name:       "percentage rounds to two places",
			target:     "3",
			totals:     LedgerTotals{TotalProgress: d("1")},
			net:        "1",
			percentage: "33.33",
			remaining:  "2",
		},
		{
			name:       "zero target has zero percentage",
			target:     "0",
			totals:     LedgerTotals{TotalProgress: d("50")},
			net:        "50",
			percentage: "0",
			remaining:  "0",
		},
		{
			name:       "remaining clamps at zero when exceeded",
			target:     "100",
			totals:     LedgerTotals{TotalProgress: d("150")},
			net:        "150",
			percentage: "150",
			remaining:  "0",
		},
		{
			name:       "negative net when more was shared than achieved",
			target:     "100",
			totals:     LedgerTotals{TotalProgress: d("10"), SharedOut: d("30")},
			net:        "-20",
			percentage: "-20",
			remaining:  "120",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregate(7, d(tt.target), tt.totals)

			if agg.TargetID != 7 {
				t.Errorf("expected target id 7, got %d", agg.TargetID)
			}
			if !agg.NetAmount.Equal(d(tt.net)) {
				t.Errorf("expected net %s, got %s", tt.net, agg.NetAmount)
			}
			if !agg.ProgressPercentage.Equal(d(tt.percentage)) {
				t.Errorf("expected percentage %s, got %s", tt.percentage, agg.ProgressPercentage)
			}
			if !agg.RemainingAmount.Equal(d(tt.remaining)) {
				t.Errorf("expected remaining %s, got %s", tt.remaining, agg.RemainingAmount)
			}
		})
	}
}

func TestLedgerTotals(t *testing.T) {
	t.Run("Add sums element-wise", func(t *testing.T) {
		a := LedgerTotals{TotalProgress: d("1"), SharedIn: d("2"), SharedOut: d("3")}
		b := LedgerTotals{TotalProgress: d("10"), SharedIn: d("20"), SharedOut: d("30")}
		sum := a.Add(b)

		if !sum.TotalProgress.Equal(d("11")) || !sum.SharedIn.Equal(d("22")) || !sum.SharedOut.Equal(d("33")) {
			t.Errorf("unexpected sum %+v", sum)
		}
	})

	t.Run("Available equals net amount", func(t *testing.T) {
		totals := LedgerTotals{TotalProgress: d("100"), SharedIn: d("20"), SharedOut: d("30")}

		if !totals.NetAmount().Equal(d("90")) {
			t.Errorf("expected net 90, got %s", totals.NetAmount())
		}
		if !totals.Available().Equal(d("90")) {
			t.Errorf("expected available 90, got %s", totals.Available())
		}
	})

	t.Run("Available drops by exactly the amount shared", func(t *testing.T) {
		totals := LedgerTotals{TotalProgress: d("300")}
		for i := 1; i <= 3; i++ {
			totals.SharedOut = totals.SharedOut.Add(d("100"))
			if totals.Available().IsNegative() {
				t.Fatalf("expected non-negative available after %d transfers, got %s", i, totals.Available())
			}
		}
		if !totals.Available().IsZero() {
			t.Errorf("expected available 0, got %s", totals.Available())
		}
	})
}

func TestAggregateEqual(t *testing.T) {
	a := NewAggregate(1, d("100"), LedgerTotals{TotalProgress: d("40")})
	b := NewAggregate(1, d("100.00"), LedgerTotals{TotalProgress: d("40.0")})
	c := NewAggregate(1, d("100"), LedgerTotals{TotalProgress: d("41")})

	if !a.Equal(b) {
		t.Error("expected aggregates with equal decimals to be equal")
	}
	if a.Equal(c) {
		t.Error("expected aggregates with different progress to differ")
	}
}
