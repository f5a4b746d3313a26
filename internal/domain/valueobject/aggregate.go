// Package valueobject contains domain value objects for the target ledger.
package valueobject

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LedgerTotals holds the raw ledger sums for a target.
type LedgerTotals struct {
	TotalProgress decimal.Decimal // Σ approved progress entries
	SharedIn      decimal.Decimal // Σ active transfers received
	SharedOut     decimal.Decimal // Σ active transfers sent
}

// Add returns the element-wise sum of two totals.
func (t LedgerTotals) Add(o LedgerTotals) LedgerTotals {
	return LedgerTotals{
		TotalProgress: t.TotalProgress.Add(o.TotalProgress),
		SharedIn:      t.SharedIn.Add(o.SharedIn),
		SharedOut:     t.SharedOut.Add(o.SharedOut),
	}
}

// NetAmount is approved progress plus transfers in minus transfers out.
func (t LedgerTotals) NetAmount() decimal.Decimal {
	return t.TotalProgress.Add(t.SharedIn).Sub(t.SharedOut)
}

// Available is the value the owner may still share. Net already excludes
// everything shared out, so a unit can only leave a target once.
func (t LedgerTotals) Available() decimal.Decimal {
	return t.NetAmount()
}

// Aggregate is the full set of derived values for a target.
type Aggregate struct {
	TargetID           uint
	TargetAmount       decimal.Decimal
	TotalProgress      decimal.Decimal
	SharedIn           decimal.Decimal
	SharedOut          decimal.Decimal
	NetAmount          decimal.Decimal
	ProgressPercentage decimal.Decimal
	RemainingAmount    decimal.Decimal
}

// NewAggregate derives percentage and remaining amount from ledger totals.
func NewAggregate(targetID uint, targetAmount decimal.Decimal, totals LedgerTotals) Aggregate {
	net := totals.NetAmount()

	percentage := decimal.Zero
	if !targetAmount.IsZero() {
		percentage = net.Div(targetAmount).Mul(hundred).Round(2)
	}

	remaining := targetAmount.Sub(net)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return Aggregate{
		TargetID:           targetID,
		TargetAmount:       targetAmount,
		TotalProgress:      totals.TotalProgress,
		SharedIn:           totals.SharedIn,
		SharedOut:          totals.SharedOut,
		NetAmount:          net,
		ProgressPercentage: percentage,
		RemainingAmount:    remaining,
	}
}

// Equal reports whether two aggregates carry identical values.
func (a Aggregate) Equal(b Aggregate) bool {
	return a.TargetID == b.TargetID &&
		a.TargetAmount.Equal(b.TargetAmount) &&
		a.TotalProgress.Equal(b.TotalProgress) &&
		a.SharedIn.Equal(b.SharedIn) &&
		a.SharedOut.Equal(b.SharedOut) &&
		a.NetAmount.Equal(b.NetAmount) &&
		a.ProgressPercentage.Equal(b.ProgressPercentage) &&
		a.RemainingAmount.Equal(b.RemainingAmount)
}
