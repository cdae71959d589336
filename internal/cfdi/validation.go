package cfdi

import (
	"github.com/shopspring/decimal"

	"github.com/ramsesmoreno/cfdi-summary/pkg/models"
)

// TotalTolerance is the largest difference between declared and computed totals
// that is still considered consistent.
var TotalTolerance = decimal.New(1, -2)

// TotalCheck compares the declared total against the amounts accumulated from
// the document's line entries.
type TotalCheck struct {
	Declared   decimal.Decimal
	Computed   decimal.Decimal
	Difference decimal.Decimal
}

// Consistent reports whether the difference is within TotalTolerance.
func (c TotalCheck) Consistent() bool {
	return c.Difference.Abs().LessThanOrEqual(TotalTolerance)
}

// CheckTotals computes subtotal - discount + IVA - retentions and compares it
// with the declared total. Payment complements and documents with taxes other
// than IVA can legitimately differ, so the result is informational only.
func CheckTotals(inv *models.Invoice) TotalCheck {
	computed := inv.Subtotal.
		Sub(inv.Discount).
		Add(inv.IVA).
		Sub(inv.IVARetention).
		Sub(inv.ISRRetention)

	return TotalCheck{
		Declared:   inv.Total,
		Computed:   computed,
		Difference: inv.Total.Sub(computed),
	}
}
