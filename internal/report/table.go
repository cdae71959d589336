// Package report renders a scan result as the CSV summary and its optional
// workbook and Google Sheets renditions.
//
// All renditions share one Table: a header, one row per invoice in the given
// order, and a totals row with the five aggregate sums. Amounts are formatted
// with two decimals, rounding half away from zero.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/ramsesmoreno/cfdi-summary/pkg/models"
)

// MoneyColumns is the number of trailing monetary columns.
const MoneyColumns = 5

var (
	leadingColumns = []string{"fecha", "uuid", "version"}
	typeColumns    = []string{"tipo", "moneda"}
	partyColumns   = []string{"rfc_emisor", "emisor", "rfc_receptor", "receptor"}
	moneyColumns   = []string{"subtotal", "iva", "retencion_iva", "retencion_isr", "total"}
)

// Table is the tabular form of a summary. Cells are already formatted.
type Table struct {
	Header []string
	Rows   [][]string
	Totals []string

	// Amounts keeps the unformatted monetary values of each row, then of the totals row.
	Amounts [][]decimal.Decimal
}

// Header returns the column names. The type-aware layout inserts tipo and
// moneda after version.
func Header(includeTypeColumns bool) []string {
	cols := make([]string, 0, len(leadingColumns)+len(typeColumns)+len(partyColumns)+len(moneyColumns))
	cols = append(cols, leadingColumns...)
	if includeTypeColumns {
		cols = append(cols, typeColumns...)
	}
	cols = append(cols, partyColumns...)
	return append(cols, moneyColumns...)
}

// NewTable lays out invoices and totals. Absent text renders as "undefined".
func NewTable(invoices []*models.Invoice, totals models.Totals, includeTypeColumns bool) *Table {
	t := &Table{Header: Header(includeTypeColumns)}

	for _, inv := range invoices {
		row := []string{inv.Date.String(), inv.UUID.String(), inv.Version.String()}
		if includeTypeColumns {
			row = append(row, inv.TypeCode.String(), inv.Currency.String())
		}
		row = append(row,
			inv.IssuerTaxID.String(), inv.IssuerName.String(),
			inv.RecipientTaxID.String(), inv.RecipientName.String(),
		)

		amounts := []decimal.Decimal{inv.Subtotal, inv.IVA, inv.IVARetention, inv.ISRRetention, inv.Total}
		t.Rows = append(t.Rows, append(row, formatAmounts(amounts)...))
		t.Amounts = append(t.Amounts, amounts)
	}

	sums := []decimal.Decimal{totals.Subtotal, totals.IVA, totals.IVARetention, totals.ISRRetention, totals.Total}
	t.Totals = append(make([]string, len(t.Header)-MoneyColumns), formatAmounts(sums)...)
	t.Amounts = append(t.Amounts, sums)

	return t
}

func formatAmounts(amounts []decimal.Decimal) []string {
	out := make([]string, len(amounts))
	for i, a := range amounts {
		out[i] = a.StringFixed(2)
	}
	return out
}
