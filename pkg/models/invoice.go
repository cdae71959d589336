package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DocumentType is the kind of fiscal document, derived from the TipoDeComprobante code.
type DocumentType int

const (
	DocumentUnknown DocumentType = iota
	DocumentIncome               // I - ingreso
	DocumentExpense              // E - egreso
	DocumentPayment              // P - complemento de pago
)

// String returns the single-letter code of the document type.
func (t DocumentType) String() string {
	switch t {
	case DocumentIncome:
		return "I"
	case DocumentExpense:
		return "E"
	case DocumentPayment:
		return "P"
	default:
		return "?"
	}
}

// Text is an attribute value that may be absent from the source document.
// An absent value is distinct from an empty one.
type Text struct {
	Value   string
	Present bool
}

// NewText returns a present Text.
func NewText(value string) Text {
	return Text{Value: value, Present: true}
}

// String renders the value, using the literal "undefined" when it is absent.
func (t Text) String() string {
	if !t.Present {
		return "undefined"
	}
	return t.Value
}

// Or returns the value, or fallback when absent.
func (t Text) Or(fallback string) string {
	if !t.Present {
		return fallback
	}
	return t.Value
}

// MarshalText encodes absent values as empty strings.
func (t Text) MarshalText() ([]byte, error) {
	return []byte(t.Value), nil
}

type Invoice struct {
	// Schema and stamp
	SchemaLocation string // xsi:schemaLocation of the Comprobante
	UUID           Text   // TimbreFiscalDigital UUID, absent when the document was never stamped
	Version        Text

	// Issue date as written in the document (ISO-8601 date-time)
	Date Text

	// Parties
	IssuerTaxID    Text
	IssuerName     Text
	RecipientTaxID Text
	RecipientName  Text

	// Amounts. Subtotal and taxes are accumulated from the line entries, Total is declared.
	Total        decimal.Decimal
	Discount     decimal.Decimal
	Subtotal     decimal.Decimal
	IVA          decimal.Decimal
	IVARetention decimal.Decimal
	ISRRetention decimal.Decimal

	Type     DocumentType
	TypeCode Text // raw TipoDeComprobante
	Currency Text

	// SourceName is the file name without extension. After reorganization it holds the canonical name.
	SourceName string
}

// DateOnly returns the calendar date portion of the issue date (before the "T" separator).
func (inv *Invoice) DateOnly() string {
	date := inv.Date.Or("")
	if idx := strings.Index(date, "T"); idx >= 0 {
		return date[:idx]
	}
	return date
}

// SortKey is the value invoices are ordered by.
func (inv *Invoice) SortKey() string {
	return inv.Date.Or("")
}

// Totals are the running sums reported in the last row of the summary.
type Totals struct {
	Subtotal     decimal.Decimal
	IVA          decimal.Decimal
	IVARetention decimal.Decimal
	ISRRetention decimal.Decimal
	Total        decimal.Decimal
}

// Add accumulates the invoice amounts.
func (t *Totals) Add(inv *Invoice) {
	t.Subtotal = t.Subtotal.Add(inv.Subtotal)
	t.IVA = t.IVA.Add(inv.IVA)
	t.IVARetention = t.IVARetention.Add(inv.IVARetention)
	t.ISRRetention = t.ISRRetention.Add(inv.ISRRetention)
	t.Total = t.Total.Add(inv.Total)
}
