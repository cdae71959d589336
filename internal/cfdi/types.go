package cfdi

import (
	"github.com/ramsesmoreno/cfdi-summary/pkg/models"
)

// TaxKind identifies the tax of a Traslado or Retencion entry.
type TaxKind int

const (
	TaxUnknown TaxKind = iota
	TaxISR
	TaxIVA
	TaxIEPS
)

// String returns the SAT label of the tax.
func (k TaxKind) String() string {
	switch k {
	case TaxISR:
		return "ISR"
	case TaxIVA:
		return "IVA"
	case TaxIEPS:
		return "IEPS"
	default:
		return "unknown"
	}
}

// ParseTaxKind maps a catalog code (CFDI 3.3+) or label (CFDI 3.2) to a TaxKind.
// Unmatched codes map to TaxUnknown.
func ParseTaxKind(code string) TaxKind {
	switch code {
	case "001", "ISR":
		return TaxISR
	case "002", "IVA":
		return TaxIVA
	case "003", "IEPS":
		return TaxIEPS
	default:
		return TaxUnknown
	}
}

// ParseDocumentType maps the TipoDeComprobante code to a DocumentType.
// Any other value, including the empty string, is DocumentUnknown.
func ParseDocumentType(code string) models.DocumentType {
	switch code {
	case "I":
		return models.DocumentIncome
	case "E":
		return models.DocumentExpense
	case "P":
		return models.DocumentPayment
	default:
		return models.DocumentUnknown
	}
}
