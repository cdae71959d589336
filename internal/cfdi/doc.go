// Package cfdi parses Mexican CFDI fiscal documents into invoice records.
//
// The parser accepts the XML text of a single file and produces at most one
// record. Documents whose Comprobante does not declare a SAT schema location
// are not invoices of the recognized kind and produce no record and no error.
//
// Supported documents:
//   - CFDI 3.2 (lowercase attribute names), 3.3 and 4.0
//   - UTF-8, ISO-8859-1 and Windows-1252 encodings
//
// Amount handling:
//   - Subtotal is the sum of the Concepto/Importe values
//   - IVA is the sum of the document-level Traslado entries with tax code 002/IVA
//   - Retentions are routed to the IVA (002/IVA) or ISR (001/ISR) bucket
//   - Missing or unparseable amounts count as zero
//   - Arithmetic is decimal; rounding happens only when formatting
package cfdi

import (
	"errors"
)

// SchemaPrefix is the fiscal authority URL every accepted schema location starts with.
const SchemaPrefix = "http://www.sat.gob.mx/cfd"

var (
	// ErrMalformedXML is returned when the document cannot be decoded as XML.
	ErrMalformedXML = errors.New("malformed XML document")

	// ErrUnsupportedCharset is returned when the XML declaration names an encoding
	// other than UTF-8, ISO-8859-1 or Windows-1252.
	ErrUnsupportedCharset = errors.New("unsupported XML charset")
)
