package cfdi

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ramsesmoreno/cfdi-summary/pkg/models"
)

// Parse converts one XML document into an invoice record.
//
// It returns (nil, nil) when the document is well-formed XML but not a CFDI
// (missing Comprobante or a schema location outside SchemaPrefix). An error is
// returned only when the XML itself cannot be decoded.
func Parse(data []byte) (*models.Invoice, error) {
	const op = "Parse"

	root, err := decodeTree(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrMalformedXML, err)
	}

	comprobante := root.find("comprobante")
	schema, _ := comprobante.attr("schemalocation")
	if !strings.HasPrefix(schema, SchemaPrefix) {
		return nil, nil
	}

	inv := &models.Invoice{
		SchemaLocation: schema,
		Version:        text(comprobante, "version"),
		Date:           text(comprobante, "fecha"),
		TypeCode:       text(comprobante, "tipodecomprobante"),
		Currency:       text(comprobante, "moneda"),
		Total:          amount(comprobante, "total"),
		Discount:       amount(comprobante, "descuento"),
	}
	inv.Type = ParseDocumentType(inv.TypeCode.Value)

	if stamp := root.find("timbrefiscaldigital"); stamp != nil {
		inv.UUID = text(stamp, "uuid")
	}

	issuer := comprobante.find("emisor")
	inv.IssuerTaxID = text(issuer, "rfc")
	inv.IssuerName = text(issuer, "nombre")

	recipient := comprobante.find("receptor")
	inv.RecipientTaxID = text(recipient, "rfc")
	inv.RecipientName = text(recipient, "nombre")

	for _, concepto := range comprobante.child("conceptos").childrenNamed("concepto") {
		inv.Subtotal = inv.Subtotal.Add(amount(concepto, "importe"))
	}

	impuestos := comprobante.child("impuestos")
	for _, traslado := range impuestos.child("traslados").childrenNamed("traslado") {
		code, _ := traslado.attr("impuesto")
		if ParseTaxKind(code) == TaxIVA {
			inv.IVA = inv.IVA.Add(amount(traslado, "importe"))
		}
	}

	for _, retencion := range impuestos.child("retenciones").childrenNamed("retencion") {
		code, _ := retencion.attr("impuesto")
		switch ParseTaxKind(code) {
		case TaxIVA:
			inv.IVARetention = inv.IVARetention.Add(amount(retencion, "importe"))
		case TaxISR:
			inv.ISRRetention = inv.ISRRetention.Add(amount(retencion, "importe"))
		}
	}

	return inv, nil
}

func text(e *element, name string) models.Text {
	v, ok := e.attr(name)
	if !ok {
		return models.Text{}
	}
	return models.NewText(v)
}

// amount reads a decimal attribute; missing or unparseable values are zero.
func amount(e *element, name string) decimal.Decimal {
	v, ok := e.attr(name)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero
	}
	return d
}
