package reconcile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ramsesmoreno/cfdi-summary/internal/classify"
	"github.com/ramsesmoreno/cfdi-summary/pkg/models"
	"github.com/ramsesmoreno/cfdi-summary/pkg/services"
)

const (
	me    = "AAA010101AAA"
	other = "BBB020202BBB"
)

type fixture struct {
	uuid      string
	date      string
	typ       string
	issuer    string
	recipient string
	amount    string
}

func (f fixture) xml() string {
	stamp := ""
	if f.uuid != "" {
		stamp = fmt.Sprintf(`<cfdi:Complemento><tfd:TimbreFiscalDigital xmlns:tfd="http://www.sat.gob.mx/TimbreFiscalDigital" UUID="%s"/></cfdi:Complemento>`, f.uuid)
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
  xsi:schemaLocation="http://www.sat.gob.mx/cfd/4 cfdv40.xsd" Version="4.0" Fecha="%s" TipoDeComprobante="%s" Total="%s">
  <cfdi:Emisor Rfc="%s" Nombre="Emisor"/>
  <cfdi:Receptor Rfc="%s" Nombre="Receptor"/>
  <cfdi:Conceptos><cfdi:Concepto Importe="%s"/></cfdi:Conceptos>
  %s
</cfdi:Comprobante>`, f.date, f.typ, f.amount, f.issuer, f.recipient, f.amount, stamp)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func noExtraction() services.PageExtractor {
	return services.PageExtractorFunc(func(ctx context.Context, path string) ([][]string, error) {
		return nil, nil
	})
}

func TestRunSkipsNonCFDI(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeFile(t, dir, fmt.Sprintf("other-%d.xml", i), `<project><name>not an invoice</name></project>`)
	}
	writeFile(t, dir, "notes.txt", "ignored")

	result, err := New(noExtraction()).Run(context.Background(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Discovered != 5 || result.Skipped != 5 || len(result.Invoices) != 0 {
		t.Errorf("Discovered=%d Skipped=%d Invoices=%d, want 5 5 0", result.Discovered, result.Skipped, len(result.Invoices))
	}
	if !result.Totals.Total.IsZero() || !result.Totals.Subtotal.IsZero() {
		t.Errorf("Totals = %+v, want zero", result.Totals)
	}
}

func TestRunSkipsMalformedXML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.xml", "<cfdi:Comprobante")
	writeFile(t, dir, "good.xml", fixture{uuid: "F47AC10B-58CC-4372-A567-0E02B2C3D479", date: "2024-01-01T00:00:00", typ: "I", issuer: me, recipient: other, amount: "10"}.xml())

	result, err := New(noExtraction()).Run(context.Background(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Invoices) != 1 || result.Skipped != 1 {
		t.Errorf("Invoices=%d Skipped=%d, want 1 1", len(result.Invoices), result.Skipped)
	}
}

func TestRunSortIsStable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.xml", fixture{uuid: "00000000-0000-4000-8000-00000000000a", date: "2024-01-05T10:00:00", typ: "I", amount: "1"}.xml())
	writeFile(t, dir, "b.xml", fixture{uuid: "00000000-0000-4000-8000-00000000000b", date: "2024-01-01T10:00:00", typ: "I", amount: "1"}.xml())
	writeFile(t, dir, "c.xml", fixture{uuid: "00000000-0000-4000-8000-00000000000c", date: "2024-01-05T10:00:00", typ: "I", amount: "1"}.xml())

	result, err := New(noExtraction()).Run(context.Background(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var got []string
	for _, inv := range result.Invoices {
		got = append(got, inv.SourceName)
	}
	want := []string{"b", "a", "c"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestRunTotalsGating(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "income.xml", fixture{uuid: "00000000-0000-4000-8000-000000000001", date: "2024-01-01T00:00:00", typ: "I", issuer: me, recipient: other, amount: "100.00"}.xml())
	writeFile(t, dir, "expense.xml", fixture{uuid: "00000000-0000-4000-8000-000000000002", date: "2024-01-02T00:00:00", typ: "E", issuer: me, recipient: other, amount: "100.00"}.xml())

	plain, err := New(noExtraction()).Run(context.Background(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := decimal.NewFromInt(200); !plain.Totals.Subtotal.Equal(want) {
		t.Errorf("plain Subtotal = %s, want %s", plain.Totals.Subtotal, want)
	}

	for _, g := range []classify.Grouping{classify.GroupBy(""), classify.GroupBy(me)} {
		grouped, err := New(noExtraction()).Run(context.Background(), Options{Dir: dir, Grouping: g})
		if err != nil {
			t.Fatalf("Run(%v) error = %v", g, err)
		}
		if want := decimal.NewFromInt(100); !grouped.Totals.Subtotal.Equal(want) || !grouped.Totals.Total.Equal(want) {
			t.Errorf("grouped %v totals = %s/%s, want %s", g, grouped.Totals.Subtotal, grouped.Totals.Total, want)
		}
		if len(grouped.Invoices) != 2 {
			t.Errorf("grouped %v listed %d invoices, want 2", g, len(grouped.Invoices))
		}
	}
}

func TestRunRenameWithSameNameCompanion(t *testing.T) {
	dir := t.TempDir()
	id := "F47AC10B-58CC-4372-A567-0E02B2C3D479"
	writeFile(t, dir, "factura1.xml", fixture{uuid: id, date: "2024-03-15T10:20:30", typ: "I", issuer: me, recipient: other, amount: "10"}.xml())
	writeFile(t, dir, "factura1.PDF", "%PDF-1.4")

	result, err := New(noExtraction()).Run(context.Background(), Options{Dir: dir, Rename: true, Prefix: "F-", Suffix: "-ok"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	base := "F-2024-03-15_" + id + "-ok"
	for _, name := range []string{base + ".xml", base + ".PDF"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
	if result.Renamed != 1 || result.Companions != 1 {
		t.Errorf("Renamed=%d Companions=%d, want 1 1", result.Renamed, result.Companions)
	}
	if got := result.Invoices[0].SourceName; got != base {
		t.Errorf("SourceName = %q, want %q", got, base)
	}
}

func TestRunRenameWithIndexedCompanion(t *testing.T) {
	dir := t.TempDir()
	id := "F47AC10B-58CC-4372-A567-0E02B2C3D479"
	writeFile(t, dir, "factura.xml", fixture{uuid: id, date: "2024-03-15T10:20:30", typ: "E", issuer: other, recipient: me, amount: "10"}.xml())
	writeFile(t, dir, "scan-0001.pdf", "%PDF-1.4")

	extractor := services.PageExtractorFunc(func(ctx context.Context, path string) ([][]string, error) {
		if filepath.Base(path) == "scan-0001.pdf" {
			return [][]string{{"Folio fiscal", "f47ac10b-58cc-4372-a567-0e02b2c3d479"}}, nil
		}
		return nil, nil
	})

	result, err := New(extractor).Run(context.Background(), Options{Dir: dir, Rename: true, Grouping: classify.GroupBy(me)})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	target := filepath.Join(dir, "recibidas", "egresos", "2024-03-15_"+id)
	for _, ext := range []string{".xml", ".pdf"} {
		if _, err := os.Stat(target + ext); err != nil {
			t.Errorf("expected %s: %v", target+ext, err)
		}
	}
	if result.Companions != 1 {
		t.Errorf("Companions = %d, want 1", result.Companions)
	}
	if len(result.Moves) != 2 || result.Moves[1].To != "recibidas/egresos/2024-03-15_"+id+".pdf" {
		t.Errorf("Moves = %+v", result.Moves)
	}
	// the expense is listed but excluded from totals while grouping
	if !result.Totals.Total.IsZero() {
		t.Errorf("Totals.Total = %s, want 0", result.Totals.Total)
	}
}

func TestRunRenameDestinationExists(t *testing.T) {
	dir := t.TempDir()
	id := "F47AC10B-58CC-4372-A567-0E02B2C3D479"
	writeFile(t, dir, "factura.xml", fixture{uuid: id, date: "2024-03-15T10:20:30", typ: "I", amount: "10"}.xml())
	writeFile(t, dir, "2024-03-15_"+id+".xml", "occupied")

	_, err := New(noExtraction()).Run(context.Background(), Options{Dir: dir, Rename: true})
	if !errors.Is(err, ErrDestinationExists) {
		t.Fatalf("Run() error = %v, want ErrDestinationExists", err)
	}
	var fsErr *FileSystemError
	if !errors.As(err, &fsErr) || fsErr.Op != "rename" {
		t.Errorf("Run() error = %#v, want FileSystemError for rename", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "factura.xml")); err != nil {
		t.Errorf("source was moved: %v", err)
	}
}

// A grouping tax ID that matches neither party yields a fragment without a
// direction segment, whose directory is never created, so the move fails.
func TestRunRenameUnmatchedDirection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "factura.xml", fixture{uuid: "F47AC10B-58CC-4372-A567-0E02B2C3D479", date: "2024-03-15T10:20:30", typ: "I", issuer: other, recipient: "CCC030303CCC", amount: "10"}.xml())

	_, err := New(noExtraction()).Run(context.Background(), Options{Dir: dir, Rename: true, Grouping: classify.GroupBy(me)})
	var fsErr *FileSystemError
	if !errors.As(err, &fsErr) {
		t.Fatalf("Run() error = %v, want FileSystemError", err)
	}
	if fsErr.Target != filepath.Join(dir, "ingresos", "2024-03-15_F47AC10B-58CC-4372-A567-0E02B2C3D479.xml") {
		t.Errorf("Target = %q", fsErr.Target)
	}
}

func TestRunRenameWithoutUUID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "borrador.xml", fixture{date: "2024-03-15T10:20:30", typ: "I", amount: "10"}.xml())

	result, err := New(noExtraction()).Run(context.Background(), Options{Dir: dir, Rename: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Renamed != 0 {
		t.Errorf("Renamed = %d, want 0", result.Renamed)
	}
	if _, err := os.Stat(filepath.Join(dir, "borrador.xml")); err != nil {
		t.Errorf("unstamped invoice was moved: %v", err)
	}
}

func TestRunMissingDirectory(t *testing.T) {
	_, err := New(noExtraction()).Run(context.Background(), Options{Dir: filepath.Join(t.TempDir(), "missing")})
	if !errors.Is(err, ErrDirectoryNotFound) {
		t.Fatalf("Run() error = %v, want ErrDirectoryNotFound", err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.XML", "a.xml", "a.pdf", "c.Pdf", "d.json"} {
		writeFile(t, dir, name, "")
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.xml"), 0o755); err != nil {
		t.Fatal(err)
	}

	listing, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if fmt.Sprint(listing.Documents) != "[a.xml b.XML]" {
		t.Errorf("Documents = %v", listing.Documents)
	}
	if fmt.Sprint(listing.Companions) != "[a.pdf c.Pdf]" {
		t.Errorf("Companions = %v", listing.Companions)
	}
}

func TestCanonicalName(t *testing.T) {
	inv := &models.Invoice{Date: models.NewText("2024-03-15T10:20:30"), UUID: models.NewText("ABC")}
	if got := CanonicalName(inv); got != "2024-03-15_ABC" {
		t.Errorf("CanonicalName() = %q", got)
	}
}
