package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ramsesmoreno/cfdi-summary/pkg/models"
)

// FormatCSV renders the summary. The header is bare; every data and totals
// cell is double-quoted, with embedded quotes doubled.
func FormatCSV(invoices []*models.Invoice, totals models.Totals, includeTypeColumns bool) string {
	return NewTable(invoices, totals, includeTypeColumns).CSV()
}

// CSV renders the table as CSV text.
func (t *Table) CSV() string {
	var b strings.Builder

	b.WriteString(strings.Join(t.Header, ","))
	b.WriteByte('\n')
	for _, row := range t.Rows {
		writeQuoted(&b, row)
	}
	writeQuoted(&b, t.Totals)

	return b.String()
}

func writeQuoted(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

// CSVPath returns {dir}/{name of dir}.csv. The name is taken from the absolute
// path so "." resolves to the working directory's name.
func CSVPath(dir string) (string, error) {
	return siblingPath(dir, ".csv")
}

// WriteCSV writes content to CSVPath(dir) and returns the path written.
func WriteCSV(dir, content string) (string, error) {
	const op = "WriteCSV"

	path, err := CSVPath(dir)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("%s: write %s: %w", op, path, err)
	}
	return path, nil
}

func siblingPath(dir, ext string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return filepath.Join(dir, filepath.Base(abs)+ext), nil
}
