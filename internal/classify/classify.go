// Package classify decides where a reorganized invoice lives inside the scanned directory.
package classify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ramsesmoreno/cfdi-summary/pkg/models"
)

// Direction branches.
const (
	Issued   = "emitidas"
	Received = "recibidas"
)

// Type branches.
const (
	Income      = "ingresos"
	Expense     = "egresos"
	Complements = "complementos"
)

// Grouping selects the classification policy. The zero value disables grouping.
type Grouping struct {
	TaxID   string
	enabled bool
}

// NoGrouping keeps every file in the scanned directory.
func NoGrouping() Grouping {
	return Grouping{}
}

// GroupBy enables grouping. A non-empty taxID adds a direction branch
// (issued or received by that party); an empty one groups by type only.
func GroupBy(taxID string) Grouping {
	return Grouping{TaxID: taxID, enabled: true}
}

// Enabled reports whether invoices are classified into sub-directories.
func (g Grouping) Enabled() bool {
	return g.enabled
}

// Directional reports whether the grouping splits by issued/received.
func (g Grouping) Directional() bool {
	return g.enabled && g.TaxID != ""
}

func (g Grouping) String() string {
	switch {
	case !g.enabled:
		return "none"
	case g.TaxID == "":
		return "type"
	default:
		return "rfc:" + g.TaxID
	}
}

// TypeBranch returns the type directory of a document type.
func TypeBranch(t models.DocumentType) string {
	switch t {
	case models.DocumentIncome:
		return Income
	case models.DocumentExpense:
		return Expense
	default:
		return Complements
	}
}

// Classify returns the destination fragment of inv relative to the scanned
// directory, using "/" as separator. It is empty when grouping is disabled.
//
// With a tax ID that matches neither party the fragment keeps a leading
// separator and no direction segment, e.g. "/ingresos".
func Classify(inv *models.Invoice, g Grouping) string {
	if !g.enabled {
		return ""
	}

	direction := ""
	if g.TaxID != "" {
		switch {
		case strings.EqualFold(g.TaxID, inv.IssuerTaxID.Value) && inv.IssuerTaxID.Present:
			direction = Issued
		case strings.EqualFold(g.TaxID, inv.RecipientTaxID.Value) && inv.RecipientTaxID.Present:
			direction = Received
		}
		return direction + "/" + TypeBranch(inv.Type)
	}

	return TypeBranch(inv.Type)
}

// Directories lists every directory the grouping may move files into, parents
// before children.
func Directories(g Grouping) []string {
	if !g.enabled {
		return nil
	}

	types := []string{Income, Expense, Complements}
	if g.TaxID == "" {
		return types
	}

	dirs := make([]string, 0, 8)
	for _, direction := range []string{Issued, Received} {
		dirs = append(dirs, direction)
		for _, t := range types {
			dirs = append(dirs, direction+"/"+t)
		}
	}
	return dirs
}

// EnsureDirectories creates each fragment under root. Existing directories are
// left untouched.
func EnsureDirectories(root string, dirs []string) error {
	const op = "EnsureDirectories"

	for _, dir := range dirs {
		path := filepath.Join(root, filepath.FromSlash(dir))
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("%s: create %s: %w", op, path, err)
		}
	}
	return nil
}
