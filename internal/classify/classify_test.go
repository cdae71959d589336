package classify

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ramsesmoreno/cfdi-summary/pkg/models"
)

func invoice(issuer, recipient string, t models.DocumentType) *models.Invoice {
	return &models.Invoice{
		IssuerTaxID:    models.NewText(issuer),
		RecipientTaxID: models.NewText(recipient),
		Type:           t,
	}
}

func TestClassify(t *testing.T) {
	const me = "AAA010101AAA"

	tests := []struct {
		name     string
		inv      *models.Invoice
		grouping Grouping
		want     string
	}{
		{"no grouping", invoice(me, "X", models.DocumentIncome), NoGrouping(), ""},
		{"issued income", invoice(me, "BBB020202BBB", models.DocumentIncome), GroupBy(me), "emitidas/ingresos"},
		{"issued case-insensitive", invoice("aaa010101aaa", "B", models.DocumentExpense), GroupBy(me), "emitidas/egresos"},
		{"received payment", invoice("BBB020202BBB", me, models.DocumentPayment), GroupBy(me), "recibidas/complementos"},
		{"received unknown", invoice("B", me, models.DocumentUnknown), GroupBy(me), "recibidas/complementos"},
		// Neither party matches: the direction segment is empty but the separator is kept.
		{"unmatched direction", invoice("B", "C", models.DocumentIncome), GroupBy(me), "/ingresos"},
		{"type only income", invoice("B", "C", models.DocumentIncome), GroupBy(""), "ingresos"},
		{"type only expense", invoice("B", "C", models.DocumentExpense), GroupBy(""), "egresos"},
		{"type only payment", invoice("B", "C", models.DocumentPayment), GroupBy(""), "complementos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.inv, tt.grouping); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyAbsentTaxIDs(t *testing.T) {
	inv := &models.Invoice{Type: models.DocumentIncome}
	if got := Classify(inv, GroupBy("AAA010101AAA")); got != "/ingresos" {
		t.Errorf("Classify() = %q, want /ingresos", got)
	}
}

func TestDirectories(t *testing.T) {
	if got := Directories(NoGrouping()); len(got) != 0 {
		t.Errorf("Directories(NoGrouping()) = %v, want none", got)
	}

	if got, want := Directories(GroupBy("")), []string{"ingresos", "egresos", "complementos"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Directories(GroupBy(\"\")) = %v, want %v", got, want)
	}

	want := []string{
		"emitidas", "emitidas/ingresos", "emitidas/egresos", "emitidas/complementos",
		"recibidas", "recibidas/ingresos", "recibidas/egresos", "recibidas/complementos",
	}
	if got := Directories(GroupBy("AAA010101AAA")); !reflect.DeepEqual(got, want) {
		t.Errorf("Directories(GroupBy(rfc)) = %v, want %v", got, want)
	}
}

func TestEnsureDirectoriesIdempotent(t *testing.T) {
	root := t.TempDir()
	dirs := Directories(GroupBy("AAA010101AAA"))

	for i := 0; i < 2; i++ {
		if err := EnsureDirectories(root, dirs); err != nil {
			t.Fatalf("EnsureDirectories() pass %d error = %v", i+1, err)
		}
	}

	for _, dir := range dirs {
		info, err := os.Stat(filepath.Join(root, dir))
		if err != nil {
			t.Errorf("directory %s missing: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}

func TestEnsureDirectoriesBlockedByFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "ingresos"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDirectories(root, []string{"ingresos"}); err == nil {
		t.Error("EnsureDirectories() succeeded over an existing file")
	}
}

func TestGroupingModes(t *testing.T) {
	tests := []struct {
		g           Grouping
		enabled     bool
		directional bool
		str         string
	}{
		{NoGrouping(), false, false, "none"},
		{GroupBy(""), true, false, "type"},
		{GroupBy("AAA010101AAA"), true, true, "rfc:AAA010101AAA"},
	}
	for _, tt := range tests {
		if tt.g.Enabled() != tt.enabled || tt.g.Directional() != tt.directional || tt.g.String() != tt.str {
			t.Errorf("%v: Enabled=%v Directional=%v, want %v %v %q", tt.g, tt.g.Enabled(), tt.g.Directional(), tt.enabled, tt.directional, tt.str)
		}
	}
}
