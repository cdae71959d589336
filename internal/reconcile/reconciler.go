// Package reconcile runs a scan over a directory of CFDI documents: discovery,
// parsing, optional reorganization on disk and aggregation of totals.
//
// A run moves through Discover → ParseAll → IndexCompanions → Reorganize →
// Aggregate. The two middle stages run only when renaming is requested.
// Documents that are not CFDIs are skipped; filesystem failures abort the run.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/ramsesmoreno/cfdi-summary/internal/cfdi"
	"github.com/ramsesmoreno/cfdi-summary/internal/classify"
	"github.com/ramsesmoreno/cfdi-summary/internal/companion"
	"github.com/ramsesmoreno/cfdi-summary/internal/logger"
	"github.com/ramsesmoreno/cfdi-summary/pkg/models"
	"github.com/ramsesmoreno/cfdi-summary/pkg/services"
)

// Options configures a single run.
type Options struct {
	Dir      string
	Rename   bool
	Prefix   string
	Suffix   string
	Grouping classify.Grouping
}

// Move records one file relocated during reorganization. Paths are relative to
// the scanned directory.
type Move struct {
	From string
	To   string
}

// Result is the outcome of a completed run.
type Result struct {
	// Invoices are sorted by issue date; equal dates keep discovery order.
	Invoices []*models.Invoice
	Totals   models.Totals

	Discovered int // XML files found
	Skipped    int // XML files that produced no record
	Renamed    int // invoices moved to their canonical name
	Companions int // companion files moved alongside

	Moves []Move
	Index *companion.Index
}

// Reconciler orchestrates a scan. It holds no state between runs.
type Reconciler struct {
	extractor services.PageExtractor
	log       zerolog.Logger
}

// New creates a Reconciler. The extractor is used only when renaming.
func New(extractor services.PageExtractor) *Reconciler {
	return &Reconciler{
		extractor: extractor,
		log:       logger.WithComponent("reconcile"),
	}
}

// Run executes the scan described by opts.
func (r *Reconciler) Run(ctx context.Context, opts Options) (*Result, error) {
	const op = "Run"

	if opts.Dir == "" {
		opts.Dir = "."
	}

	listing, err := Discover(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	r.log.Info().
		Str("dir", opts.Dir).
		Int("documents", len(listing.Documents)).
		Int("companions", len(listing.Companions)).
		Msg("Discovered files")

	result := &Result{Discovered: len(listing.Documents)}

	invoices, files, err := r.parseAll(opts.Dir, listing.Documents)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.Skipped = len(listing.Documents) - len(invoices)

	if opts.Rename {
		index, err := companion.Build(ctx, opts.Dir, listing.Companions, r.extractor)
		if err != nil {
			return nil, fmt.Errorf("%s: index companions: %w", op, err)
		}
		result.Index = index
		r.log.Info().Int("identifiers", index.Len()).Msg("Companion index built")

		if err := classify.EnsureDirectories(opts.Dir, classify.Directories(opts.Grouping)); err != nil {
			return nil, fmt.Errorf("%s: %w", op, WrapFileSystemError("mkdir", opts.Dir, "", err))
		}

		reorg := &reorganizer{
			dir:        opts.Dir,
			opts:       opts,
			index:      index,
			files:      files,
			companions: listing.Companions,
			result:     result,
			log:        r.log,
		}
		for _, inv := range invoices {
			if err := reorg.move(inv); err != nil {
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
	}

	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].SortKey() < invoices[j].SortKey()
	})

	gated := opts.Grouping.Enabled()
	for _, inv := range invoices {
		if gated && inv.Type != models.DocumentIncome {
			continue
		}
		result.Totals.Add(inv)
	}
	result.Invoices = invoices

	r.log.Info().
		Int("invoices", len(invoices)).
		Int("skipped", result.Skipped).
		Int("renamed", result.Renamed).
		Bool("income_only", gated).
		Msg("Scan completed")

	return result, nil
}

// parseAll reads and parses every document in discovery order. It also returns
// the file name each invoice was read from.
func (r *Reconciler) parseAll(dir string, names []string) ([]*models.Invoice, map[*models.Invoice]string, error) {
	invoices := make([]*models.Invoice, 0, len(names))
	files := make(map[*models.Invoice]string, len(names))

	for _, name := range names {
		file := filepath.Join(dir, name)
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, nil, WrapFileSystemError("read", file, "", err)
		}

		inv, err := cfdi.Parse(data)
		if err != nil {
			r.log.Warn().Err(err).Str("file", name).Msg("Skipping unreadable XML")
			continue
		}
		if inv == nil {
			r.log.Debug().Str("file", name).Msg("Skipping XML without a SAT schema location")
			continue
		}
		inv.SourceName = baseName(name)

		if check := cfdi.CheckTotals(inv); !check.Consistent() {
			r.log.Warn().
				Str("file", name).
				Str("declared", check.Declared.StringFixed(2)).
				Str("computed", check.Computed.StringFixed(2)).
				Msg("Declared total differs from computed amounts")
		}

		r.log.Debug().
			Str("file", name).
			Str("uuid", inv.UUID.String()).
			Str("type", inv.Type.String()).
			Msg("Parsed invoice")
		invoices = append(invoices, inv)
		files[inv] = name
	}

	return invoices, files, nil
}

// reorganizer moves invoices and their companions to canonical names.
type reorganizer struct {
	dir        string
	opts       Options
	index      *companion.Index
	files      map[*models.Invoice]string
	companions []string
	result     *Result
	log        zerolog.Logger
}

// CanonicalName returns "{date}_{uuid}" for an invoice.
func CanonicalName(inv *models.Invoice) string {
	return inv.DateOnly() + "_" + inv.UUID.Value
}

func (g *reorganizer) move(inv *models.Invoice) error {
	// Unstamped invoices keep their file name: {date}_{uuid} has no uuid to use.
	if !inv.UUID.Present || inv.UUID.Value == "" {
		g.log.Warn().Str("file", inv.SourceName).Msg("Invoice has no stamp UUID, leaving it in place")
		return nil
	}

	source := g.files[inv]
	fragment := classify.Classify(inv, g.opts.Grouping)
	newBase := g.opts.Prefix + CanonicalName(inv) + g.opts.Suffix

	moved, err := g.rename(source, fragment, newBase)
	if err != nil {
		return err
	}
	if moved {
		g.result.Renamed++
	}

	if pdf, ok := g.findCompanion(inv); ok {
		moved, err := g.rename(pdf, fragment, newBase)
		if err != nil {
			return err
		}
		if moved {
			g.result.Companions++
		}
	}

	inv.SourceName = newBase
	return nil
}

// findCompanion looks for a same-named companion first, then consults the index.
func (g *reorganizer) findCompanion(inv *models.Invoice) (string, bool) {
	for _, name := range g.companions {
		if baseName(name) == inv.SourceName && g.exists(name) {
			return name, true
		}
	}

	name, ok := g.index.Lookup(inv.UUID.Value)
	if !ok || !g.exists(name) {
		return "", false
	}
	g.log.Debug().Str("uuid", inv.UUID.Value).Str("file", name).Msg("Companion resolved by identifier")
	return name, true
}

func (g *reorganizer) exists(name string) bool {
	info, err := os.Stat(filepath.Join(g.dir, name))
	return err == nil && !info.IsDir()
}

// rename moves name into fragment as newBase plus the original extension.
// It reports false when the file already has that name.
func (g *reorganizer) rename(name, fragment, newBase string) (bool, error) {
	from := filepath.Join(g.dir, name)
	to := filepath.Join(g.dir, filepath.FromSlash(fragment), newBase+filepath.Ext(name))

	if from == to {
		return false, nil
	}

	if _, err := os.Stat(from); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, WrapFileSystemError("rename", from, to, ErrSourceMissing)
		}
		return false, WrapFileSystemError("rename", from, to, err)
	}
	if _, err := os.Lstat(to); err == nil {
		return false, WrapFileSystemError("rename", from, to, ErrDestinationExists)
	}

	if err := os.Rename(from, to); err != nil {
		return false, WrapFileSystemError("rename", from, to, err)
	}

	g.result.Moves = append(g.result.Moves, Move{From: name, To: path.Join(fragment, newBase+filepath.Ext(name))})
	g.log.Debug().Str("from", from).Str("to", to).Msg("Renamed")
	return true, nil
}
