package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ramsesmoreno/cfdi-summary/internal/classify"
	"github.com/ramsesmoreno/cfdi-summary/internal/config"
	"github.com/ramsesmoreno/cfdi-summary/internal/logger"
	"github.com/ramsesmoreno/cfdi-summary/internal/ocr"
	"github.com/ramsesmoreno/cfdi-summary/internal/reconcile"
	"github.com/ramsesmoreno/cfdi-summary/internal/report"
	"github.com/ramsesmoreno/cfdi-summary/pkg/services"
)

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Buscar archivos XML que sean CFDIs y contabilizar su contenido",
	Long: `Scan a directory for CFDI XML files and write {dir}/{name}.csv with one row
per invoice, sorted by date, followed by a totals row.

Files whose schema location is not a SAT CFDI schema are skipped. Only the
directory itself is scanned, not its sub-directories.

With --rename every stamped invoice becomes {prefix}{fecha}_{uuid}{suffix}.xml and
its PDF, found by name or by the UUID printed inside it, is renamed to match.
With --group the files are also moved into sub-directories; an RFC adds the
emitidas/recibidas split, an empty value groups by type only. While grouping,
only ingreso invoices count toward the totals.

Environment variables:
  CFDI_DIR, CFDI_RENAME, CFDI_PREFIX, CFDI_SUFFIX, CFDI_GROUP_RFC
  CFDI_EXTRACTOR - pdf (default), vision or documentai
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - for vision, documentai and Sheets
  GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION, DOCUMENT_AI_PROCESSOR_ID - for documentai
  GOOGLE_SHEET_URL, GOOGLE_SHEET_WORKSHEET - upload the summary to a Google Sheet`,
	Example: `  # Summarize the invoices in the current directory
  cfdi-summary

  # Summarize another directory
  cfdi-summary scan -d ~/facturas/2024-03

  # Rename and classify by direction for one RFC, also writing an .xlsx
  cfdi-summary scan -d ~/facturas/2024-03 --rename --group AAA010101AAA --xlsx

  # Classify by type only
  cfdi-summary scan -d ~/facturas/2024-03 --rename --group ""`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	addScanFlags(scanCmd)
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("dir", "d", ".", "Directorio en donde buscar archivos CFDI")
	cmd.Flags().BoolP("rename", "r", false, "Rename invoices to {fecha}_{uuid} and move their PDFs alongside")
	cmd.Flags().String("prefix", "", "Prefix for renamed files")
	cmd.Flags().String("suffix", "", "Suffix for renamed files")
	cmd.Flags().StringP("group", "g", "", "Classify renamed files into sub-directories; RFC for the emitidas/recibidas split, empty for type only")
	cmd.Flags().String("extractor", "", "PDF text extractor: pdf, vision or documentai")
	cmd.Flags().Bool("xlsx", false, "Also write {dir}/{name}.xlsx")
	cmd.Flags().String("sheet-url", "", "Also upload the summary to this Google Sheet")
}

// loadScanConfig merges environment, config file, explicitly set flags and the
// positional directory, in increasing precedence.
func loadScanConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("rename") {
		cfg.Rename, _ = flags.GetBool("rename")
	}
	if flags.Changed("prefix") {
		cfg.Prefix, _ = flags.GetString("prefix")
	}
	if flags.Changed("suffix") {
		cfg.Suffix, _ = flags.GetString("suffix")
	}
	if flags.Changed("group") {
		group, _ := flags.GetString("group")
		cfg.GroupRFC = &group
	}
	if flags.Changed("extractor") {
		cfg.Extractor, _ = flags.GetString("extractor")
	}
	if flags.Changed("xlsx") {
		cfg.Workbook, _ = flags.GetBool("xlsx")
	}
	if flags.Changed("sheet-url") {
		cfg.GoogleSheetURL, _ = flags.GetString("sheet-url")
	}
	if len(args) == 1 {
		cfg.Dir = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func grouping(cfg *config.Config) classify.Grouping {
	if cfg.GroupRFC == nil {
		return classify.NoGrouping()
	}
	return classify.GroupBy(strings.TrimSpace(*cfg.GroupRFC))
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan")

	cfg, err := loadScanConfig(cmd, args)
	if err != nil {
		return err
	}

	opts := reconcile.Options{
		Dir:      cfg.Dir,
		Rename:   cfg.Rename,
		Prefix:   cfg.Prefix,
		Suffix:   cfg.Suffix,
		Grouping: grouping(cfg),
	}

	log.Info().
		Str("dir", opts.Dir).
		Bool("rename", opts.Rename).
		Str("grouping", opts.Grouping.String()).
		Str("extractor", cfg.Extractor).
		Msg("Starting scan")

	ctx, cancel := commandContext(log)
	defer cancel()

	var extractor services.PageExtractor
	if opts.Rename {
		ext, err := ocr.New(ctx, ocr.Config{
			Backend:     cfg.Extractor,
			ProjectID:   cfg.GoogleCloudProject,
			Location:    cfg.GoogleCloudLocation,
			ProcessorID: cfg.DocumentAIProcessorID,
		})
		if err != nil {
			return fmt.Errorf("failed to create %s extractor: %w", cfg.Extractor, err)
		}
		defer func() {
			if closeErr := ext.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close extractor")
			}
		}()
		extractor = ext
	}

	fmt.Printf("Buscando en el directorio '%s'... ", folderName(opts.Dir))

	result, err := reconcile.New(extractor).Run(ctx, opts)
	if err != nil {
		fmt.Println()
		return err
	}

	fmt.Printf("%d xmls encontrados.\n", result.Discovered)
	printInvoices(result)
	if opts.Rename {
		printMoves(result)
	}

	table := report.NewTable(result.Invoices, result.Totals, opts.Grouping.Enabled())
	csvPath, err := report.WriteCSV(opts.Dir, table.CSV())
	if err != nil {
		return err
	}
	fmt.Printf("Resumen: %s\n", csvPath)

	if cfg.Workbook {
		if err := writeWorkbook(opts.Dir, table); err != nil {
			return err
		}
	}

	if cfg.GoogleSheetURL != "" {
		if err := exportSheet(ctx, cfg, table, log); err != nil {
			return err
		}
	}

	fmt.Println("Listo.")
	return nil
}

func folderName(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return filepath.Base(abs)
	}
	return filepath.Base(dir)
}

func printInvoices(result *reconcile.Result) {
	for _, inv := range result.Invoices {
		fmt.Printf(" - %s\n", inv.SourceName)
		fmt.Printf("   - uuid: %s\n", inv.UUID)
		fmt.Printf("   - fecha: %s\n", inv.Date)
		fmt.Printf("   - version: %s\n", inv.Version)
		fmt.Printf("   - tipo: %s\n", inv.TypeCode)
		fmt.Printf("   - emisor: %s\n", inv.IssuerName)
		fmt.Printf("   - receptor: %s\n", inv.RecipientName)
		fmt.Printf("   - importe: %s\n", inv.Subtotal.StringFixed(2))
	}
	if result.Skipped > 0 {
		fmt.Printf("%d archivos omitidos (no son CFDI).\n", result.Skipped)
	}
}

func printMoves(result *reconcile.Result) {
	for _, m := range result.Moves {
		fmt.Printf(" * %s -> %s\n", m.From, m.To)
	}
	fmt.Printf("%d CFDIs renombrados, %d PDFs asociados.\n", result.Renamed, result.Companions)
}

func writeWorkbook(dir string, table *report.Table) error {
	path, err := report.WorkbookPath(dir)
	if err != nil {
		return err
	}
	if err := report.WriteWorkbook(path, table); err != nil {
		return err
	}
	fmt.Printf("Libro: %s\n", path)
	return nil
}

func exportSheet(ctx context.Context, cfg *config.Config, table *report.Table, log zerolog.Logger) error {
	exporter, err := report.NewSheetsExporter(ctx, cfg.GoogleSheetURL)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Google Sheets exporter")
		return fmt.Errorf("failed to create Google Sheets exporter: %w", err)
	}

	fmt.Println("Escribiendo resumen en Google Sheet...")
	if err := exporter.Export(ctx, cfg.GoogleSheetWorksheet, table); err != nil {
		return fmt.Errorf("failed to export summary: %w", err)
	}
	fmt.Printf("Hoja: %s\n", cfg.GoogleSheetWorksheet)
	fmt.Printf("URL: %s\n", cfg.GoogleSheetURL)
	return nil
}
