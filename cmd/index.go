package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ramsesmoreno/cfdi-summary/internal/companion"
	"github.com/ramsesmoreno/cfdi-summary/internal/logger"
	"github.com/ramsesmoreno/cfdi-summary/internal/ocr"
	"github.com/ramsesmoreno/cfdi-summary/internal/reconcile"
)

var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "List the UUIDs found in the PDF files of a directory",
	Long: `Build the UUID index that scan --rename uses to pair invoices with PDFs whose
names differ, and print it. UUIDs in file names take precedence over UUIDs
found in the text of other files.`,
	Example: `  cfdi-summary index ~/facturas/2024-03
  cfdi-summary index ~/facturas/2024-03 --extractor vision`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringP("dir", "d", ".", "Directory with the PDF files")
	indexCmd.Flags().String("extractor", "", "PDF text extractor: pdf, vision or documentai")
}

func runIndex(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("index")

	cfg, err := loadScanConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(log)
	defer cancel()

	listing, err := reconcile.Discover(cfg.Dir)
	if err != nil {
		return err
	}

	extractor, err := ocr.New(ctx, ocr.Config{
		Backend:     cfg.Extractor,
		ProjectID:   cfg.GoogleCloudProject,
		Location:    cfg.GoogleCloudLocation,
		ProcessorID: cfg.DocumentAIProcessorID,
	})
	if err != nil {
		return fmt.Errorf("failed to create %s extractor: %w", cfg.Extractor, err)
	}
	defer extractor.Close()

	fmt.Printf("Indexando %d PDFs en '%s'...\n", len(listing.Companions), folderName(cfg.Dir))

	idx, err := companion.Build(ctx, cfg.Dir, listing.Companions, extractor)
	if err != nil {
		return err
	}

	entries := idx.Entries()
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		fmt.Printf("%s  %s\n", id, entries[id])
	}
	fmt.Printf("%d UUIDs encontrados.\n", len(ids))
	return nil
}
