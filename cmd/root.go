package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ramsesmoreno/cfdi-summary/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "cfdi-summary [dir]",
	Short: "Buscar archivos XML que sean CFDIs y contabilizar su contenido",
	Long: `cfdi-summary scans a directory for CFDI XML invoices, sums their amounts and
writes a CSV summary named after the directory.

Without a subcommand it runs "scan". With --rename it also renames every invoice
to {fecha}_{uuid}, moves its PDF alongside, and with --group classifies them into
emitidas/recibidas and ingresos/egresos/complementos sub-directories.`,
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runScan,
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file (default: $CFDI_CONFIG)")
	addScanFlags(rootCmd)
}
