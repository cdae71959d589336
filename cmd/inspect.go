package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ramsesmoreno/cfdi-summary/internal/cfdi"
	"github.com/ramsesmoreno/cfdi-summary/internal/logger"
	"github.com/ramsesmoreno/cfdi-summary/pkg/models"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [xml-file]",
	Short: "Print the fields read from one CFDI as JSON",
	Long: `Parse a single XML file the same way scan does and print the extracted
record as JSON, including a comparison of the declared total against the
amounts accumulated from its conceptos, traslados and retenciones.`,
	Example: `  cfdi-summary inspect factura.xml`,
	Args:    cobra.ExactArgs(1),
	RunE:    runInspect,
}

// InspectOutput is the JSON document printed by inspect.
type InspectOutput struct {
	File           string `json:"file"`
	SchemaLocation string `json:"schema_location"`
	UUID           string `json:"uuid"`
	Version        string `json:"version"`
	Date           string `json:"fecha"`
	Type           string `json:"tipo"`
	Currency       string `json:"moneda"`
	IssuerTaxID    string `json:"rfc_emisor"`
	IssuerName     string `json:"emisor"`
	RecipientTaxID string `json:"rfc_receptor"`
	RecipientName  string `json:"receptor"`
	Subtotal       string `json:"subtotal"`
	Discount       string `json:"descuento"`
	IVA            string `json:"iva"`
	IVARetention   string `json:"retencion_iva"`
	ISRRetention   string `json:"retencion_isr"`
	Total          string `json:"total"`
	ComputedTotal  string `json:"total_calculado"`
	Consistent     bool   `json:"totales_consistentes"`
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("inspect")
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	inv, err := cfdi.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if inv == nil {
		log.Info().Str("file", path).Msg("Document has no SAT schema location")
		return fmt.Errorf("%s is not a CFDI document", path)
	}

	jsonData, err := json.MarshalIndent(newInspectOutput(path, inv), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(jsonData))
	return nil
}

func newInspectOutput(path string, inv *models.Invoice) InspectOutput {
	check := cfdi.CheckTotals(inv)
	return InspectOutput{
		File:           path,
		SchemaLocation: inv.SchemaLocation,
		UUID:           inv.UUID.Value,
		Version:        inv.Version.Value,
		Date:           inv.Date.Value,
		Type:           inv.TypeCode.Value,
		Currency:       inv.Currency.Value,
		IssuerTaxID:    inv.IssuerTaxID.Value,
		IssuerName:     inv.IssuerName.Value,
		RecipientTaxID: inv.RecipientTaxID.Value,
		RecipientName:  inv.RecipientName.Value,
		Subtotal:       inv.Subtotal.StringFixed(2),
		Discount:       inv.Discount.StringFixed(2),
		IVA:            inv.IVA.StringFixed(2),
		IVARetention:   inv.IVARetention.StringFixed(2),
		ISRRetention:   inv.ISRRetention.StringFixed(2),
		Total:          inv.Total.StringFixed(2),
		ComputedTotal:  check.Computed.StringFixed(2),
		Consistent:     check.Consistent(),
	}
}
