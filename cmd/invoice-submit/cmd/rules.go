package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-submit/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show the jurisdiction rules in use",
	Long: `Display the jurisdiction rule table: reference currency, tax number length,
legal tax rates, tax limit per item and features per country.

Examples:
  invoice-submit rules
  invoice-submit rules --rules-file ./rules.yaml -f table`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

// JurisdictionOutput is one row of the rules command
type JurisdictionOutput struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	ReferenceCurrency string          `json:"reference_currency,omitempty"`
	TaxNumberDigits   int             `json:"tax_number_digits,omitempty"`
	LegalTaxRates     []string        `json:"legal_tax_rates,omitempty"`
	MaxTaxesPerItem   int             `json:"max_taxes_per_item,omitempty"`
	Features          []rules.Feature `json:"features,omitempty"`
}

func runRules(cmd *cobra.Command, _ []string) error {
	t, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return err
	}

	rows := make([]JurisdictionOutput, 0, len(t.Codes()))
	for _, code := range t.Codes() {
		j := t.Jurisdiction(code)
		rates := make([]string, len(j.LegalTaxRates))
		for i, r := range j.LegalTaxRates {
			rates[i] = r.String()
		}
		rows = append(rows, JurisdictionOutput{
			Code:              j.Code,
			Name:              j.Name,
			ReferenceCurrency: j.ReferenceCurrency,
			TaxNumberDigits:   j.TaxNumberDigits,
			LegalTaxRates:     rates,
			MaxTaxesPerItem:   j.MaxTaxesPerItem,
			Features:          j.Features,
		})
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, rows)
	}

	fmt.Fprintf(out, "%-4s %-12s %-4s %-6s %-18s %s\n", "CODE", "NAME", "CCY", "DIGITS", "RATES", "FEATURES")
	fmt.Fprintln(out, strings.Repeat("-", 70))
	for _, r := range rows {
		features := make([]string, len(r.Features))
		for i, f := range r.Features {
			features[i] = string(f)
		}
		fmt.Fprintf(out, "%-4s %-12s %-4s %-6d %-18s %s\n",
			r.Code, r.Name, r.ReferenceCurrency, r.TaxNumberDigits,
			strings.Join(r.LegalTaxRates, ","), strings.Join(features, ","))
	}
	return nil
}
