package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/preview"
)

var (
	normalizeKind    string
	normalizeDraft   bool
	normalizeEdit    bool
	normalizePreview bool
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file|-]",
	Short: "Build the API payload of a document request",
	Long: `Validate a document request and print the payload to send to the document API.

The request file carries the document, the issuing entity and the side-channel
form state (price modes, customer state, mark-as-paid, fiscalization, e-SLOG).
Use "-" to read the request from stdin.

Examples:
  invoice-submit normalize --kind invoices request.json
  cat request.json | invoice-submit normalize --kind estimates --draft -
  invoice-submit normalize --kind invoices --preview request.json`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringVar(&normalizeKind, "kind", "", "Document kind when the file has none")
	normalizeCmd.Flags().BoolVar(&normalizeDraft, "draft", false, "Save as draft")
	normalizeCmd.Flags().BoolVar(&normalizeEdit, "edit", false, "Update of an existing document")
	normalizeCmd.Flags().BoolVar(&normalizePreview, "preview", false, "Also print computed totals")
}

// NormalizeOutput is printed by the normalize command
type NormalizeOutput struct {
	Kind     model.DocumentKind `json:"kind"`
	Payload  any                `json:"payload"`
	Warnings []string           `json:"warnings,omitempty"`
	Preview  *preview.Totals    `json:"preview,omitempty"`
}

func runNormalize(cmd *cobra.Command, args []string) error {
	req, err := readRequest(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	if normalizeKind != "" {
		req.Kind = model.DocumentKind(normalizeKind)
	}
	req.IsDraft = req.IsDraft || normalizeDraft
	req.IsEdit = req.IsEdit || normalizeEdit

	pipeline, err := newPipeline(cmd.Context())
	if err != nil {
		return err
	}

	result := pipeline.Prepare(cmd.Context(), req)
	if result.Error != nil {
		return result.Error
	}

	out := cmd.OutOrStdout()
	if !result.Valid() {
		for _, e := range result.EntityErrors {
			fmt.Fprintf(out, "✗ [entity] %s\n", e.Error())
		}
		for _, e := range result.DocumentErrors {
			fmt.Fprintf(out, "✗ %s\n", e.Error())
		}
		return fmt.Errorf("document has %d validation errors", len(result.EntityErrors)+len(result.DocumentErrors))
	}

	output := NormalizeOutput{
		Kind:     req.Kind,
		Payload:  result.Payload,
		Warnings: result.Warnings,
	}
	if normalizePreview {
		totals := preview.Calculate(req.Document.Items, req.PriceModes)
		output.Preview = &totals
	}
	return writeJSON(out, output)
}
