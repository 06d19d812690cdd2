package cmd

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/processor"
)

var (
	validateKind  string
	validateDraft bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate document request files",
	Long: `Validate one or more document request files (JSON with document, entity and options).

Checks performed:
  - Schema: required fields, positive quantities, ISO 4217 currency, discount and tax limits
  - e-SLOG compliance for Slovenian entities that enabled it (skipped for drafts)

Errors are split into entity errors (fix in entity settings) and document errors.

Examples:
  invoice-submit validate request.json
  invoice-submit validate requests/ --kind invoices -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateKind, "kind", "", "Document kind when the file has none (invoices, credit-notes, ...)")
	validateCmd.Flags().BoolVar(&validateDraft, "draft", false, "Validate as a draft")
}

// ValidationResult holds the result of validating a single file
type ValidationResult struct {
	File           string                  `json:"file"`
	Valid          bool                    `json:"valid"`
	EntityErrors   []model.ValidationError `json:"entity_errors,omitempty"`
	DocumentErrors []model.ValidationError `json:"document_errors,omitempty"`
	Errors         []string                `json:"errors,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to validate")
	}

	pipeline, err := newPipeline(cmd.Context())
	if err != nil {
		return err
	}

	results := make([]*ValidationResult, len(files))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.NumCPU())
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i] = validateFile(ctx, pipeline, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	allValid := true
	for _, r := range results {
		allValid = allValid && r.Valid
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		if err := writeJSON(out, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Fprintf(out, "✓ %s: VALID\n", r.File)
				continue
			}
			fmt.Fprintf(out, "✗ %s: INVALID\n", r.File)
			for _, e := range r.Errors {
				fmt.Fprintf(out, "  - %s\n", e)
			}
			for _, e := range r.EntityErrors {
				fmt.Fprintf(out, "  - [entity] %s\n", e.Error())
			}
			for _, e := range r.DocumentErrors {
				fmt.Fprintf(out, "  - %s\n", e.Error())
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}

func validateFile(ctx context.Context, pipeline *processor.Pipeline, filePath string) *ValidationResult {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result := &ValidationResult{File: filePath}

	req, err := readRequest(filePath, nil)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	if req.Kind == "" {
		req.Kind = model.DocumentKind(validateKind)
	}
	if validateDraft {
		req.IsDraft = true
	}

	printVerbose("Validating %s (%s)\n", filePath, req.Kind)
	res := pipeline.Validate(ctx, req)
	if res.Error != nil {
		result.Errors = append(result.Errors, res.Error.Error())
		return result
	}

	result.Valid = res.Valid()
	result.EntityErrors = res.EntityErrors
	result.DocumentErrors = res.DocumentErrors
	return result
}
