package submitlib

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rezonia/invoice-submit/internal/fiscalstore"
	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/preview"
	"github.com/rezonia/invoice-submit/internal/processor"
	"github.com/rezonia/invoice-submit/internal/rules"
)

// Totals is the computed preview of a document
type Totals = preview.Totals

// FiscalStore remembers the last fiscalization premise/device per entity
type FiscalStore = fiscalstore.Store

// Options configures a Processor
type Options struct {
	// RulesFile overrides the embedded jurisdiction rules
	RulesFile string
	// FiscalStore defaults to an in-memory store
	FiscalStore FiscalStore
	Logger      *zerolog.Logger
}

// PrepareResult is the outcome of a successful preparation
type PrepareResult struct {
	Kind     DocumentKind
	Payload  Payload
	Warnings []string
}

// Processor validates and normalizes documents
type Processor struct {
	pipeline *processor.Pipeline
}

// NewProcessor creates a processor with the given options
func NewProcessor(opts Options) (*Processor, error) {
	table, err := rules.Load(opts.RulesFile)
	if err != nil {
		return nil, err
	}

	pipelineOpts := []processor.Option{processor.WithRules(table)}
	if opts.FiscalStore != nil {
		pipelineOpts = append(pipelineOpts, processor.WithFiscalStore(opts.FiscalStore))
	}
	if opts.Logger != nil {
		pipelineOpts = append(pipelineOpts, processor.WithLogger(*opts.Logger))
	}

	return &Processor{pipeline: processor.NewPipeline(pipelineOpts...)}, nil
}

// NewDefaultProcessor creates a processor with the embedded rules and an
// in-memory fiscal store
func NewDefaultProcessor() *Processor {
	return &Processor{pipeline: processor.NewPipeline()}
}

// Validate returns every schema and compliance error of req. The request
// itself is malformed when err is non-nil.
func (p *Processor) Validate(ctx context.Context, req *Request) (ValidationErrors, error) {
	result := p.pipeline.Validate(ctx, req)
	if result.Error != nil {
		return nil, result.Error
	}
	return collect(result), nil
}

// Prepare validates req and builds its payload. Validation failures are
// returned as ValidationErrors.
func (p *Processor) Prepare(ctx context.Context, req *Request) (*PrepareResult, error) {
	result := p.pipeline.Prepare(ctx, req)
	if result.Error != nil {
		return nil, result.Error
	}
	if !result.Valid() {
		return nil, collect(result)
	}
	return &PrepareResult{
		Kind:     req.Kind,
		Payload:  result.Payload,
		Warnings: result.Warnings,
	}, nil
}

// PrepareBatch prepares every request concurrently. Results line up with
// reqs; a failed request leaves a nil entry and the first error is returned.
func (p *Processor) PrepareBatch(ctx context.Context, reqs []*Request) ([]*PrepareResult, error) {
	results := make([]*PrepareResult, len(reqs))

	var g errgroup.Group
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			result, err := p.Prepare(ctx, req)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}

	return results, g.Wait()
}

// Preview computes line and document totals
func (p *Processor) Preview(items []LineItem, modes PriceModes) Totals {
	return preview.Calculate(items, modes)
}

func collect(result *processor.Result) ValidationErrors {
	errs := make(model.ValidationErrors, 0, len(result.EntityErrors)+len(result.DocumentErrors))
	errs = append(errs, result.EntityErrors...)
	errs = append(errs, result.DocumentErrors...)
	return errs
}
