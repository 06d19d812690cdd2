// Package processor runs the submit flow of a document form: schema check,
// compliance validation, normalization and remembering the fiscalization
// premise/device pair for the next document.
package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rezonia/invoice-submit/internal/customer"
	"github.com/rezonia/invoice-submit/internal/eslog"
	"github.com/rezonia/invoice-submit/internal/fiscalstore"
	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/pricemode"
	"github.com/rezonia/invoice-submit/internal/rules"
	"github.com/rezonia/invoice-submit/internal/schema"
	"github.com/rezonia/invoice-submit/internal/submission"
)

// ErrNoDocument is returned when a request carries no document
var ErrNoDocument = errors.New("processor: document is required")

// Request is one submission of a document form
type Request struct {
	Kind     model.DocumentKind `json:"kind"`
	Document *model.Document    `json:"document"`
	Entity   *model.Entity      `json:"entity"`

	IsDraft bool `json:"is_draft"`
	IsEdit  bool `json:"is_edit"`

	// PriceModes defaults to the modes seeded from the document items
	PriceModes pricemode.Modes `json:"price_modes,omitempty"`
	// Customer defaults to the state of a manager seeded from the document
	Customer *customer.State `json:"customer_state,omitempty"`

	MarkAsPaid   bool                `json:"mark_as_paid"`
	PaymentTypes []model.PaymentType `json:"payment_types,omitempty"`

	// Fiscalization defaults to the last combo used by the entity
	Fiscalization   *submission.FiscalSelection `json:"fiscalization,omitempty"`
	EslogValidation *bool                       `json:"eslog_validation,omitempty"`

	HidePrices bool `json:"hide_prices"`
}

// Result is the outcome of a submission. Payload is nil whenever any
// validation error was found.
type Result struct {
	Kind           model.DocumentKind      `json:"kind"`
	Payload        submission.Payload      `json:"payload,omitempty"`
	Capabilities   rules.Capabilities      `json:"capabilities"`
	EntityErrors   []model.ValidationError `json:"entity_errors"`
	DocumentErrors []model.ValidationError `json:"document_errors"`
	Warnings       []string                `json:"warnings,omitempty"`
	Error          error                   `json:"-"`
}

// Valid reports whether the submission passed every check
func (r *Result) Valid() bool {
	return r.Error == nil && len(r.EntityErrors) == 0 && len(r.DocumentErrors) == 0
}

// Pipeline runs submissions
type Pipeline struct {
	rules   *rules.Table
	checker *schema.Checker
	store   fiscalstore.Store
	log     zerolog.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithRules sets the jurisdiction rule table
func WithRules(t *rules.Table) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.rules = t
		}
	}
}

// WithFiscalStore sets the store of last used fiscalization combos
func WithFiscalStore(s fiscalstore.Store) Option {
	return func(p *Pipeline) {
		p.store = s
	}
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithChecker sets the schema checker
func WithChecker(c *schema.Checker) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.checker = c
		}
	}
}

// NewPipeline creates a pipeline with the embedded rules, an in-memory
// fiscal store and a disabled logger
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		rules:   rules.Default(),
		checker: schema.NewChecker(),
		store:   fiscalstore.NewMemoryStore(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Rules returns the rule table in use
func (p *Pipeline) Rules() *rules.Table {
	return p.rules
}

// Validate runs the schema check and, for non-draft submissions of entities
// that opted in, the compliance validator
func (p *Pipeline) Validate(_ context.Context, req *Request) *Result {
	result := &Result{
		Kind:           req.Kind,
		EntityErrors:   []model.ValidationError{},
		DocumentErrors: []model.ValidationError{},
	}
	if _, ok := model.ParseDocumentKind(string(req.Kind)); !ok {
		result.Error = fmt.Errorf("processor: unknown document kind %q", req.Kind)
		return result
	}
	if req.Document == nil {
		result.Error = ErrNoDocument
		return result
	}

	result.Capabilities = p.rules.Resolve(req.Entity)

	errs := p.checker.Check(req.Document, result.Capabilities)
	if !req.IsDraft && eslog.Applies(req.Entity, result.Capabilities) {
		v := eslog.NewValidator(result.Capabilities.Jurisdiction)
		errs = append(errs, v.Validate(req.Document, req.Entity)...)
	}
	result.EntityErrors, result.DocumentErrors = model.SplitErrors(errs)
	return result
}

// Prepare validates req and builds its payload
func (p *Pipeline) Prepare(ctx context.Context, req *Request) *Result {
	result := p.Validate(ctx, req)
	defer p.logResult(req, result)
	if !result.Valid() {
		return result
	}

	opts := submission.Options{
		IsDraft:         req.IsDraft,
		IsEdit:          req.IsEdit,
		PriceModes:      req.PriceModes,
		MarkAsPaid:      req.MarkAsPaid,
		PaymentTypes:    req.PaymentTypes,
		Fiscalization:   req.Fiscalization,
		EslogValidation: req.EslogValidation,
		Capabilities:    result.Capabilities,
		HidePrices:      req.HidePrices,
	}
	if opts.PriceModes == nil {
		opts.PriceModes = pricemode.SeedFromItems(req.Document.Items)
	}
	if req.Customer != nil {
		opts.Customer = *req.Customer
	} else {
		opts.Customer = customer.NewManager(req.Document.CustomerID, req.Document.Customer).State()
	}

	fiscal := p.fiscalizes(req, result.Capabilities)
	if fiscal && opts.Fiscalization == nil {
		opts.Fiscalization = p.lastCombo(ctx, req.Entity.ID, result)
	}

	payload, err := submission.Normalize(req.Kind, req.Document, opts)
	if err != nil {
		result.Error = err
		return result
	}
	result.Payload = payload

	if fiscal && opts.Fiscalization != nil && !opts.Fiscalization.Skip && opts.Fiscalization.Complete() {
		p.remember(ctx, req.Entity.ID, *opts.Fiscalization, result)
	}
	return result
}

func (p *Pipeline) fiscalizes(req *Request, caps rules.Capabilities) bool {
	return req.Kind.IsFiscal() && caps.Fiscalization() && !req.IsDraft && !req.IsEdit &&
		req.Entity != nil && req.Entity.ID != ""
}

func (p *Pipeline) lastCombo(ctx context.Context, entityID string, result *Result) *submission.FiscalSelection {
	if p.store == nil {
		return nil
	}
	combo, ok, err := p.store.Get(ctx, entityID)
	if err != nil {
		p.log.Warn().Err(err).Str("entity_id", entityID).Msg("fiscal combo lookup failed")
		result.Warnings = append(result.Warnings, "last used premise and device unavailable")
		return nil
	}
	if !ok {
		return nil
	}
	result.Warnings = append(result.Warnings,
		fmt.Sprintf("using last premise %q and device %q", combo.BusinessPremiseName, combo.ElectronicDeviceName))
	return &submission.FiscalSelection{
		BusinessPremiseName:  combo.BusinessPremiseName,
		ElectronicDeviceName: combo.ElectronicDeviceName,
	}
}

func (p *Pipeline) remember(ctx context.Context, entityID string, sel submission.FiscalSelection, result *Result) {
	if p.store == nil {
		return
	}
	err := p.store.Set(ctx, entityID, fiscalstore.Combo{
		BusinessPremiseName:  sel.BusinessPremiseName,
		ElectronicDeviceName: sel.ElectronicDeviceName,
	})
	if err != nil {
		p.log.Warn().Err(err).Str("entity_id", entityID).Msg("fiscal combo not saved")
		result.Warnings = append(result.Warnings, "premise and device not remembered")
	}
}

func (p *Pipeline) logResult(req *Request, result *Result) {
	event := p.log.Debug().
		Str("kind", string(req.Kind)).
		Bool("draft", req.IsDraft).
		Bool("edit", req.IsEdit).
		Int("entity_errors", len(result.EntityErrors)).
		Int("document_errors", len(result.DocumentErrors)).
		Bool("payload", result.Payload != nil)
	if result.Error != nil {
		event = event.Err(result.Error)
	}
	event.Msg("submission prepared")
}
