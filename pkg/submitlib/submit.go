// Package submitlib provides a public API for preparing invoicing documents
// for submission to the document API.
//
// It exposes the document model, the customer and price mode state helpers,
// the compliance validator, the payload normalizer and the table query
// compiler.
//
// Example usage:
//
//	proc := submitlib.NewDefaultProcessor()
//	result, err := proc.Prepare(ctx, &submitlib.Request{
//	    Kind:     submitlib.KindInvoice,
//	    Document: doc,
//	    Entity:   entity,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	body, _ := json.Marshal(result.Payload)
package submitlib

import (
	"github.com/rezonia/invoice-submit/internal/customer"
	"github.com/rezonia/invoice-submit/internal/eslog"
	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/pricemode"
	"github.com/rezonia/invoice-submit/internal/processor"
	"github.com/rezonia/invoice-submit/internal/submission"
	"github.com/rezonia/invoice-submit/internal/table"
)

// Re-export core types for public API
type (
	Document             = model.Document
	DocumentKind         = model.DocumentKind
	LineItem             = model.LineItem
	TaxRef               = model.TaxRef
	Discount             = model.Discount
	CustomerData         = model.CustomerData
	Entity               = model.Entity
	EntitySettings       = model.EntitySettings
	PaymentType          = model.PaymentType
	FiscalizationOptions = model.FiscalizationOptions
	EslogOptions         = model.EslogOptions
	Request              = processor.Request
	Payload              = submission.Payload
	FiscalSelection      = submission.FiscalSelection
	PriceModes           = pricemode.Modes
	CustomerManager      = customer.Manager
	CustomerPatch        = customer.Patch
	CustomerState        = customer.State
	FilterState          = table.FilterState
	TableParams          = table.Params
	TableManager         = table.Manager
)

// Re-export document kinds
const (
	KindInvoice        = model.KindInvoice
	KindCreditNote     = model.KindCreditNote
	KindDeliveryNote   = model.KindDeliveryNote
	KindAdvanceInvoice = model.KindAdvanceInvoice
	KindEstimate       = model.KindEstimate
)

// Re-export payment types
const (
	PaymentCash         = model.PaymentCash
	PaymentBankTransfer = model.PaymentBankTransfer
	PaymentCard         = model.PaymentCard
	PaymentCheck        = model.PaymentCheck
	PaymentOther        = model.PaymentOther
)

// Re-export error types
type (
	ValidationError  = model.ValidationError
	ValidationErrors = model.ValidationErrors
	DecodeError      = model.DecodeError
)

// Re-export stateless operations
var (
	NewCustomerManager         = customer.NewManager
	SeedPriceModes             = pricemode.SeedFromItems
	ValidateEslog              = eslog.Validate
	SplitErrors                = model.SplitErrors
	Normalize                  = submission.Normalize
	BuildQueryFromFilterState  = table.BuildQueryFromFilterState
	ToURLParams                = table.ToURLParams
	ParseFilterStateFromParams = table.ParseFilterStateFromParams
	NextSortOrder              = table.NextSortOrder
	NewTableManager            = table.NewManager
)
