// Package submission turns document form state and its side-channel UI
// state into the request payload the document API expects.
//
// Normalization does not validate. Callers run the schema check and, for
// non-draft submissions, the compliance validator first.
package submission

import (
	"fmt"
	"strings"

	"github.com/rezonia/invoice-submit/internal/customer"
	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/pricemode"
	"github.com/rezonia/invoice-submit/internal/rules"
)

// DefaultPaymentType is used when a document is marked paid without a type
const DefaultPaymentType = model.PaymentBankTransfer

// FiscalSelection is the user's fiscalization choice in the form
type FiscalSelection struct {
	Skip                 bool   `json:"skip,omitempty"`
	BusinessPremiseName  string `json:"business_premise_name,omitempty"`
	ElectronicDeviceName string `json:"electronic_device_name,omitempty"`
}

// Complete reports whether both premise and device were chosen
func (s FiscalSelection) Complete() bool {
	return strings.TrimSpace(s.BusinessPremiseName) != "" && strings.TrimSpace(s.ElectronicDeviceName) != ""
}

// Options carries the side-channel state consumed at submission time
type Options struct {
	IsDraft bool
	// IsEdit marks an update of an existing document
	IsEdit bool

	PriceModes pricemode.Modes
	Customer   customer.State

	MarkAsPaid   bool
	PaymentTypes []model.PaymentType

	Fiscalization *FiscalSelection
	// EslogValidation overrides the entity default when set
	EslogValidation *bool

	Capabilities rules.Capabilities

	// HidePrices applies to delivery notes only
	HidePrices bool
}

// Normalize builds the payload for kind. It only fails for an unknown kind.
func Normalize(kind model.DocumentKind, doc *model.Document, opts Options) (Payload, error) {
	switch kind {
	case model.KindInvoice:
		return NormalizeInvoice(doc, opts), nil
	case model.KindCreditNote:
		return NormalizeCreditNote(doc, opts), nil
	case model.KindAdvanceInvoice:
		return NormalizeAdvanceInvoice(doc, opts), nil
	case model.KindDeliveryNote:
		return NormalizeDeliveryNote(doc, opts), nil
	case model.KindEstimate:
		return NormalizeEstimate(doc, opts), nil
	}
	return nil, fmt.Errorf("submission: unknown document kind %q", kind)
}

// NormalizeInvoice builds an invoice payload
func NormalizeInvoice(doc *model.Document, opts Options) *InvoicePayload {
	p := &InvoicePayload{
		Base:         base(doc, opts),
		DateDue:      doc.DateDue,
		PaymentTerms: doc.PaymentTerms,
		Payments:     payments(opts),
		Eslog:        eslogOptions(opts),
	}
	p.Furs, p.Fina = fiscalization(opts)
	return p
}

// NormalizeCreditNote builds a credit note payload
func NormalizeCreditNote(doc *model.Document, opts Options) *CreditNotePayload {
	p := &CreditNotePayload{
		Base:         base(doc, opts),
		DateDue:      doc.DateDue,
		PaymentTerms: doc.PaymentTerms,
		Payments:     payments(opts),
		Eslog:        eslogOptions(opts),
	}
	p.Furs, p.Fina = fiscalization(opts)
	return p
}

// NormalizeAdvanceInvoice builds an advance invoice payload
func NormalizeAdvanceInvoice(doc *model.Document, opts Options) *AdvanceInvoicePayload {
	p := &AdvanceInvoicePayload{
		Base:     base(doc, opts),
		DateDue:  doc.DateDue,
		Payments: payments(opts),
		Eslog:    eslogOptions(opts),
	}
	p.Furs, p.Fina = fiscalization(opts)
	return p
}

// NormalizeDeliveryNote builds a delivery note payload
func NormalizeDeliveryNote(doc *model.Document, opts Options) *DeliveryNotePayload {
	return &DeliveryNotePayload{
		Base:       base(doc, opts),
		HidePrices: opts.HidePrices,
	}
}

// NormalizeEstimate builds an estimate payload
func NormalizeEstimate(doc *model.Document, opts Options) *EstimatePayload {
	return &EstimatePayload{
		Base:          base(doc, opts),
		DateValidTill: doc.DateValidTill,
	}
}

func base(doc *model.Document, opts Options) Base {
	if doc == nil {
		doc = &model.Document{}
	}
	b := Base{
		Date:         doc.Date,
		CurrencyCode: doc.CurrencyCode,
		Items:        opts.PriceModes.Apply(doc.Items),
		Note:         doc.Note,
		Reference:    doc.Reference,
		IsDraft:      opts.IsDraft && !opts.IsEdit,
	}
	b.CustomerID, b.Customer = resolveCustomer(doc, opts.Customer)
	return b
}

// resolveCustomer emits only the id of an existing customer, unless the user
// edited its data in the form, in which case the edited snapshot travels
// along so the backend updates the stored record.
func resolveCustomer(doc *model.Document, state customer.State) (*string, *model.CustomerData) {
	if doc.CustomerID != nil && *doc.CustomerID != "" {
		id := model.String(*doc.CustomerID)
		if state.ShowForm && doc.Customer != nil && !doc.Customer.Equal(state.Original) {
			edited := doc.Customer.Normalized()
			return id, &edited
		}
		return id, nil
	}

	if !doc.Customer.HasAny() {
		return nil, nil
	}
	inline := doc.Customer.Normalized()
	return nil, &inline
}

func payments(opts Options) []model.Payment {
	if !opts.MarkAsPaid || opts.IsDraft || opts.IsEdit {
		return nil
	}
	types := opts.PaymentTypes
	if len(types) == 0 {
		types = []model.PaymentType{DefaultPaymentType}
	}
	out := make([]model.Payment, len(types))
	for i, t := range types {
		out[i] = model.Payment{PaymentType: t}
	}
	return out
}

// fiscalization returns the FURS and FINA blocks. Only one of them can be
// set, depending on the entity's jurisdiction.
func fiscalization(opts Options) (furs, fina *model.FiscalizationOptions) {
	if opts.IsDraft || opts.IsEdit || opts.Fiscalization == nil {
		return nil, nil
	}

	var block *model.FiscalizationOptions
	switch sel := opts.Fiscalization; {
	case sel.Skip:
		block = &model.FiscalizationOptions{Skip: true}
	case sel.Complete():
		block = &model.FiscalizationOptions{
			BusinessPremiseName:  strings.TrimSpace(sel.BusinessPremiseName),
			ElectronicDeviceName: strings.TrimSpace(sel.ElectronicDeviceName),
		}
	default:
		return nil, nil
	}

	switch {
	case opts.Capabilities.Furs:
		return block, nil
	case opts.Capabilities.Fina:
		return nil, block
	}
	return nil, nil
}

func eslogOptions(opts Options) *model.EslogOptions {
	if opts.IsDraft || !opts.Capabilities.Eslog {
		return nil
	}
	enabled := opts.Capabilities.EslogValidation
	if opts.EslogValidation != nil {
		enabled = *opts.EslogValidation
	}
	return &model.EslogOptions{ValidationEnabled: enabled}
}
