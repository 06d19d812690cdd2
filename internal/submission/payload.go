package submission

import "github.com/rezonia/invoice-submit/internal/model"

// Payload is a create or update request body for one document kind
type Payload interface {
	Kind() model.DocumentKind
}

// Base holds the fields shared by every document kind. The display number
// is never part of a payload: it is assigned by the server on create and
// immutable afterwards.
type Base struct {
	Date         string              `json:"date,omitempty"`
	CurrencyCode string              `json:"currency_code,omitempty"`
	CustomerID   *string             `json:"customer_id,omitempty"`
	Customer     *model.CustomerData `json:"customer,omitempty"`
	Items        []model.LineItem    `json:"items"`
	Note         string              `json:"note,omitempty"`
	Reference    string              `json:"reference,omitempty"`
	IsDraft      bool                `json:"is_draft,omitempty"`
}

// InvoicePayload is the body of POST/PATCH /invoices
type InvoicePayload struct {
	Base
	DateDue      string                      `json:"date_due,omitempty"`
	PaymentTerms string                      `json:"payment_terms,omitempty"`
	Payments     []model.Payment             `json:"payments,omitempty"`
	Furs         *model.FiscalizationOptions `json:"furs,omitempty"`
	Fina         *model.FiscalizationOptions `json:"fina,omitempty"`
	Eslog        *model.EslogOptions         `json:"eslog,omitempty"`
}

func (InvoicePayload) Kind() model.DocumentKind { return model.KindInvoice }

// CreditNotePayload is the body of POST/PATCH /credit-notes
type CreditNotePayload struct {
	Base
	DateDue      string                      `json:"date_due,omitempty"`
	PaymentTerms string                      `json:"payment_terms,omitempty"`
	Payments     []model.Payment             `json:"payments,omitempty"`
	Furs         *model.FiscalizationOptions `json:"furs,omitempty"`
	Fina         *model.FiscalizationOptions `json:"fina,omitempty"`
	Eslog        *model.EslogOptions         `json:"eslog,omitempty"`
}

func (CreditNotePayload) Kind() model.DocumentKind { return model.KindCreditNote }

// AdvanceInvoicePayload is the body of POST/PATCH /advance-invoices
type AdvanceInvoicePayload struct {
	Base
	DateDue  string                      `json:"date_due,omitempty"`
	Payments []model.Payment             `json:"payments,omitempty"`
	Furs     *model.FiscalizationOptions `json:"furs,omitempty"`
	Fina     *model.FiscalizationOptions `json:"fina,omitempty"`
	Eslog    *model.EslogOptions         `json:"eslog,omitempty"`
}

func (AdvanceInvoicePayload) Kind() model.DocumentKind { return model.KindAdvanceInvoice }

// DeliveryNotePayload is the body of POST/PATCH /delivery-notes.
// Delivery notes carry no payment or fiscalization data.
type DeliveryNotePayload struct {
	Base
	HidePrices bool `json:"hide_prices"`
}

func (DeliveryNotePayload) Kind() model.DocumentKind { return model.KindDeliveryNote }

// EstimatePayload is the body of POST/PATCH /estimates
type EstimatePayload struct {
	Base
	DateValidTill string `json:"date_valid_till,omitempty"`
}

func (EstimatePayload) Kind() model.DocumentKind { return model.KindEstimate }
