package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The document API expects JSON numbers, not quoted decimals
	decimal.MarshalJSONWithoutQuotes = true
}

// DocumentKind identifies the API resource a document is submitted to
type DocumentKind string

const (
	KindInvoice        DocumentKind = "invoices"
	KindCreditNote     DocumentKind = "credit-notes"
	KindDeliveryNote   DocumentKind = "delivery-notes"
	KindAdvanceInvoice DocumentKind = "advance-invoices"
	KindEstimate       DocumentKind = "estimates"
)

// Kinds lists every supported document kind
var Kinds = []DocumentKind{
	KindInvoice,
	KindCreditNote,
	KindDeliveryNote,
	KindAdvanceInvoice,
	KindEstimate,
}

// ParseDocumentKind returns the kind for s and whether it is known
func ParseDocumentKind(s string) (DocumentKind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// HasPayments reports whether documents of this kind carry payment data
func (k DocumentKind) HasPayments() bool {
	return k == KindInvoice || k == KindCreditNote || k == KindAdvanceInvoice
}

// IsFiscal reports whether documents of this kind go through fiscalization
func (k DocumentKind) IsFiscal() bool {
	return k == KindInvoice || k == KindCreditNote || k == KindAdvanceInvoice
}

// Document is the transient form state of a document being created or edited
type Document struct {
	Number        string        `json:"number,omitempty"`
	Date          string        `json:"date,omitempty"`
	DateDue       string        `json:"date_due,omitempty"`
	DateValidTill string        `json:"date_valid_till,omitempty"`
	CurrencyCode  string        `json:"currency_code,omitempty" validate:"omitempty,len=3"`
	CustomerID    *string       `json:"customer_id,omitempty"`
	Customer      *CustomerData `json:"customer,omitempty"`
	Items         []LineItem    `json:"items" validate:"dive"`
	Note          string        `json:"note,omitempty"`
	PaymentTerms  string        `json:"payment_terms,omitempty"`
	Reference     string        `json:"reference,omitempty"`
}

// LineItem is a single document row. Price holds the amount regardless of
// price mode; GrossPrice is only set on items seeded from an existing document.
type LineItem struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty" validate:"required"`
	Unit        string           `json:"unit,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	GrossPrice  *decimal.Decimal `json:"gross_price,omitempty"`
	Taxes       []TaxRef         `json:"taxes,omitempty"`
	Discounts   []Discount       `json:"discounts,omitempty" validate:"max=1,dive"`
}

// Amount returns the price the user entered, whichever field carries it
func (i LineItem) Amount() *decimal.Decimal {
	if i.Price != nil {
		return i.Price
	}
	return i.GrossPrice
}

// TaxRef references a tax by id. Rate is informational and used for compliance checks.
type TaxRef struct {
	TaxID string           `json:"tax_id,omitempty"`
	Rate  *decimal.Decimal `json:"rate,omitempty"`
}

// DiscountType distinguishes percentage and fixed-amount discounts
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

// Discount applied to a line item
type Discount struct {
	Value decimal.Decimal `json:"value"`
	Type  DiscountType    `json:"type" validate:"oneof=percent amount"`
}

// CustomerData is an inline customer snapshot. Nil fields are "not set".
type CustomerData struct {
	Name      *string `json:"name,omitempty"`
	Address   *string `json:"address,omitempty"`
	Address2  *string `json:"address_2,omitempty"`
	PostCode  *string `json:"post_code,omitempty"`
	City      *string `json:"city,omitempty"`
	State     *string `json:"state,omitempty"`
	Country   *string `json:"country,omitempty"`
	TaxNumber *string `json:"tax_number,omitempty"`
}

func (c *CustomerData) fields() []*string {
	return []*string{c.Name, c.Address, c.Address2, c.PostCode, c.City, c.State, c.Country, c.TaxNumber}
}

// HasAny reports whether any field carries a non-blank value
func (c *CustomerData) HasAny() bool {
	if c == nil {
		return false
	}
	for _, f := range c.fields() {
		if f != nil && strings.TrimSpace(*f) != "" {
			return true
		}
	}
	return false
}

// Normalized returns a copy where Name is never nil and every other blank
// field is nil.
func (c *CustomerData) Normalized() CustomerData {
	if c == nil {
		return CustomerData{Name: String("")}
	}
	name := ""
	if c.Name != nil {
		name = *c.Name
	}
	return CustomerData{
		Name:      String(name),
		Address:   nonEmpty(c.Address),
		Address2:  nonEmpty(c.Address2),
		PostCode:  nonEmpty(c.PostCode),
		City:      nonEmpty(c.City),
		State:     nonEmpty(c.State),
		Country:   nonEmpty(c.Country),
		TaxNumber: nonEmpty(c.TaxNumber),
	}
}

// Equal compares two snapshots after normalization
func (c *CustomerData) Equal(other *CustomerData) bool {
	a, b := c.Normalized(), other.Normalized()
	af, bf := a.fields(), b.fields()
	for i := range af {
		if deref(af[i]) != deref(bf[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (c *CustomerData) Clone() *CustomerData {
	if c == nil {
		return nil
	}
	return &CustomerData{
		Name:      clonePtr(c.Name),
		Address:   clonePtr(c.Address),
		Address2:  clonePtr(c.Address2),
		PostCode:  clonePtr(c.PostCode),
		City:      clonePtr(c.City),
		State:     clonePtr(c.State),
		Country:   clonePtr(c.Country),
		TaxNumber: clonePtr(c.TaxNumber),
	}
}

// PaymentType is how a document was paid when marked paid on creation
type PaymentType string

const (
	PaymentCash         PaymentType = "cash"
	PaymentBankTransfer PaymentType = "bank_transfer"
	PaymentCard         PaymentType = "card"
	PaymentCheck        PaymentType = "check"
	PaymentOther        PaymentType = "other"
)

// Valid reports whether t is one of the known payment types
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentCash, PaymentBankTransfer, PaymentCard, PaymentCheck, PaymentOther:
		return true
	}
	return false
}

// Payment marks a document paid on creation
type Payment struct {
	PaymentType PaymentType `json:"payment_type"`
}

// FiscalizationOptions is either an explicit skip or a premise/device pair
type FiscalizationOptions struct {
	Skip                 bool   `json:"skip,omitempty"`
	BusinessPremiseName  string `json:"business_premise_name,omitempty"`
	ElectronicDeviceName string `json:"electronic_device_name,omitempty"`
}

// EslogOptions controls backend e-SLOG validation
type EslogOptions struct {
	ValidationEnabled bool `json:"validation_enabled"`
}

// String returns a pointer to s
func String(s string) *string {
	return &s
}

// Decimal returns a pointer to d
func Decimal(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return String(*s)
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	return String(*s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
