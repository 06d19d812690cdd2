package server

import (
	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/pricemode"
	"github.com/rezonia/invoice-submit/internal/rules"
	"github.com/rezonia/invoice-submit/internal/submission"
	"github.com/rezonia/invoice-submit/internal/table"
)

// ValidationResponse is the response for the validate endpoint
type ValidationResponse struct {
	Valid          bool                    `json:"valid"`
	Capabilities   rules.Capabilities      `json:"capabilities"`
	EntityErrors   []model.ValidationError `json:"entity_errors"`
	DocumentErrors []model.ValidationError `json:"document_errors"`
}

// PrepareResponse is the response for the prepare endpoint. Payload is the
// request body to send to the document API.
type PrepareResponse struct {
	Kind           model.DocumentKind      `json:"kind"`
	Payload        submission.Payload      `json:"payload,omitempty"`
	Capabilities   rules.Capabilities      `json:"capabilities"`
	EntityErrors   []model.ValidationError `json:"entity_errors,omitempty"`
	DocumentErrors []model.ValidationError `json:"document_errors,omitempty"`
	Warnings       []string                `json:"warnings,omitempty"`
}

// PreviewRequest is the body of the preview endpoint
type PreviewRequest struct {
	Items      []model.LineItem `json:"items"`
	PriceModes pricemode.Modes  `json:"price_modes,omitempty"`
}

// TableQueryRequest is the body of the table query endpoint
type TableQueryRequest struct {
	Params table.Params       `json:"params"`
	Filter *table.FilterState `json:"filter,omitempty"`
	// Today overrides the current date of the overdue filter, YYYY-MM-DD
	Today string `json:"today,omitempty"`
}

// TableQueryResponse carries the compiled query in both encodings
type TableQueryResponse struct {
	Params    table.Params `json:"params"`
	Query     string       `json:"query"`
	URLParams string       `json:"url_params"`
	APIParams string       `json:"api_params"`
}

// JurisdictionInfo describes one jurisdiction of the rule table
type JurisdictionInfo struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	ReferenceCurrency string          `json:"reference_currency,omitempty"`
	TaxNumberDigits   int             `json:"tax_number_digits,omitempty"`
	LegalTaxRates     []string        `json:"legal_tax_rates,omitempty"`
	MaxTaxesPerItem   int             `json:"max_taxes_per_item,omitempty"`
	Features          []rules.Feature `json:"features,omitempty"`
}

// RulesResponse is the response for the rules endpoint
type RulesResponse struct {
	Jurisdictions []JurisdictionInfo `json:"jurisdictions"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error    string   `json:"error"`
	Details  string   `json:"details,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func jurisdictionInfo(j *rules.Jurisdiction) JurisdictionInfo {
	rates := make([]string, len(j.LegalTaxRates))
	for i, r := range j.LegalTaxRates {
		rates[i] = r.String()
	}
	return JurisdictionInfo{
		Code:              j.Code,
		Name:              j.Name,
		ReferenceCurrency: j.ReferenceCurrency,
		TaxNumberDigits:   j.TaxNumberDigits,
		LegalTaxRates:     rates,
		MaxTaxesPerItem:   j.MaxTaxesPerItem,
		Features:          j.Features,
	}
}
