// Package eslog checks an issuing entity and a document against the
// structural requirements of the Slovenian e-SLOG e-invoice standard.
package eslog

import (
	"fmt"
	"strings"

	money "github.com/rezonia/invoice-submit/internal/decimal"
	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/rules"
)

// CountryCode is the jurisdiction e-SLOG applies to
const CountryCode = "SI"

// Validator runs the compliance checks of one jurisdiction
type Validator struct {
	jurisdiction *rules.Jurisdiction
}

// NewValidator creates a validator for j
func NewValidator(j *rules.Jurisdiction) *Validator {
	return &Validator{jurisdiction: j}
}

var defaultValidator = NewValidator(rules.Default().Jurisdiction(CountryCode))

// Validate checks doc and entity against the e-SLOG rules
func Validate(doc *model.Document, entity *model.Entity) []model.ValidationError {
	return defaultValidator.Validate(doc, entity)
}

// Applies reports whether compliance checks must run before a non-draft
// submission of this entity
func Applies(entity *model.Entity, caps rules.Capabilities) bool {
	return entity != nil &&
		strings.EqualFold(entity.CountryCode, CountryCode) &&
		caps.EslogValidation
}

// Validate returns every compliance failure, or an empty list. It never
// fails: a nil entity or document yields no errors.
func (v *Validator) Validate(doc *model.Document, entity *model.Entity) []model.ValidationError {
	errs := []model.ValidationError{}
	if entity == nil || doc == nil || v.jurisdiction == nil {
		return errs
	}

	errs = v.checkEntity(errs, entity)
	errs = v.checkDocument(errs, doc, entity)
	errs = checkCustomer(errs, doc.Customer)
	errs = v.checkItems(errs, doc.Items)
	return errs
}

func (v *Validator) checkEntity(errs []model.ValidationError, e *model.Entity) []model.ValidationError {
	j := v.jurisdiction

	if blank(e.Name) {
		errs = append(errs, entityError("name", "Company name is required for e-SLOG"))
	}
	if blank(e.Address) {
		errs = append(errs, entityError("address", "Company address is required for e-SLOG"))
	}
	if blank(e.PostCode) {
		errs = append(errs, entityError("post_code", "Company post code is required for e-SLOG"))
	}
	if blank(e.City) {
		errs = append(errs, entityError("city", "Company city is required for e-SLOG"))
	}
	if !strings.EqualFold(strings.TrimSpace(e.CountryCode), j.Code) {
		errs = append(errs, entityError("country_code",
			fmt.Sprintf("Company must be registered in %s (country code %s) for e-SLOG", j.Name, j.Code)))
	}

	if blank(e.TaxNumber) {
		errs = append(errs, entityError("tax_number", "Company tax number is required for e-SLOG"))
	} else if j.TaxNumberDigits > 0 {
		if digits := digitsOnly(e.TaxNumber); len(digits) != j.TaxNumberDigits {
			errs = append(errs, entityError("tax_number",
				fmt.Sprintf("Company tax number must be exactly %d digits long (got %d)", j.TaxNumberDigits, len(digits))))
		}
	}

	return errs
}

func (v *Validator) checkDocument(errs []model.ValidationError, doc *model.Document, e *model.Entity) []model.ValidationError {
	if blank(doc.Number) {
		errs = append(errs, model.NewValidationError("number", "Document number is required for e-SLOG"))
	}
	if blank(doc.Date) {
		errs = append(errs, model.NewValidationError("date", "Document date is required for e-SLOG"))
	}

	if blank(doc.CurrencyCode) {
		errs = append(errs, model.NewValidationError("currency_code", "Currency is required for e-SLOG"))
		return errs
	}

	// Converted totals are computed by the backend only from the reference currency
	ref := v.jurisdiction.ReferenceCurrency
	if ref != "" && !blank(e.CurrencyCode) && !strings.EqualFold(doc.CurrencyCode, e.CurrencyCode) && !strings.EqualFold(e.CurrencyCode, ref) {
		errs = append(errs, model.NewValidationError("currency_code",
			fmt.Sprintf("Documents in a foreign currency require the company currency to be %s for e-SLOG", ref)))
	}

	return errs
}

func checkCustomer(errs []model.ValidationError, c *model.CustomerData) []model.ValidationError {
	if !c.HasAny() {
		return errs
	}
	if c.Name == nil || blank(*c.Name) {
		errs = append(errs, model.NewValidationError("customer.name", "Customer name is required for e-SLOG"))
	}
	return errs
}

func (v *Validator) checkItems(errs []model.ValidationError, items []model.LineItem) []model.ValidationError {
	if len(items) == 0 {
		return append(errs, model.NewValidationError("items", "At least one item is required for e-SLOG"))
	}

	for i, item := range items {
		if blank(item.Name) {
			errs = append(errs, model.NewValidationError(model.ItemField(i, "name"), "Item name is required for e-SLOG"))
		}
		if item.Quantity == nil || !money.IsPositive(*item.Quantity) {
			errs = append(errs, model.NewValidationError(model.ItemField(i, "quantity"), "Item quantity must be greater than 0 for e-SLOG"))
		}
		if item.Amount() == nil {
			errs = append(errs, model.NewValidationError(model.ItemField(i, "price"), "Item price is required for e-SLOG"))
		}
		if !v.legalRates(item.Taxes) {
			errs = append(errs, model.NewValidationError(model.ItemField(i, "taxes"),
				fmt.Sprintf("Item tax rate must be one of %s for e-SLOG", v.rateList())))
		}
	}

	return errs
}

func (v *Validator) legalRates(taxes []model.TaxRef) bool {
	for _, tax := range taxes {
		if tax.Rate != nil && !v.jurisdiction.IsLegalRate(*tax.Rate) {
			return false
		}
	}
	return true
}

func (v *Validator) rateList() string {
	rates := make([]string, len(v.jurisdiction.LegalTaxRates))
	for i, r := range v.jurisdiction.LegalTaxRates {
		rates[i] = r.String() + "%"
	}
	return strings.Join(rates, ", ")
}

func entityError(field, message string) model.ValidationError {
	return model.NewValidationError(model.EntityFieldPrefix+field, message)
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
