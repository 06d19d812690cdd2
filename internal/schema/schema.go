// Package schema performs the structural checks a document form must pass
// before it is normalized: required fields, positive quantities, known
// currency codes and the per-country tax count limit.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/currency"

	money "github.com/rezonia/invoice-submit/internal/decimal"
	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/rules"
)

// Checker validates documents against the form schema
type Checker struct {
	validate *validator.Validate
}

// NewChecker creates a checker with JSON field names in error paths
func NewChecker() *Checker {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Checker{validate: v}
}

// Check returns schema errors for doc. caps bounds the number of taxes per item.
func (c *Checker) Check(doc *model.Document, caps rules.Capabilities) []model.ValidationError {
	errs := []model.ValidationError{}
	if doc == nil {
		return append(errs, model.NewValidationError("document", "document is required"))
	}

	if err := c.validate.Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return append(errs, model.NewValidationError("document", err.Error()))
		}
		for _, fe := range verrs {
			errs = append(errs, model.NewValidationError(fieldPath(fe.Namespace()), message(fe)))
		}
	}

	if doc.CurrencyCode != "" {
		if _, err := currency.ParseISO(doc.CurrencyCode); err != nil {
			errs = append(errs, model.NewValidationError("currency_code",
				fmt.Sprintf("unknown currency %q", doc.CurrencyCode)))
		}
	}

	for i, item := range doc.Items {
		if item.Quantity != nil && !money.IsPositive(*item.Quantity) {
			errs = append(errs, model.NewValidationError(model.ItemField(i, "quantity"), "must be greater than 0"))
		}
		if caps.MaxTaxesPerItem > 0 && len(item.Taxes) > caps.MaxTaxesPerItem {
			errs = append(errs, model.NewValidationError(model.ItemField(i, "taxes"),
				fmt.Sprintf("at most %d taxes allowed per item", caps.MaxTaxesPerItem)))
		}
		for j, d := range item.Discounts {
			if d.Value.IsNegative() {
				errs = append(errs, model.NewValidationError(
					fmt.Sprintf("items.%d.discounts.%d.value", i, j), "must not be negative"))
			}
		}
	}

	return errs
}

// fieldPath turns "Document.items[0].name" into "items.0.name"
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	r := strings.NewReplacer("[", ".", "]", "")
	return r.Replace(namespace)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		return fmt.Sprintf("must be %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s entries", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
