package schema_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/rules"
	"github.com/rezonia/invoice-submit/internal/schema"
)

func dec(s string) *decimal.Decimal {
	return model.Decimal(decimal.RequireFromString(s))
}

func fields(errs []model.ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func TestCheck_Valid(t *testing.T) {
	doc := &model.Document{
		CurrencyCode: "EUR",
		Items: []model.LineItem{
			{Name: "Widget", Quantity: dec("2"), Price: dec("10"), Taxes: []model.TaxRef{{TaxID: "t1"}}},
		},
	}

	errs := schema.NewChecker().Check(doc, rules.Capabilities{MaxTaxesPerItem: 1})
	require.NotNil(t, errs)
	assert.Empty(t, errs)
}

func TestCheck_Nil(t *testing.T) {
	errs := schema.NewChecker().Check(nil, rules.Capabilities{})
	assert.Equal(t, []string{"document"}, fields(errs))
}

func TestCheck_RequiredItemFields(t *testing.T) {
	doc := &model.Document{
		Items: []model.LineItem{
			{Name: "ok", Quantity: dec("1")},
			{},
		},
	}

	errs := schema.NewChecker().Check(doc, rules.Capabilities{})
	assert.ElementsMatch(t, []string{"items.1.name", "items.1.quantity"}, fields(errs))
	for _, e := range errs {
		assert.Equal(t, "is required", e.Message)
	}
}

func TestCheck_Currency(t *testing.T) {
	tests := []struct {
		code   string
		fields []string
	}{
		{"EUR", nil},
		{"usd", nil},
		{"QQQ", []string{"currency_code"}},
		{"EURO", []string{"currency_code", "currency_code"}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			errs := schema.NewChecker().Check(&model.Document{CurrencyCode: tt.code}, rules.Capabilities{})
			if tt.fields == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.fields, fields(errs))
		})
	}
}

func TestCheck_Quantity(t *testing.T) {
	tests := []struct {
		quantity string
		invalid  bool
	}{
		{"0", true},
		{"-1", true},
		{"0.001", false},
		{"3", false},
	}

	for _, tt := range tests {
		t.Run(tt.quantity, func(t *testing.T) {
			doc := &model.Document{Items: []model.LineItem{{Name: "a", Quantity: dec(tt.quantity)}}}
			errs := schema.NewChecker().Check(doc, rules.Capabilities{})
			if tt.invalid {
				assert.Equal(t, []string{"items.0.quantity"}, fields(errs))
				return
			}
			assert.Empty(t, errs)
		})
	}
}

func TestCheck_MaxTaxes(t *testing.T) {
	doc := &model.Document{Items: []model.LineItem{{
		Name:     "a",
		Quantity: dec("1"),
		Taxes:    []model.TaxRef{{TaxID: "t1"}, {TaxID: "t2"}},
	}}}

	checker := schema.NewChecker()
	errs := checker.Check(doc, rules.Capabilities{MaxTaxesPerItem: 1})
	require.Equal(t, []string{"items.0.taxes"}, fields(errs))
	assert.Contains(t, errs[0].Message, "at most 1")

	assert.Empty(t, checker.Check(doc, rules.Capabilities{MaxTaxesPerItem: 4}))
}

func TestCheck_TooManyDiscounts(t *testing.T) {
	doc := &model.Document{Items: []model.LineItem{{
		Name:     "a",
		Quantity: dec("1"),
		Discounts: []model.Discount{
			{Value: decimal.NewFromInt(5), Type: model.DiscountPercent},
			{Value: decimal.NewFromInt(5), Type: model.DiscountAmount},
		},
	}}}

	errs := schema.NewChecker().Check(doc, rules.Capabilities{})
	require.Equal(t, []string{"items.0.discounts"}, fields(errs))
	assert.Contains(t, errs[0].Message, "at most 1")
}

func TestCheck_DiscountFields(t *testing.T) {
	doc := &model.Document{Items: []model.LineItem{{
		Name:      "a",
		Quantity:  dec("1"),
		Discounts: []model.Discount{{Value: decimal.NewFromInt(-5), Type: "bogus"}},
	}}}

	errs := schema.NewChecker().Check(doc, rules.Capabilities{})
	assert.Equal(t, []string{
		"items.0.discounts.0.type",
		"items.0.discounts.0.value",
	}, fields(errs))
}
