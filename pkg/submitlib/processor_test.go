package submitlib_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-submit/pkg/submitlib"
)

func request(taxNumber string) *submitlib.Request {
	qty := decimal.NewFromInt(1)
	price := decimal.NewFromInt(100)
	rate := decimal.NewFromInt(22)
	return &submitlib.Request{
		Kind: submitlib.KindInvoice,
		Document: &submitlib.Document{
			Number:       "2024-001",
			Date:         "2024-01-15",
			CurrencyCode: "EUR",
			Items: []submitlib.LineItem{{
				Name:     "Widget",
				Quantity: &qty,
				Price:    &price,
				Taxes:    []submitlib.TaxRef{{Rate: &rate}},
			}},
		},
		Entity: &submitlib.Entity{
			ID:          "ent_1",
			Name:        "Acme d.o.o.",
			Address:     "Dunajska 1",
			PostCode:    "1000",
			City:        "Ljubljana",
			CountryCode: "SI",
			TaxNumber:   taxNumber,
		},
	}
}

func TestNewProcessor(t *testing.T) {
	proc, err := submitlib.NewProcessor(submitlib.Options{})
	require.NoError(t, err)
	require.NotNil(t, proc)
}

func TestNewProcessor_RulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jurisdictions:\n  SI:\n    legal_tax_rates: [150]\n"), 0o600))

	_, err := submitlib.NewProcessor(submitlib.Options{RulesFile: path})
	require.Error(t, err)

	_, err = submitlib.NewProcessor(submitlib.Options{RulesFile: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
}

func TestNewDefaultProcessor(t *testing.T) {
	proc := submitlib.NewDefaultProcessor()
	require.NotNil(t, proc)
}

func TestProcessorPrepare(t *testing.T) {
	proc := submitlib.NewDefaultProcessor()

	result, err := proc.Prepare(context.Background(), request("12345678"))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, submitlib.KindInvoice, result.Kind)
	assert.Equal(t, submitlib.KindInvoice, result.Payload.Kind())
}

func TestProcessorPrepare_ValidationErrors(t *testing.T) {
	proc := submitlib.NewDefaultProcessor()
	req := request("123")
	req.Entity.Settings.Eslog.Enabled = true
	req.Entity.Settings.Eslog.ValidationEnabled = true

	result, err := proc.Prepare(context.Background(), req)
	require.Error(t, err)
	assert.Nil(t, result)

	var verrs submitlib.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	entity, document := submitlib.SplitErrors(verrs)
	require.Len(t, entity, 1)
	assert.Equal(t, "entity.tax_number", entity[0].Field)
	assert.Empty(t, document)
}

func TestProcessorValidate(t *testing.T) {
	proc := submitlib.NewDefaultProcessor()

	errs, err := proc.Validate(context.Background(), request("12345678"))
	require.NoError(t, err)
	assert.Empty(t, errs)

	_, err = proc.Validate(context.Background(), &submitlib.Request{Kind: "receipts"})
	assert.Error(t, err)
}

func TestProcessorPrepareBatch(t *testing.T) {
	proc := submitlib.NewDefaultProcessor()

	reqs := []*submitlib.Request{request("12345678"), request("87654321"), request("11112222")}
	results, err := proc.PrepareBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		require.NotNil(t, r)
		assert.NotNil(t, r.Payload)
	}
}

func TestProcessorPrepareBatch_PartialFailure(t *testing.T) {
	proc := submitlib.NewDefaultProcessor()

	bad := request("12345678")
	bad.Document = nil
	results, err := proc.PrepareBatch(context.Background(), []*submitlib.Request{request("12345678"), bad})
	require.Error(t, err)
	require.Len(t, results, 2)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
}

func TestProcessorPreview(t *testing.T) {
	proc := submitlib.NewDefaultProcessor()
	req := request("12345678")

	totals := proc.Preview(req.Document.Items, nil)
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(122)))
}

func TestReExports(t *testing.T) {
	modes := submitlib.SeedPriceModes(nil)
	assert.NotNil(t, modes)
	assert.Equal(t, "date", submitlib.NextSortOrder("", "date"))
	assert.Empty(t, submitlib.ValidateEslog(&submitlib.Document{}, nil))
}
