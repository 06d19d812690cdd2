package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/rules"
)

func TestDefault_Slovenia(t *testing.T) {
	table := rules.Default()
	si := table.Jurisdiction("si")
	require.NotNil(t, si)

	assert.Equal(t, "SI", si.Code)
	assert.Equal(t, "EUR", si.ReferenceCurrency)
	assert.Equal(t, 8, si.TaxNumberDigits)
	assert.True(t, si.Has(rules.FeatureFurs))
	assert.True(t, si.Has(rules.FeatureEslog))
	assert.False(t, si.Has(rules.FeatureFina))
}

func TestJurisdiction_IsLegalRate(t *testing.T) {
	si := rules.Default().Jurisdiction("SI")

	tests := []struct {
		rate  string
		legal bool
	}{
		{"22", true},
		{"9.5", true},
		{"9.50", true},
		{"5", true},
		{"0", true},
		{"20", false},
		{"8.5", false},
	}

	for _, tt := range tests {
		t.Run(tt.rate, func(t *testing.T) {
			assert.Equal(t, tt.legal, si.IsLegalRate(decimal.RequireFromString(tt.rate)))
		})
	}
}

func TestResolve(t *testing.T) {
	table := rules.Default()

	entity := &model.Entity{
		CountryCode: "SI",
		Settings: model.EntitySettings{
			Furs:  model.FursSettings{Enabled: true},
			Eslog: model.EslogSettings{Enabled: true, ValidationEnabled: true},
		},
	}

	caps := table.Resolve(entity)
	assert.True(t, caps.Furs)
	assert.False(t, caps.Fina)
	assert.True(t, caps.Eslog)
	assert.True(t, caps.EslogValidation)
	assert.True(t, caps.TaxClauseDefaults)
	assert.True(t, caps.Fiscalization())
	assert.Equal(t, 1, caps.MaxTaxesPerItem)
	assert.Equal(t, "SI", caps.CountryCode)
}

func TestResolve_SettingWithoutFeature(t *testing.T) {
	// FURS switched on for a Croatian entity has no effect
	entity := &model.Entity{
		CountryCode: "HR",
		Settings: model.EntitySettings{
			Furs: model.FursSettings{Enabled: true},
			Fina: model.FinaSettings{Enabled: true},
		},
	}

	caps := rules.Default().Resolve(entity)
	assert.False(t, caps.Furs)
	assert.True(t, caps.Fina)
	assert.False(t, caps.Eslog)
}

func TestResolve_ValidationNeedsEslog(t *testing.T) {
	entity := &model.Entity{
		CountryCode: "SI",
		Settings: model.EntitySettings{
			Eslog: model.EslogSettings{Enabled: false, ValidationEnabled: true},
		},
	}

	caps := rules.Default().Resolve(entity)
	assert.False(t, caps.EslogValidation)
}

func TestResolve_UnknownCountry(t *testing.T) {
	caps := rules.Default().Resolve(&model.Entity{CountryCode: "US"})
	assert.Nil(t, caps.Jurisdiction)
	assert.False(t, caps.Fiscalization())
	assert.Equal(t, 4, caps.MaxTaxesPerItem)

	caps = rules.Default().Resolve(nil)
	assert.Equal(t, "", caps.CountryCode)
}

func TestParse_InvalidRate(t *testing.T) {
	_, err := rules.Parse([]byte("jurisdictions:\n  XX:\n    legal_tax_rates: [120]\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := rules.Parse([]byte("jurisdictions: [unterminated"))
	require.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	data := []byte(`jurisdictions:
  IT:
    name: Italy
    reference_currency: EUR
    legal_tax_rates: [22, 10, 4]
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	table, err := rules.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"IT"}, table.Codes())
	assert.True(t, table.Jurisdiction("IT").IsLegalRate(decimal.NewFromInt(4)))
}

func TestLoad_Missing(t *testing.T) {
	_, err := rules.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestCodes(t *testing.T) {
	codes := rules.Default().Codes()
	assert.Equal(t, []string{"AT", "DE", "HR", "SI"}, codes)
}
