// Package rules resolves country-specific document rules and the capability
// set of an issuing entity.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/rezonia/invoice-submit/internal/model"
)

//go:embed rules.yaml
var defaultRules []byte

// Feature names a country-specific capability
type Feature string

const (
	FeatureFurs              Feature = "furs"
	FeatureFina              Feature = "fina"
	FeatureEslog             Feature = "eslog"
	FeatureTaxClauseDefaults Feature = "tax_clause_defaults"
)

// Jurisdiction holds the rules of one country
type Jurisdiction struct {
	Code              string            `yaml:"-"`
	Name              string            `yaml:"name"`
	ReferenceCurrency string            `yaml:"reference_currency"`
	TaxNumberDigits   int               `yaml:"tax_number_digits"`
	LegalTaxRates     []decimal.Decimal `yaml:"-"`
	MaxTaxesPerItem   int               `yaml:"max_taxes_per_item"`
	Features          []Feature         `yaml:"features"`

	RawTaxRates []float64 `yaml:"legal_tax_rates"`
}

// Has reports whether the jurisdiction offers a feature
func (j *Jurisdiction) Has(f Feature) bool {
	return j != nil && slices.Contains(j.Features, f)
}

// IsLegalRate reports whether rate belongs to the fixed set of legal tax rates
func (j *Jurisdiction) IsLegalRate(rate decimal.Decimal) bool {
	for _, r := range j.LegalTaxRates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

// Table is the full set of known jurisdictions
type Table struct {
	Default struct {
		MaxTaxesPerItem int `yaml:"max_taxes_per_item"`
	} `yaml:"default"`
	Jurisdictions map[string]*Jurisdiction `yaml:"jurisdictions"`
}

// Parse decodes a YAML rule table
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("rules: decode: %w", err)
	}
	if t.Jurisdictions == nil {
		t.Jurisdictions = map[string]*Jurisdiction{}
	}
	for code, j := range t.Jurisdictions {
		if j == nil {
			return nil, fmt.Errorf("rules: jurisdiction %s is empty", code)
		}
		j.Code = strings.ToUpper(code)
		j.LegalTaxRates = make([]decimal.Decimal, 0, len(j.RawTaxRates))
		for _, raw := range j.RawTaxRates {
			if raw < 0 || raw > 100 {
				return nil, fmt.Errorf("rules: %s: tax rate %v out of range", code, raw)
			}
			j.LegalTaxRates = append(j.LegalTaxRates, decimal.NewFromFloat(raw))
		}
	}
	return &t, nil
}

// Default returns the embedded rule table
func Default() *Table {
	t, err := Parse(defaultRules)
	if err != nil {
		panic(err)
	}
	return t
}

// Load reads a rule table from path, or the embedded table when path is empty
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: read %s: %w", path, err)
	}
	return Parse(data)
}

// Jurisdiction returns the rules for a country code, or nil if unknown
func (t *Table) Jurisdiction(code string) *Jurisdiction {
	return t.Jurisdictions[strings.ToUpper(strings.TrimSpace(code))]
}

// Codes returns the known country codes in sorted order
func (t *Table) Codes() []string {
	codes := make([]string, 0, len(t.Jurisdictions))
	for code := range t.Jurisdictions {
		codes = append(codes, code)
	}
	slices.Sort(codes)
	return codes
}

// Capabilities is the resolved feature set of one entity
type Capabilities struct {
	Jurisdiction      *Jurisdiction `json:"-"`
	CountryCode       string        `json:"country_code"`
	Furs              bool          `json:"furs"`
	Fina              bool          `json:"fina"`
	Eslog             bool          `json:"eslog"`
	EslogValidation   bool          `json:"eslog_validation"`
	TaxClauseDefaults bool          `json:"tax_clause_defaults"`
	MaxTaxesPerItem   int           `json:"max_taxes_per_item"`
}

// Resolve computes the capabilities of an entity. A nil entity has none.
func (t *Table) Resolve(entity *model.Entity) Capabilities {
	caps := Capabilities{MaxTaxesPerItem: t.Default.MaxTaxesPerItem}
	if entity == nil {
		return caps
	}
	caps.CountryCode = strings.ToUpper(entity.CountryCode)

	j := t.Jurisdiction(entity.CountryCode)
	if j == nil {
		return caps
	}
	caps.Jurisdiction = j
	if j.MaxTaxesPerItem > 0 {
		caps.MaxTaxesPerItem = j.MaxTaxesPerItem
	}
	caps.Furs = j.Has(FeatureFurs) && entity.Settings.Furs.Enabled
	caps.Fina = j.Has(FeatureFina) && entity.Settings.Fina.Enabled
	caps.Eslog = j.Has(FeatureEslog) && entity.Settings.Eslog.Enabled
	caps.EslogValidation = caps.Eslog && entity.Settings.Eslog.ValidationEnabled
	caps.TaxClauseDefaults = j.Has(FeatureTaxClauseDefaults)
	return caps
}

// Fiscalization reports whether any fiscalization integration is active
func (c Capabilities) Fiscalization() bool {
	return c.Furs || c.Fina
}
