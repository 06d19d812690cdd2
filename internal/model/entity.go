package model

// Entity is the issuing tenant whose settings drive compliance and fiscalization
type Entity struct {
	ID           string         `json:"id,omitempty"`
	Name         string         `json:"name"`
	Address      string         `json:"address,omitempty"`
	Address2     string         `json:"address_2,omitempty"`
	PostCode     string         `json:"post_code,omitempty"`
	City         string         `json:"city,omitempty"`
	CountryCode  string         `json:"country_code,omitempty"`
	TaxNumber    string         `json:"tax_number,omitempty"`
	CurrencyCode string         `json:"currency_code,omitempty"`
	Settings     EntitySettings `json:"settings"`
}

// EntitySettings holds the per-category integration settings of an entity
type EntitySettings struct {
	Furs  FursSettings  `json:"furs"`
	Fina  FinaSettings  `json:"fina"`
	Eslog EslogSettings `json:"eslog"`
}

// FursSettings configures Slovenian fiscalization
type FursSettings struct {
	Enabled bool `json:"enabled"`
}

// FinaSettings configures Croatian fiscalization
type FinaSettings struct {
	Enabled bool `json:"enabled"`
}

// EslogSettings configures Slovenian e-invoicing
type EslogSettings struct {
	Enabled           bool `json:"enabled"`
	ValidationEnabled bool `json:"validation_enabled"`
}
