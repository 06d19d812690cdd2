// Package preview computes the on-screen totals of a document being edited.
// The backend remains authoritative; rates come from the tax refs on each row.
package preview

import (
	"sort"

	"github.com/shopspring/decimal"

	money "github.com/rezonia/invoice-submit/internal/decimal"
	"github.com/rezonia/invoice-submit/internal/model"
	"github.com/rezonia/invoice-submit/internal/pricemode"
)

// Line is the computed preview of one row
type Line struct {
	Index        int             `json:"index"`
	Name         string          `json:"name"`
	Gross        bool            `json:"gross"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Net          decimal.Decimal `json:"net"`
	Tax          decimal.Decimal `json:"tax"`
	Total        decimal.Decimal `json:"total"`
	MissingPrice bool            `json:"missing_price,omitempty"`
}

// TaxSummary groups tax by rate
type TaxSummary struct {
	Rate   decimal.Decimal `json:"rate"`
	Base   decimal.Decimal `json:"base"`
	Amount decimal.Decimal `json:"amount"`
}

// Totals is the preview of a whole document
type Totals struct {
	Lines    []Line          `json:"lines"`
	Taxes    []TaxSummary    `json:"taxes"`
	Net      decimal.Decimal `json:"net"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Calculate computes line and document totals. Rows with a gross price are
// converted to net by dividing by 1 + the sum of their tax rates. Nil modes
// are seeded from the items, as the submission pipeline does.
func Calculate(items []model.LineItem, modes pricemode.Modes) Totals {
	if modes == nil {
		modes = pricemode.SeedFromItems(items)
	}
	totals := Totals{
		Lines:    make([]Line, 0, len(items)),
		Taxes:    []TaxSummary{},
		Net:      money.Zero,
		Discount: money.Zero,
		Tax:      money.Zero,
		Total:    money.Zero,
	}
	byRate := map[string]*TaxSummary{}

	for i, item := range modes.Apply(items) {
		line := calculateLine(i, item, modes.IsGross(i))
		totals.Lines = append(totals.Lines, line)

		totals.Net = totals.Net.Add(line.Net)
		totals.Discount = totals.Discount.Add(line.Discount)
		totals.Tax = totals.Tax.Add(line.Tax)
		totals.Total = totals.Total.Add(line.Total)

		for _, rate := range rates(item) {
			key := rate.String()
			s, ok := byRate[key]
			if !ok {
				s = &TaxSummary{Rate: rate, Base: money.Zero, Amount: money.Zero}
				byRate[key] = s
			}
			s.Base = s.Base.Add(line.Net)
			s.Amount = s.Amount.Add(money.CalculateTax(line.Net, rate))
		}
	}

	for _, s := range byRate {
		totals.Taxes = append(totals.Taxes, *s)
	}
	sort.Slice(totals.Taxes, func(a, b int) bool {
		return totals.Taxes[a].Rate.GreaterThan(totals.Taxes[b].Rate)
	})
	return totals
}

func calculateLine(index int, item model.LineItem, gross bool) Line {
	line := Line{
		Index:    index,
		Name:     item.Name,
		Gross:    gross,
		Quantity: money.Zero,
		TaxRate:  totalRate(item),
	}
	if item.Quantity != nil {
		line.Quantity = *item.Quantity
	}

	amount := item.Amount()
	if amount == nil {
		line.MissingPrice = true
		line.UnitPrice = money.Zero
	} else if gross {
		line.UnitPrice = money.NetFromGross(*amount, line.TaxRate)
	} else {
		line.UnitPrice = *amount
	}

	line.Subtotal = money.Mul(line.Quantity, line.UnitPrice)
	line.Discount = discount(line.Subtotal, item.Discounts)
	line.Net = line.Subtotal.Sub(line.Discount)

	line.Tax = money.Zero
	for _, rate := range rates(item) {
		line.Tax = line.Tax.Add(money.CalculateTax(line.Net, rate))
	}
	line.Total = money.CalculateLineTotal(line.Subtotal, line.Discount, line.Tax)
	return line
}

func discount(subtotal decimal.Decimal, discounts []model.Discount) decimal.Decimal {
	total := money.Zero
	for _, d := range discounts {
		switch d.Type {
		case model.DiscountPercent:
			total = total.Add(money.Percentage(subtotal, d.Value))
		case model.DiscountAmount:
			total = total.Add(money.RoundMoney(d.Value))
		}
	}
	// a discount never turns a line negative
	if total.GreaterThan(subtotal) && money.IsNonNegative(subtotal) {
		return subtotal
	}
	return total
}

func rates(item model.LineItem) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(item.Taxes))
	for _, t := range item.Taxes {
		if t.Rate != nil {
			out = append(out, *t.Rate)
		}
	}
	return out
}

func totalRate(item model.LineItem) decimal.Decimal {
	return money.Sum(rates(item))
}
