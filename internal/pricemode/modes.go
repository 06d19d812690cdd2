// Package pricemode tracks, per line item, whether the entered price is
// gross (tax-inclusive) or net. The map lives outside the validated form
// model and is only read when building a payload or a preview.
package pricemode

import (
	"sort"

	"github.com/rezonia/invoice-submit/internal/model"
)

// Modes maps a line item index to true when its price is gross
type Modes map[int]bool

// SeedFromItems marks every item that carries a gross price and no net price
func SeedFromItems(items []model.LineItem) Modes {
	modes := make(Modes, len(items))
	for i, item := range items {
		if item.GrossPrice != nil && item.Price == nil {
			modes[i] = true
		}
	}
	return modes
}

// IsGross reports the mode of row i. Unknown rows are net.
func (m Modes) IsGross(i int) bool {
	return m[i]
}

// Set records the mode of row i
func (m Modes) Set(i int, gross bool) {
	if gross {
		m[i] = true
		return
	}
	delete(m, i)
}

// Remove drops row i and shifts the modes of the rows after it
func (m Modes) Remove(i int) {
	indices := make([]int, 0, len(m))
	for idx := range m {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	delete(m, i)
	for _, idx := range indices {
		if idx > i {
			gross := m[idx]
			delete(m, idx)
			if gross {
				m[idx-1] = true
			}
		}
	}
}

// Clone returns an independent copy
func (m Modes) Clone() Modes {
	out := make(Modes, len(m))
	for k, v := range m {
		if v {
			out[k] = v
		}
	}
	return out
}

// Apply returns copies of items where the entered amount sits in GrossPrice
// for gross rows and in Price for net rows. The other field is cleared.
func (m Modes) Apply(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, len(items))
	for i, item := range items {
		amount := item.Amount()
		item.Price = nil
		item.GrossPrice = nil
		if amount != nil {
			value := *amount
			if m.IsGross(i) {
				item.GrossPrice = &value
			} else {
				item.Price = &value
			}
		}
		out[i] = item
	}
	return out
}
