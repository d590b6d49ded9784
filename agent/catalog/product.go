package catalog

import (
	"encoding/json"
	"strings"
)

// Product is an immutable catalog entry. Keys the struct does not name are kept in
// Attributes so lookups can still reach them.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category,omitempty"`
	Price       float64        `json:"price"`
	Currency    string         `json:"currency,omitempty"`
	Description string         `json:"description,omitempty"`
	Color       string         `json:"color,omitempty"`
	Sizes       []string       `json:"sizes,omitempty"`
	InStock     *bool          `json:"in_stock,omitempty"`
	Unit        string         `json:"unit,omitempty"`
	Attributes  map[string]any `json:"-"`
}

var productKeys = map[string]struct{}{
	"id": {}, "name": {}, "category": {}, "price": {}, "currency": {}, "description": {},
	"color": {}, "sizes": {}, "in_stock": {}, "unit": {},
}

func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var base plain
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range productKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		base.Attributes = all
	}
	*p = Product(base)
	return nil
}

// RequiresVariant reports whether a size must be chosen before the product can be carted.
func (p Product) RequiresVariant() bool {
	return len(p.Sizes) > 0
}

// MatchSize returns the catalog spelling of size, compared case-insensitively.
func (p Product) MatchSize(size string) (string, bool) {
	want := strings.ToUpper(strings.TrimSpace(size))
	for _, s := range p.Sizes {
		if strings.ToUpper(s) == want {
			return s, true
		}
	}
	return "", false
}

// Available defaults to true when the catalog does not say otherwise.
func (p Product) Available() bool {
	return p.InStock == nil || *p.InStock
}
