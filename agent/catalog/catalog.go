package catalog

import (
	"slices"
	"strings"
)

const (
	DefaultCurrency    = "INR"
	DefaultDeliveryFee = 29
)

type StoreInfo struct {
	Name         string   `json:"name,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	DeliveryFee  *float64 `json:"delivery_fee,omitempty"`
	DeliveryTime string   `json:"delivery_time,omitempty"`
}

// Catalog is a product document: {"products": [...], "recipes": {...}, "categories": [...], "store_info": {...}}.
type Catalog struct {
	Products   []Product `json:"products"`
	Categories []string  `json:"categories,omitempty"`
	Recipes    Recipes   `json:"recipes,omitempty"`
	StoreInfo  StoreInfo `json:"store_info"`
}

// Criteria fields are AND-combined; zero values impose no constraint.
type Criteria struct {
	Category   string
	MinPrice   float64
	MaxPrice   float64
	Color      string
	SearchTerm string
}

func Empty() *Catalog {
	return &Catalog{Products: []Product{}}
}

// Load reads a catalog document. See loadJSON for the fail-soft rules.
func Load(path string) (*Catalog, error) {
	return loadJSON(path, Empty)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (c *Catalog) Filter(criteria Criteria) []Product {
	if c == nil {
		return nil
	}
	category := strings.TrimSpace(criteria.Category)
	color := strings.TrimSpace(criteria.Color)
	term := strings.TrimSpace(criteria.SearchTerm)

	out := make([]Product, 0, len(c.Products))
	for _, p := range c.Products {
		if category != "" && !containsFold(p.Category, category) {
			continue
		}
		if criteria.MaxPrice > 0 && p.Price > criteria.MaxPrice {
			continue
		}
		if criteria.MinPrice > 0 && p.Price < criteria.MinPrice {
			continue
		}
		if color != "" && !containsFold(p.Color, color) {
			continue
		}
		if term != "" && !containsFold(p.Name, term) && !containsFold(p.Description, term) && !containsFold(p.Category, term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Search matches query against product names and categories.
func (c *Catalog) Search(query string) []Product {
	if c == nil {
		return nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	var out []Product
	for _, p := range c.Products {
		if containsFold(p.Name, query) || containsFold(p.Category, query) {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) FindByID(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	for _, p := range c.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// FindByName returns the first product, in catalog order, whose name contains text.
// It is first-match, not best-match.
func (c *Catalog) FindByName(text string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Product{}, false
	}
	for _, p := range c.Products {
		if containsFold(p.Name, text) {
			return p, true
		}
	}
	return Product{}, false
}

func (c *Catalog) Currency() string {
	if c == nil {
		return DefaultCurrency
	}
	if v := strings.TrimSpace(c.StoreInfo.Currency); v != "" {
		return v
	}
	for _, p := range c.Products {
		if p.Currency != "" {
			return p.Currency
		}
	}
	return DefaultCurrency
}

func (c *Catalog) DeliveryFee() float64 {
	if c == nil || c.StoreInfo.DeliveryFee == nil {
		return DefaultDeliveryFee
	}
	return *c.StoreInfo.DeliveryFee
}

// CategoryNames prefers the document's explicit list and falls back to product categories
// in first-seen order.
func (c *Catalog) CategoryNames() []string {
	if c == nil {
		return nil
	}
	if len(c.Categories) > 0 {
		return slices.Clone(c.Categories)
	}
	var out []string
	for _, p := range c.Products {
		if p.Category != "" && !slices.Contains(out, p.Category) {
			out = append(out, p.Category)
		}
	}
	return out
}
