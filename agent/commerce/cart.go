// Package commerce implements the cart and checkout rules shared by the e-commerce,
// retail and grocery personas.
package commerce

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrItemNotInCart    = errors.New("item not in cart")
	ErrVariantRequired  = errors.New("size is required")
	ErrInvalidVariant   = errors.New("size is not available")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrMixedCurrency    = errors.New("cart mixes currencies")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrBuyerNameMissing = errors.New("buyer name is missing")
	ErrAddressMissing   = errors.New("delivery address is missing")
)

// VariantError names the sizes a product can be ordered in.
type VariantError struct {
	Product catalog.Product
	Size    string
	Err     error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("%s: %s (choose from %s)", e.Product.Name, e.Err, strings.Join(e.Product.Sizes, ", "))
}

func (e *VariantError) Unwrap() error { return e.Err }

type LineItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Currency  string  `json:"currency,omitempty"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Unit      string  `json:"unit,omitempty"`
}

func (l LineItem) Total() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Cart is ordered by insertion; positions matter for "the first one" style references.
// No line is ever kept with a quantity below 1.
type Cart struct {
	Items []LineItem `json:"items"`
}

func (c *Cart) Empty() bool { return len(c.Items) == 0 }

func (c *Cart) Clear() { c.Items = nil }

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Add merges into an existing line with the same product and size, or appends one.
// Sized products need a size that matches one of the catalog sizes.
func (c *Cart) Add(p catalog.Product, quantity int, size string) (LineItem, error) {
	if quantity < 1 {
		return LineItem{}, ErrInvalidQuantity
	}

	size = strings.TrimSpace(size)
	if p.RequiresVariant() {
		if size == "" {
			return LineItem{}, &VariantError{Product: p, Err: ErrVariantRequired}
		}
		matched, ok := p.MatchSize(size)
		if !ok {
			return LineItem{}, &VariantError{Product: p, Size: size, Err: ErrInvalidVariant}
		}
		size = matched
	} else {
		size = ""
	}

	for i := range c.Items {
		if c.Items[i].ProductID == p.ID && c.Items[i].Size == size {
			c.Items[i].Quantity += quantity
			return c.Items[i], nil
		}
	}

	line := LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Currency:  p.Currency,
		Quantity:  quantity,
		Size:      size,
		Color:     p.Color,
		Unit:      p.Unit,
	}
	c.Items = append(c.Items, line)
	return line, nil
}

// Find returns the first line whose name contains ref, case-insensitively.
func (c *Cart) Find(ref string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(ref))
	if want == "" {
		return -1, false
	}
	for i, item := range c.Items {
		if strings.Contains(strings.ToLower(item.Name), want) {
			return i, true
		}
	}
	return -1, false
}

func (c *Cart) Remove(ref string) (LineItem, error) {
	i, ok := c.Find(ref)
	if !ok {
		return LineItem{}, fmt.Errorf("%w: %s", ErrItemNotInCart, ref)
	}
	removed := c.Items[i]
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return removed, nil
}

// UpdateQuantity sets the quantity of the matched line; quantity <= 0 removes it.
func (c *Cart) UpdateQuantity(ref string, quantity int) (line LineItem, removed bool, err error) {
	i, ok := c.Find(ref)
	if !ok {
		return LineItem{}, false, fmt.Errorf("%w: %s", ErrItemNotInCart, ref)
	}
	if quantity <= 0 {
		line = c.Items[i]
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return line, true, nil
	}
	c.Items[i].Quantity = quantity
	return c.Items[i], false, nil
}

// Total sums the lines. Lines without a currency are taken to be in fallback.
func (c *Cart) Total(fallback string) (float64, string, error) {
	currency := ""
	total := 0.0
	for _, item := range c.Items {
		cur := item.Currency
		if cur == "" {
			cur = fallback
		}
		if currency == "" {
			currency = cur
		} else if cur != currency {
			return 0, "", fmt.Errorf("%w: %s and %s", ErrMixedCurrency, currency, cur)
		}
		total += item.Total()
	}
	if currency == "" {
		currency = fallback
	}
	return RoundMoney(total), currency, nil
}

// RoundMoney rounds to two decimals so float sums print cleanly.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount drops a trailing ".00".
func FormatAmount(v float64) string {
	v = RoundMoney(v)
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}
