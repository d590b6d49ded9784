package commerce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
)

const StatusConfirmed = "CONFIRMED"

type Buyer struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

func NewBuyer(name, email string) Buyer {
	b := Buyer{Name: strings.TrimSpace(name)}
	if e := strings.TrimSpace(email); e != "" {
		b.Email = &e
	}
	return b
}

type OrderLine struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitAmount  float64 `json:"unit_amount"`
	Currency    string  `json:"currency"`
	Size        string  `json:"size,omitempty"`
	Color       string  `json:"color,omitempty"`
	LineTotal   float64 `json:"line_total"`
}

type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Order is the e-commerce and retail record, one element of ecommerce_orders.json.
type Order struct {
	ID        string      `json:"id"`
	Status    string      `json:"status"`
	CreatedAt string      `json:"created_at"`
	Buyer     Buyer       `json:"buyer"`
	LineItems []OrderLine `json:"line_items"`
	Total     Money       `json:"total"`
	ItemCount int         `json:"item_count"`
}

func (o Order) RecordID() string { return o.ID }

// NewOrderID returns "ORD-" followed by eight upper-case hex digits.
func NewOrderID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "ORD-" + strings.ToUpper(hex[:8])
}

// Checkout turns a cart into a persisted Order.
type Checkout struct {
	Orders record.Store[Order]
	Now    func() time.Time
	NewID  func() string
}

func (c Checkout) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c Checkout) newID() string {
	if c.NewID != nil {
		return c.NewID()
	}
	return NewOrderID()
}

// Place checks the cart and buyer name in that order, appends the order and clears the
// cart. The buyer is left on the session for repeat orders. On any error the cart is
// untouched.
func (c Checkout) Place(ctx context.Context, cart *Cart, buyer Buyer, currency string) (Order, error) {
	if cart.Empty() {
		return Order{}, ErrEmptyCart
	}
	if strings.TrimSpace(buyer.Name) == "" {
		return Order{}, ErrBuyerNameMissing
	}
	total, currency, err := cart.Total(currency)
	if err != nil {
		return Order{}, err
	}

	lines := make([]OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lineCurrency := item.Currency
		if lineCurrency == "" {
			lineCurrency = currency
		}
		lines = append(lines, OrderLine{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			UnitAmount:  item.UnitPrice,
			Currency:    lineCurrency,
			Size:        item.Size,
			Color:       item.Color,
			LineTotal:   RoundMoney(item.Total()),
		})
	}

	order := Order{
		ID:        c.newID(),
		Status:    StatusConfirmed,
		CreatedAt: c.now().Format(time.RFC3339),
		Buyer:     buyer,
		LineItems: lines,
		Total:     Money{Amount: total, Currency: currency},
		ItemCount: cart.Count(),
	}
	if err := c.Orders.Append(ctx, order); err != nil {
		return Order{}, fmt.Errorf("save order %s: %w", order.ID, err)
	}
	cart.Clear()
	return order, nil
}

// History summarises the most recent limit orders and the total spent across all of them.
func History(orders []Order, limit int) (recent []Order, spent float64) {
	for _, o := range orders {
		spent += o.Total.Amount
	}
	if limit > 0 && len(orders) > limit {
		orders = orders[len(orders)-limit:]
	}
	return orders, RoundMoney(spent)
}
