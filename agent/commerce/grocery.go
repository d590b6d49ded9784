package commerce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
)

const StatusReceived = "received"

type Customer struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

type GroceryLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Unit      string  `json:"unit"`
	ItemTotal float64 `json:"item_total"`
}

type StatusChange struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// GroceryOrder is one element of the grocery orders.json file.
type GroceryOrder struct {
	OrderID         string         `json:"order_id"`
	Timestamp       string         `json:"timestamp"`
	CustomerName    string         `json:"customer_name"`
	DeliveryAddress string         `json:"delivery_address"`
	Items           []GroceryLine  `json:"items"`
	Subtotal        float64        `json:"subtotal"`
	DeliveryFee     float64        `json:"delivery_fee"`
	Total           float64        `json:"total"`
	Status          string         `json:"status"`
	StatusHistory   []StatusChange `json:"status_history"`
}

func (o GroceryOrder) RecordID() string { return o.OrderID }

// GroceryCheckout turns a cart into a persisted GroceryOrder with a delivery fee.
type GroceryCheckout struct {
	Orders record.Store[GroceryOrder]
	Now    func() time.Time
}

func (c GroceryCheckout) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// orderID is "FM-YYYYMMDDHHMMSS". Two orders in the same second get "-2", "-3", ...
func (c GroceryCheckout) orderID(ctx context.Context, at time.Time) (string, error) {
	base := "FM-" + at.Format("20060102150405")
	id := base
	for n := 2; ; n++ {
		taken, err := record.Exists(ctx, c.Orders, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return id, nil
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// Place checks cart, name and address in that order.
func (c GroceryCheckout) Place(ctx context.Context, cart *Cart, customer Customer, deliveryFee float64) (GroceryOrder, error) {
	if cart.Empty() {
		return GroceryOrder{}, ErrEmptyCart
	}
	if strings.TrimSpace(customer.Name) == "" {
		return GroceryOrder{}, ErrBuyerNameMissing
	}
	if strings.TrimSpace(customer.Address) == "" {
		return GroceryOrder{}, ErrAddressMissing
	}

	at := c.now()
	id, err := c.orderID(ctx, at)
	if err != nil {
		return GroceryOrder{}, fmt.Errorf("allocate order id: %w", err)
	}

	items := make([]GroceryLine, 0, len(cart.Items))
	subtotal := 0.0
	for _, item := range cart.Items {
		lineTotal := RoundMoney(item.Total())
		subtotal += lineTotal
		items = append(items, GroceryLine{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.UnitPrice,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			ItemTotal: lineTotal,
		})
	}
	subtotal = RoundMoney(subtotal)
	stamp := at.Format(time.RFC3339)

	order := GroceryOrder{
		OrderID:         id,
		Timestamp:       stamp,
		CustomerName:    strings.TrimSpace(customer.Name),
		DeliveryAddress: strings.TrimSpace(customer.Address),
		Items:           items,
		Subtotal:        subtotal,
		DeliveryFee:     deliveryFee,
		Total:           RoundMoney(subtotal + deliveryFee),
		Status:          StatusReceived,
		StatusHistory:   []StatusChange{{Status: StatusReceived, Timestamp: stamp}},
	}
	if err := c.Orders.Append(ctx, order); err != nil {
		return GroceryOrder{}, fmt.Errorf("save order %s: %w", order.OrderID, err)
	}
	cart.Clear()
	return order, nil
}

// AddRecipe adds one unit of every product in items, merging with existing lines.
// It stops at the first product that cannot be added without a size.
func (c *Cart) AddRecipe(items []catalog.Product) ([]string, error) {
	added := make([]string, 0, len(items))
	for _, p := range items {
		if _, err := c.Add(p, 1, ""); err != nil {
			return added, err
		}
		added = append(added, p.Name)
	}
	return added, nil
}
