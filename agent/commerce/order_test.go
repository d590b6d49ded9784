package commerce

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
)

func fixedClock() func() time.Time {
	at := time.Date(2025, 11, 25, 10, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestPlaceOrderPreconditionsInOrder(t *testing.T) {
	t.Parallel()

	store := record.NewMemoryStore[Order]()
	checkout := Checkout{Orders: store, Now: fixedClock()}
	ctx := context.Background()

	var cart Cart
	if _, err := checkout.Place(ctx, &cart, Buyer{}, "INR"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("Place() error = %v, want ErrEmptyCart", err)
	}

	if _, err := cart.Add(mustProduct(t, fixtureCatalog(), "m1"), 1, ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := checkout.Place(ctx, &cart, NewBuyer("  ", ""), "INR"); !errors.Is(err, ErrBuyerNameMissing) {
		t.Fatalf("Place() error = %v, want ErrBuyerNameMissing", err)
	}
	if cart.Empty() {
		t.Fatal("failed checkout must keep the cart")
	}
}

func TestPlaceOrderSnapshotsAndClears(t *testing.T) {
	t.Parallel()

	c := fixtureCatalog()
	store := record.NewMemoryStore[Order]()
	checkout := Checkout{Orders: store, Now: fixedClock()}
	ctx := context.Background()

	var cart Cart
	_, _ = cart.Add(mustProduct(t, c, "m1"), 2, "")
	_, _ = cart.Add(mustProduct(t, c, "t1"), 1, "l")

	order, err := checkout.Place(ctx, &cart, NewBuyer("Asha", ""), "INR")
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if !strings.HasPrefix(order.ID, "ORD-") || len(order.ID) != 12 {
		t.Fatalf("unexpected order id %q", order.ID)
	}
	if order.Status != StatusConfirmed || order.ItemCount != 3 || order.Buyer.Email != nil {
		t.Fatalf("unexpected order: %+v", order)
	}

	sum := 0.0
	for _, line := range order.LineItems {
		sum += line.LineTotal
	}
	if sum != order.Total.Amount || order.Total.Amount != 1699 {
		t.Fatalf("line totals %v vs total %v", sum, order.Total.Amount)
	}
	if order.LineItems[1].Currency != "INR" || order.LineItems[1].Size != "L" {
		t.Fatalf("line currency/size not filled: %+v", order.LineItems[1])
	}
	if !cart.Empty() {
		t.Fatal("cart must be cleared after checkout")
	}

	if _, err := checkout.Place(ctx, &cart, NewBuyer("Asha", ""), "INR"); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("second Place() error = %v, want ErrEmptyCart", err)
	}

	saved, err := store.Load(ctx)
	if err != nil || len(saved) != 1 || saved[0].ID != order.ID {
		t.Fatalf("store = %+v %v", saved, err)
	}
}

type failingStore struct{ record.Store[Order] }

func (failingStore) Append(context.Context, Order) error { return errors.New("disk full") }

func TestPlaceOrderKeepsCartWhenSaveFails(t *testing.T) {
	t.Parallel()

	checkout := Checkout{Orders: failingStore{}}
	var cart Cart
	_, _ = cart.Add(mustProduct(t, fixtureCatalog(), "s1"), 1, "")

	if _, err := checkout.Place(context.Background(), &cart, NewBuyer("Asha", "a@x.io"), "INR"); err == nil {
		t.Fatal("expected save error")
	}
	if cart.Empty() {
		t.Fatal("cart must survive a failed save")
	}
}

func TestHistory(t *testing.T) {
	t.Parallel()

	orders := make([]Order, 0, 7)
	for i := range 7 {
		orders = append(orders, Order{ID: string(rune('a' + i)), Total: Money{Amount: 100}})
	}
	recent, spent := History(orders, 5)
	if len(recent) != 5 || recent[0].ID != "c" || spent != 700 {
		t.Fatalf("History() = %v %v", len(recent), spent)
	}
}

func TestGroceryCheckout(t *testing.T) {
	t.Parallel()

	products := []catalog.Product{
		{ID: "g1", Name: "Bread", Price: 45, Unit: "loaf"},
		{ID: "g2", Name: "Peanut Butter", Price: 180, Unit: "jar"},
	}
	store := record.NewMemoryStore[GroceryOrder]()
	checkout := GroceryCheckout{Orders: store, Now: fixedClock()}
	ctx := context.Background()

	var cart Cart
	if _, err := cart.AddRecipe(products); err != nil {
		t.Fatalf("AddRecipe() error = %v", err)
	}
	_, _ = cart.AddRecipe(products[:1])

	if _, err := checkout.Place(ctx, &cart, Customer{Name: "Asha"}, 29); !errors.Is(err, ErrAddressMissing) {
		t.Fatalf("Place() error = %v, want ErrAddressMissing", err)
	}

	order, err := checkout.Place(ctx, &cart, Customer{Name: "Asha", Address: "12 MG Road"}, 29)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	if order.OrderID != "FM-20251125103000" {
		t.Fatalf("order id = %s", order.OrderID)
	}
	if order.Subtotal != 270 || order.Total != 299 || order.Status != StatusReceived {
		t.Fatalf("unexpected totals: %+v", order)
	}
	if len(order.StatusHistory) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order body: %+v", order)
	}

	_, _ = cart.AddRecipe(products)
	again, err := checkout.Place(ctx, &cart, Customer{Name: "Asha", Address: "12 MG Road"}, 29)
	if err != nil {
		t.Fatalf("second Place() error = %v", err)
	}
	if again.OrderID != "FM-20251125103000-2" {
		t.Fatalf("same-second order id = %s", again.OrderID)
	}
}
