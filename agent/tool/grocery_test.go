package tool

import (
	"testing"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/commerce"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
)

func groceryCatalog() *catalog.Catalog {
	fee := 40.0
	return &catalog.Catalog{
		Products: []catalog.Product{
			{ID: "bread-01", Name: "Whole Wheat Bread", Category: "bakery", Price: 45, Unit: "400g"},
			{ID: "pasta-01", Name: "Penne Pasta", Category: "pantry", Price: 120, Unit: "500g"},
			{ID: "sauce-01", Name: "Tomato Sauce", Category: "pantry", Price: 95, Unit: "1 jar"},
			{ID: "milk-01", Name: "Toned Milk", Category: "dairy", Price: 30, Unit: "500ml"},
		},
		Recipes: catalog.Recipes{
			{Name: "pasta", ProductIDs: []string{"pasta-01", "sauce-01", "basil-99"}},
		},
		StoreInfo: catalog.StoreInfo{Name: "FreshMart", Currency: "INR", DeliveryFee: &fee, DeliveryTime: "30 minutes"},
	}
}

func TestGrocerySearchAndRecipe(t *testing.T) {
	t.Parallel()

	ex := newExecutor(t, SetGrocery, Env{Catalog: groceryCatalog()})
	st := newSession("grocery")

	mustContain(t, call(t, ex, st, "search_catalog", map[string]any{"query": "pantry"}),
		"Found 2 items:", "- Penne Pasta - ₹120 (500g)", "- Tomato Sauce - ₹95 (1 jar)")
	if len(st.LastShown) != 2 {
		t.Fatalf("search must record shown products, got %v", st.LastShown)
	}
	mustContain(t, call(t, ex, st, "search_catalog", map[string]any{"query": "cheese"}), "No products found matching 'cheese'")

	mustContain(t, call(t, ex, st, "add_to_cart", map[string]any{"product_name": "the first one", "quantity": 2}),
		"Added 2x Penne Pasta (₹120 each) to cart. Cart now has 1 items.")

	out := call(t, ex, st, "add_recipe_items", map[string]any{"recipe_name": "ingredients for pasta"})
	mustContain(t, out, "Added ingredients for pasta: Penne Pasta, Tomato Sauce. Cart total: ₹455")
	if st.Cart.Items[0].Quantity != 3 || len(st.Cart.Items) != 2 {
		t.Fatalf("recipe items must merge into existing lines: %+v", st.Cart.Items)
	}

	mustContain(t, call(t, ex, st, "add_recipe_items", map[string]any{"recipe_name": "biryani"}),
		"I don't have a recipe for 'biryani'. Available recipes: pasta")

	mustContain(t, call(t, ex, st, "show_cart", nil),
		"- 3x Penne Pasta (500g) - ₹360", "Subtotal: ₹455", "Delivery fee: ₹40", "Total: ₹495")

	mustContain(t, call(t, ex, st, "update_quantity", map[string]any{"product_name": "sauce", "new_quantity": "0"}), "Removed Tomato Sauce from cart.")
	mustContain(t, call(t, ex, st, "remove_from_cart", map[string]any{"product_name": "penne"}), "Removed Penne Pasta from cart. Cart now has 0 items.")
	mustContain(t, call(t, ex, st, "show_cart", nil), "Your cart is empty.")
}

func TestGroceryCheckout(t *testing.T) {
	t.Parallel()

	orders := record.NewMemoryStore[commerce.GroceryOrder]()
	notifier := &recordingNotifier{}
	ex := newExecutor(t, SetGrocery, Env{Catalog: groceryCatalog(), GroceryOrders: orders, Notifier: notifier})
	st := newSession("grocery")

	mustContain(t, call(t, ex, st, "place_order", nil), "Your cart is empty!")
	mustContain(t, call(t, ex, st, "check_order_status", nil), "No orders found in the system.")
	mustContain(t, call(t, ex, st, "get_previous_orders", nil), "You haven't placed any orders yet.")

	call(t, ex, st, "add_to_cart", map[string]any{"product_name": "milk", "quantity": 2})
	mustContain(t, call(t, ex, st, "place_order", nil), "I need your name")
	mustContain(t, call(t, ex, st, "set_customer_info", map[string]any{"name": "Ravi"}), "Thanks, Ravi. Where should I deliver this?")
	mustContain(t, call(t, ex, st, "place_order", nil), "I need a delivery address")
	mustContain(t, call(t, ex, st, "set_customer_info", map[string]any{"address": "12 MG Road"}), "Delivering to Ravi at 12 MG Road")

	out := call(t, ex, st, "place_order", nil)
	mustContain(t, out, "Order ID: FM-20251125103000", "Delivery to: 12 MG Road", "Total: ₹100", "approximately 30 minutes")
	if !st.Cart.Empty() || st.LastOrderID != "FM-20251125103000" {
		t.Fatalf("unexpected session after order: cart=%v last=%s", st.Cart.Items, st.LastOrderID)
	}

	call(t, ex, st, "add_to_cart", map[string]any{"product_name": "bread"})
	mustContain(t, call(t, ex, st, "place_order", nil), "Order ID: FM-20251125103000-2")

	mustContain(t, call(t, ex, st, "check_order_status", map[string]any{"order_id": "FM-20251125103000"}),
		"Order FM-20251125103000: Status is 'received'. Placed on 2025-11-25. Total: ₹100")
	mustContain(t, call(t, ex, st, "check_order_status", map[string]any{"order_id": "FM-1"}), "Order FM-1 not found.")
	mustContain(t, call(t, ex, st, "check_order_status", nil), "Your latest order FM-20251125103000-2")
	mustContain(t, call(t, ex, st, "get_previous_orders", nil), "Found 2 previous orders:", "- FM-20251125103000 - 1 items - ₹100 - received")

	if len(notifier.events) != 2 {
		t.Fatalf("expected 2 order events, got %d", len(notifier.events))
	}
}
