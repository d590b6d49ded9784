package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/commerce"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
)

const searchLimit = 10

func groceryTools() []Tool {
	return []Tool{
		{
			Info: describe("search_catalog", "Search groceries by product name or category.",
				map[string]*schema.ParameterInfo{
					"query": {Type: schema.String, Desc: "Product name or category, e.g. 'bread', 'dairy'", Required: true},
				}),
			Run: searchCatalog,
		},
		{
			Info: describe("add_to_cart", "Add a grocery item to the cart.",
				map[string]*schema.ParameterInfo{
					"product_name": {Type: schema.String, Desc: "Name of the product to add", Required: true},
					"quantity":     {Type: schema.Integer, Desc: "Number of items to add, default 1"},
				}),
			Run: groceryAddToCart,
		},
		{
			Info: describe("add_recipe_items", "Add every ingredient for a dish to the cart.",
				map[string]*schema.ParameterInfo{
					"recipe_name": {Type: schema.String, Desc: "Dish name, e.g. 'pasta', 'omelette', 'chai'", Required: true},
				}),
			Run: addRecipeItems,
		},
		{
			Info: describe("remove_from_cart", "Remove a product from the cart.",
				map[string]*schema.ParameterInfo{
					"product_name": {Type: schema.String, Desc: "Name of the product to remove", Required: true},
				}),
			Run: groceryRemoveFromCart,
		},
		{
			Info: describe("update_quantity", "Change the quantity of a cart item. 0 removes it.",
				map[string]*schema.ParameterInfo{
					"product_name": {Type: schema.String, Desc: "Name of the product", Required: true},
					"new_quantity": {Type: schema.Integer, Desc: "New quantity, 0 to remove", Required: true},
				}),
			Run: updateCartQuantity("update_quantity"),
		},
		{
			Info: describe("show_cart", "Show the cart with subtotal, delivery fee and total.", nil),
			Run:  showCart,
		},
		{
			Info: describe("set_customer_info", "Set the customer's name and delivery address.",
				map[string]*schema.ParameterInfo{
					"name":    {Type: schema.String, Desc: "Customer's name", Required: true},
					"address": {Type: schema.String, Desc: "Delivery address", Required: true},
				}),
			Run: setCustomerInfo,
		},
		{
			Info: describe("place_order", "Place the order once the customer confirms.", nil),
			Run:  placeGroceryOrder,
		},
		{
			Info: describe("check_order_status", "Check an order's status. Without an id the latest order is used.",
				map[string]*schema.ParameterInfo{
					"order_id": {Type: schema.String, Desc: "Order id such as FM-20251125103000"},
				}),
			Run: checkOrderStatus,
		},
		{
			Info: describe("get_previous_orders", "List the most recent orders.", nil),
			Run:  previousOrders,
		},
	}
}

func searchCatalog(_ context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	query := args.String("query")
	matches := env.Catalog.Search(query)
	if len(matches) == 0 {
		return fmt.Sprintf("No products found matching '%s'", query), nil
	}
	st.LastShown = commerce.ShownIDs(matches, browseLimit)

	currency := env.Catalog.Currency()
	lines := []string{fmt.Sprintf("Found %d items:", len(matches))}
	for _, p := range matches[:min(len(matches), searchLimit)] {
		line := fmt.Sprintf("- %s - %s", p.Name, money(p.Price, orDefault(p.Currency, currency)))
		if p.Unit != "" {
			line += " (" + p.Unit + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func groceryAddToCart(_ context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	ref := args.String("product_name")
	p, err := commerce.ResolveProduct(env.Catalog, st.LastShown, ref)
	if err != nil {
		return fmt.Sprintf("Sorry, couldn't find '%s' in our catalog. Try searching for it first.", ref), nil
	}

	before := len(st.Cart.Items)
	quantity := args.Int("quantity", 1)
	line, err := st.Cart.Add(p, quantity, "")
	if err != nil {
		if msg, ok := cartError(err, ref); ok {
			return msg, nil
		}
		return "", err
	}
	if len(st.Cart.Items) == before {
		return fmt.Sprintf("Updated %s quantity to %d. Cart now has %d items.", line.Name, line.Quantity, len(st.Cart.Items)), nil
	}
	return fmt.Sprintf("Added %dx %s (%s each) to cart. Cart now has %d items.",
		quantity, line.Name, money(line.UnitPrice, orDefault(line.Currency, env.Catalog.Currency())), len(st.Cart.Items)), nil
}

func addRecipeItems(_ context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	name := args.String("recipe_name")
	recipe, items, ok := env.Catalog.RecipeItems(name)
	if !ok || len(items) == 0 {
		return fmt.Sprintf("Sorry, I don't have a recipe for '%s'. Available recipes: %s",
			name, strings.Join(env.Catalog.Recipes.Names(), ", ")), nil
	}

	added, err := st.Cart.AddRecipe(items)
	if err != nil {
		if msg, handled := cartError(err, name); handled {
			if len(added) > 0 {
				msg = fmt.Sprintf("Added %s, then stopped: %s", strings.Join(added, ", "), msg)
			}
			return msg, nil
		}
		return "", err
	}
	total, err := cartTotal(env, st)
	if err != nil {
		msg, _ := cartError(err, name)
		return msg, nil
	}
	return fmt.Sprintf("Added ingredients for %s: %s. Cart total: %s", recipe.Name, strings.Join(added, ", "), total), nil
}

func groceryRemoveFromCart(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	ref := args.String("product_name")
	removed, err := st.Cart.Remove(ref)
	if err != nil {
		msg, _ := cartError(err, ref)
		return msg, nil
	}
	return fmt.Sprintf("Removed %s from cart. Cart now has %d items.", removed.Name, len(st.Cart.Items)), nil
}

func showCart(_ context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
	if st.Cart.Empty() {
		return "Your cart is empty. Would you like to add something?", nil
	}
	subtotal, currency, err := st.Cart.Total(env.Catalog.Currency())
	if err != nil {
		msg, _ := cartError(err, "")
		return msg, nil
	}
	fee := env.Catalog.DeliveryFee()

	lines := []string{"Your cart contains:"}
	for _, item := range st.Cart.Items {
		unit := ""
		if item.Unit != "" {
			unit = " (" + item.Unit + ")"
		}
		lines = append(lines, fmt.Sprintf("- %dx %s%s - %s", item.Quantity, item.Name, unit, money(item.Total(), currency)))
	}
	lines = append(lines,
		"",
		"Subtotal: "+money(subtotal, currency),
		"Delivery fee: "+money(fee, currency),
		"Total: "+money(commerce.RoundMoney(subtotal+fee), currency),
	)
	return strings.Join(lines, "\n"), nil
}

func setCustomerInfo(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	name, address := args.String("name"), args.String("address")
	if name != "" {
		st.Customer.Name = name
	}
	if address != "" {
		st.Customer.Address = address
	}
	switch {
	case st.Customer.Name == "":
		return "I still need the customer's name.", nil
	case st.Customer.Address == "":
		return fmt.Sprintf("Thanks, %s. Where should I deliver this?", st.Customer.Name), nil
	}
	return fmt.Sprintf("Got it! Delivering to %s at %s.", st.Customer.Name, st.Customer.Address), nil
}

func placeGroceryOrder(ctx context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
	checkout := commerce.GroceryCheckout{Orders: env.GroceryOrders, Now: env.Now}
	order, err := checkout.Place(ctx, &st.Cart, st.Customer, env.Catalog.DeliveryFee())
	switch {
	case errors.Is(err, commerce.ErrEmptyCart):
		return "Your cart is empty! Please add items before placing an order.", nil
	case errors.Is(err, commerce.ErrBuyerNameMissing):
		return "I need your name before placing the order. What's your name?", nil
	case errors.Is(err, commerce.ErrAddressMissing):
		return "I need a delivery address. Where should I deliver this?", nil
	case err != nil:
		return "", err
	}

	st.LastOrderID = order.OrderID
	env.notify(ctx, st, record.EventOrderPlaced, order.OrderID, order)

	currency := env.Catalog.Currency()
	lines := []string{
		"Order placed successfully!",
		"",
		"Order ID: " + order.OrderID,
		"Customer: " + order.CustomerName,
		"Delivery to: " + order.DeliveryAddress,
		fmt.Sprintf("Items: %d items", len(order.Items)),
		"Total: " + money(order.Total, currency),
	}
	if eta := env.Catalog.StoreInfo.DeliveryTime; eta != "" {
		lines = append(lines, "", "Your order will arrive in approximately "+eta+"!")
	}
	return strings.Join(lines, "\n"), nil
}

func checkOrderStatus(ctx context.Context, env *Env, _ *statex.SessionState, args Args) (string, error) {
	currency := env.Catalog.Currency()
	if id := args.String("order_id"); id != "" {
		order, err := record.FindByID(ctx, env.GroceryOrders, id)
		if errors.Is(err, record.ErrNotFound) {
			return fmt.Sprintf("Order %s not found.", id), nil
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Order %s: Status is '%s'. Placed on %s. Total: %s",
			order.OrderID, order.Status, datePart(order.Timestamp), money(order.Total, currency)), nil
	}

	latest, err := record.Latest(ctx, env.GroceryOrders)
	if errors.Is(err, record.ErrNotFound) {
		return "No orders found in the system.", nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Your latest order %s: Status is '%s'. %d items, Total: %s",
		latest.OrderID, latest.Status, len(latest.Items), money(latest.Total, currency)), nil
}

func previousOrders(ctx context.Context, env *Env, _ *statex.SessionState, _ Args) (string, error) {
	orders, err := env.GroceryOrders.Load(ctx)
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return "You haven't placed any orders yet.", nil
	}

	currency := env.Catalog.Currency()
	lines := []string{fmt.Sprintf("Found %d previous orders:", len(orders))}
	for _, o := range orders[max(len(orders)-historyLimit, 0):] {
		lines = append(lines, fmt.Sprintf("- %s - %d items - %s - %s", o.OrderID, len(o.Items), money(o.Total, currency), o.Status))
	}
	return strings.Join(lines, "\n"), nil
}
