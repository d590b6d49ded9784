package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/commerce"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
)

const (
	browseLimit  = 5
	historyLimit = 5
)

func ecommerceTools() []Tool {
	return []Tool{
		{
			Info: describe("browse_catalog", "Browse products with optional filters. Omitted filters match everything.",
				map[string]*schema.ParameterInfo{
					"category":  {Type: schema.String, Desc: "Category such as mugs, tshirts, hoodies, stickers, caps, accessories"},
					"max_price": {Type: schema.Number, Desc: "Maximum price; 0 means no limit"},
					"color":     {Type: schema.String, Desc: "Color such as black, white, blue"},
					"search":    {Type: schema.String, Desc: "Search term for product name or description"},
				}),
			Run: browseCatalog,
		},
		{
			Info: describe("get_product_details", "Get detailed information about one product.",
				map[string]*schema.ParameterInfo{
					"product_name": {Type: schema.String, Desc: "Name or partial name of the product", Required: true},
				}),
			Run: productDetails,
		},
		{
			Info: describe("add_to_cart", "Add a product to the cart. Clothing needs a size.",
				map[string]*schema.ParameterInfo{
					"product_name": {Type: schema.String, Desc: "Product name, or a position like 'the second one' from the last list shown", Required: true},
					"quantity":     {Type: schema.Integer, Desc: "How many to add, default 1"},
					"size":         {Type: schema.String, Desc: "Size for clothing items (S, M, L, XL)"},
				}),
			Run: addToCart,
		},
		{
			Info: describe("view_cart", "Show every item in the cart with the total.", nil),
			Run:  viewCart,
		},
		{
			Info: describe("remove_from_cart", "Remove a product from the cart.",
				map[string]*schema.ParameterInfo{
					"product_name": {Type: schema.String, Desc: "Name of the product to remove", Required: true},
				}),
			Run: removeFromCart,
		},
		{
			Info: describe("update_cart_quantity", "Change the quantity of a cart item. 0 removes it.",
				map[string]*schema.ParameterInfo{
					"product_name": {Type: schema.String, Desc: "Name of the product", Required: true},
					"new_quantity": {Type: schema.Integer, Desc: "New quantity, 0 to remove", Required: true},
				}),
			Run: updateCartQuantity("update_cart_quantity"),
		},
		{
			Info: describe("set_buyer_info", "Set the buyer's name and optional email for the order.",
				map[string]*schema.ParameterInfo{
					"name":  {Type: schema.String, Desc: "Buyer's name", Required: true},
					"email": {Type: schema.String, Desc: "Buyer's email"},
				}),
			Run: setBuyerInfo,
		},
		{
			Info: describe("place_order", "Place the order for everything in the cart.", nil),
			Run:  placeOrder,
		},
		{
			Info: describe("get_last_order", "Get details of the most recent order.", nil),
			Run:  lastOrder,
		},
		{
			Info: describe("get_order_history", "List recent orders and the total spent.", nil),
			Run:  orderHistory,
		},
	}
}

func browseCatalog(_ context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	results := env.Catalog.Filter(catalog.Criteria{
		Category:   args.String("category"),
		MaxPrice:   max(args.Float("max_price", 0), 0),
		Color:      args.String("color"),
		SearchTerm: args.String("search"),
	})
	if len(results) == 0 {
		return "No products found matching your criteria. Try a different search or browse all categories.", nil
	}
	st.LastShown = commerce.ShownIDs(results, browseLimit)

	currency := env.Catalog.Currency()
	lines := []string{fmt.Sprintf("Found %d products:", len(results))}
	for i, p := range results[:min(len(results), browseLimit)] {
		line := fmt.Sprintf("%d. %s - %s", i+1, p.Name, money(p.Price, orDefault(p.Currency, currency)))
		if p.Color != "" {
			line += ", " + p.Color
		}
		if len(p.Sizes) > 0 {
			line += " (Sizes: " + strings.Join(p.Sizes, ", ") + ")"
		}
		lines = append(lines, line)
	}
	if extra := len(results) - browseLimit; extra > 0 {
		lines = append(lines, fmt.Sprintf("...and %d more. Ask me to narrow down if needed!", extra))
	}
	return strings.Join(lines, "\n"), nil
}

func productDetails(_ context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	ref := args.String("product_name")
	p, err := commerce.ResolveProduct(env.Catalog, st.LastShown, ref)
	if err != nil {
		return fmt.Sprintf("Couldn't find a product matching '%s'. Try browsing the catalog first.", ref), nil
	}

	lines := []string{
		p.Name,
		"Price: " + money(p.Price, orDefault(p.Currency, env.Catalog.Currency())),
	}
	if p.Description != "" {
		lines = append(lines, p.Description)
	}
	if p.Color != "" {
		lines = append(lines, "Color: "+p.Color)
	}
	if len(p.Sizes) > 0 {
		lines = append(lines, "Available sizes: "+strings.Join(p.Sizes, ", "))
	}
	if p.Available() {
		lines = append(lines, "In stock")
	} else {
		lines = append(lines, "Out of stock")
	}
	return strings.Join(lines, "\n"), nil
}

// cartError phrases the cart package's refusals.
func cartError(err error, ref string) (string, bool) {
	var verr *commerce.VariantError
	switch {
	case errors.As(err, &verr) && errors.Is(err, commerce.ErrVariantRequired):
		return fmt.Sprintf("Please specify a size for %s. Available: %s", verr.Product.Name, strings.Join(verr.Product.Sizes, ", ")), true
	case errors.As(err, &verr):
		return fmt.Sprintf("Size %s not available for %s. Choose from: %s", verr.Size, verr.Product.Name, strings.Join(verr.Product.Sizes, ", ")), true
	case errors.Is(err, commerce.ErrInvalidQuantity):
		return "The quantity has to be at least 1.", true
	case errors.Is(err, commerce.ErrItemNotInCart):
		return fmt.Sprintf("'%s' is not in your cart.", ref), true
	case errors.Is(err, commerce.ErrMixedCurrency):
		return "Your cart has items priced in different currencies, and I can't total those together. Please remove one of them.", true
	default:
		return "", false
	}
}

func cartTotal(env *Env, st *statex.SessionState) (string, error) {
	total, currency, err := st.Cart.Total(env.Catalog.Currency())
	if err != nil {
		return "", err
	}
	return money(total, currency), nil
}

func addToCart(_ context.Context, env *Env, st *statex.SessionState, args Args) (string, error) {
	ref := args.String("product_name")
	p, err := commerce.ResolveProduct(env.Catalog, st.LastShown, ref)
	if err != nil {
		return fmt.Sprintf("Couldn't find '%s'. Try browsing the catalog first.", ref), nil
	}

	before := len(st.Cart.Items)
	quantity := args.Int("quantity", 1)
	line, err := st.Cart.Add(p, quantity, args.String("size"))
	if err != nil {
		if msg, ok := cartError(err, ref); ok {
			return msg, nil
		}
		return "", err
	}

	total, err := cartTotal(env, st)
	if err != nil {
		msg, _ := cartError(err, ref)
		return msg, nil
	}
	if len(st.Cart.Items) == before {
		return fmt.Sprintf("Updated %s quantity to %d. Cart total: %s", line.Name, line.Quantity, total), nil
	}
	size := ""
	if line.Size != "" {
		size = " (Size: " + line.Size + ")"
	}
	return fmt.Sprintf("Added %dx %s%s to cart. Cart total: %s", quantity, line.Name, size, total), nil
}

func viewCart(_ context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
	if st.Cart.Empty() {
		return "Your cart is empty. Browse some products to get started!", nil
	}
	total, err := cartTotal(env, st)
	if err != nil {
		msg, _ := cartError(err, "")
		return msg, nil
	}

	lines := []string{"YOUR CART:"}
	for _, item := range st.Cart.Items {
		lines = append(lines, fmt.Sprintf("- %dx %s%s - %s",
			item.Quantity, item.Name, sizeSuffix(item.Size), money(item.Total(), orDefault(item.Currency, env.Catalog.Currency()))))
	}
	lines = append(lines, "", "TOTAL: "+total)
	return strings.Join(lines, "\n"), nil
}

func removeFromCart(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	ref := args.String("product_name")
	removed, err := st.Cart.Remove(ref)
	if err != nil {
		msg, _ := cartError(err, ref)
		return msg, nil
	}
	return fmt.Sprintf("Removed %s from cart.", removed.Name), nil
}

// updateCartQuantity serves both storefronts; they differ only in the tool name.
func updateCartQuantity(tool string) Handler {
	return func(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
		ref := args.String("product_name")
		if !args.Has("new_quantity") {
			return fmt.Sprintf("%s needs new_quantity. Ask how many they want.", tool), nil
		}
		line, removed, err := st.Cart.UpdateQuantity(ref, args.Int("new_quantity", 0))
		if err != nil {
			msg, _ := cartError(err, ref)
			return msg, nil
		}
		if removed {
			return fmt.Sprintf("Removed %s from cart.", line.Name), nil
		}
		return fmt.Sprintf("Updated %s to quantity %d.", line.Name, line.Quantity), nil
	}
}

func setBuyerInfo(_ context.Context, _ *Env, st *statex.SessionState, args Args) (string, error) {
	name := args.String("name")
	if name == "" {
		return "I didn't catch a name. What name should I put on the order?", nil
	}
	st.Buyer = commerce.NewBuyer(name, args.String("email"))
	return fmt.Sprintf("Got it, %s! Ready to place your order.", name), nil
}

func placeOrder(ctx context.Context, env *Env, st *statex.SessionState, _ Args) (string, error) {
	checkout := commerce.Checkout{Orders: env.Orders, Now: env.Now}
	order, err := checkout.Place(ctx, &st.Cart, st.Buyer, env.Catalog.Currency())
	switch {
	case errors.Is(err, commerce.ErrEmptyCart):
		return "Your cart is empty! Add some products before placing an order.", nil
	case errors.Is(err, commerce.ErrBuyerNameMissing):
		return "I need your name to place the order. What's your name?", nil
	case errors.Is(err, commerce.ErrMixedCurrency):
		msg, _ := cartError(err, "")
		return msg, nil
	case err != nil:
		return "", err
	}

	st.LastOrderID = order.ID
	env.notify(ctx, st, record.EventOrderPlaced, order.ID, order)

	return strings.Join([]string{
		"ORDER PLACED SUCCESSFULLY!",
		"",
		"Order ID: " + order.ID,
		"Customer: " + order.Buyer.Name,
		fmt.Sprintf("Items: %d items", order.ItemCount),
		"Total: " + money(order.Total.Amount, order.Total.Currency),
		"Status: " + order.Status,
	}, "\n"), nil
}

func lastOrder(ctx context.Context, env *Env, _ *statex.SessionState, _ Args) (string, error) {
	order, err := record.Latest(ctx, env.Orders)
	if errors.Is(err, record.ErrNotFound) {
		return "You haven't placed any orders yet.", nil
	}
	if err != nil {
		return "", err
	}

	lines := []string{
		"ORDER: " + order.ID,
		"Placed: " + datePart(order.CreatedAt),
		"Customer: " + order.Buyer.Name,
		"Status: " + order.Status,
		"",
		"Items:",
	}
	for _, item := range order.LineItems {
		lines = append(lines, fmt.Sprintf("  - %dx %s%s - %s",
			item.Quantity, item.ProductName, sizeSuffix(item.Size), money(item.LineTotal, item.Currency)))
	}
	lines = append(lines, "", "Total: "+money(order.Total.Amount, order.Total.Currency))
	return strings.Join(lines, "\n"), nil
}

func orderHistory(ctx context.Context, env *Env, _ *statex.SessionState, _ Args) (string, error) {
	orders, err := env.Orders.Load(ctx)
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return "No order history found.", nil
	}

	recent, spent := commerce.History(orders, historyLimit)
	lines := []string{fmt.Sprintf("ORDER HISTORY (%d orders):", len(orders))}
	for _, o := range recent {
		lines = append(lines, fmt.Sprintf("- %s - %d items - %s - %s",
			o.ID, o.ItemCount, money(o.Total.Amount, o.Total.Currency), o.Status))
	}
	lines = append(lines, "", "Total spent: "+money(spent, env.Catalog.Currency()))
	return strings.Join(lines, "\n"), nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
