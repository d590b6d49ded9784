package catalog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const groceryDoc = `{
  "products": [
    {"id": "g1", "name": "Brown Bread", "category": "Bakery", "price": 45, "unit": "loaf", "brand": "Harvest"},
    {"id": "g2", "name": "Peanut Butter", "category": "Spreads", "price": 180, "unit": "jar"},
    {"id": "g3", "name": "Whole Milk", "category": "Dairy", "price": 60, "unit": "litre"},
    {"id": "g4", "name": "Pasta", "category": "Staples", "price": 90}
  ],
  "recipes": {
    "peanut butter sandwich": ["g1", "g2", "missing"],
    "pasta": ["g4", "g3"]
  },
  "store_info": {"name": "FreshMart", "delivery_fee": 35}
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	c, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(c.Products) != 0 {
		t.Fatalf("expected empty catalog, got %d products", len(c.Products))
	}
	if c.Currency() != DefaultCurrency || c.DeliveryFee() != DefaultDeliveryFee {
		t.Fatalf("unexpected defaults: %s %v", c.Currency(), c.DeliveryFee())
	}
}

func TestLoadMalformedFailsSoft(t *testing.T) {
	t.Parallel()

	c, err := Load(writeFile(t, "bad.json", "{not json"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("Load() error = %v, want ErrMalformed", err)
	}
	if c == nil || len(c.Products) != 0 {
		t.Fatalf("expected empty fallback catalog, got %#v", c)
	}
}

func TestLoadKeepsRecipeOrderAndAttributes(t *testing.T) {
	t.Parallel()

	c, err := Load(writeFile(t, "grocery.json", groceryDoc))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Recipes.Names(); len(got) != 2 || got[0] != "peanut butter sandwich" || got[1] != "pasta" {
		t.Fatalf("recipe order = %v", got)
	}
	p, ok := c.FindByID("g1")
	if !ok {
		t.Fatal("FindByID(g1) not found")
	}
	if p.Attributes["brand"] != "Harvest" {
		t.Fatalf("attributes = %#v", p.Attributes)
	}
	if c.DeliveryFee() != 35 {
		t.Fatalf("DeliveryFee() = %v, want 35", c.DeliveryFee())
	}
}

func TestRecipesRoundTripPreservesOrder(t *testing.T) {
	t.Parallel()

	in := Recipes{{Name: "b", ProductIDs: []string{"1"}}, {Name: "a"}}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(raw) != `{"b":["1"],"a":[]}` {
		t.Fatalf("Marshal() = %s", raw)
	}
}

func TestRecipeItemsMatchesEitherDirection(t *testing.T) {
	t.Parallel()

	c, _ := Load(writeFile(t, "grocery.json", groceryDoc))

	recipe, items, ok := c.RecipeItems("Peanut Butter Sandwich ingredients")
	if !ok || recipe.Name != "peanut butter sandwich" {
		t.Fatalf("RecipeItems() = %v %v", recipe, ok)
	}
	if len(items) != 2 {
		t.Fatalf("expected unknown id to be skipped, got %d items", len(items))
	}

	if _, _, ok := c.RecipeItems("sandwich"); !ok {
		t.Fatal("expected substring match on recipe name")
	}
	if _, _, ok := c.RecipeItems("lasagne"); ok {
		t.Fatal("unexpected match for unknown recipe")
	}
}

func TestFilterCombinesCriteria(t *testing.T) {
	t.Parallel()

	c := &Catalog{Products: []Product{
		{ID: "h1", Name: "Classic Hoodie", Category: "hoodies", Price: 1500, Color: "black"},
		{ID: "h2", Name: "Zip Hoodie", Category: "hoodies", Price: 2500, Color: "grey"},
		{ID: "m1", Name: "Coffee Mug", Category: "mugs", Price: 400, Color: "black", Description: "ceramic"},
	}}

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{name: "no criteria", criteria: Criteria{}, want: []string{"h1", "h2", "m1"}},
		{name: "category", criteria: Criteria{Category: "Hoodie"}, want: []string{"h1", "h2"}},
		{name: "max price", criteria: Criteria{MaxPrice: 1500}, want: []string{"h1", "m1"}},
		{name: "min price", criteria: Criteria{MinPrice: 2000}, want: []string{"h2"}},
		{name: "color and category", criteria: Criteria{Color: "BLACK", Category: "hoodies"}, want: []string{"h1"}},
		{name: "search description", criteria: Criteria{SearchTerm: "ceramic"}, want: []string{"m1"}},
		{name: "no match", criteria: Criteria{Category: "shoes"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := c.Filter(tt.criteria)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter() = %d items, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Fatalf("Filter()[%d] = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestFindByNameIsFirstMatch(t *testing.T) {
	t.Parallel()

	c := &Catalog{Products: []Product{
		{ID: "1", Name: "Zip Hoodie"},
		{ID: "2", Name: "Hoodie"},
	}}
	p, ok := c.FindByName("hoodie")
	if !ok || p.ID != "1" {
		t.Fatalf("FindByName() = %v %v, want first match", p.ID, ok)
	}
	if _, ok := c.FindByName("  "); ok {
		t.Fatal("blank name must not match")
	}
}

func TestProductVariants(t *testing.T) {
	t.Parallel()

	out := false
	p := Product{Sizes: []string{"S", "M"}, InStock: &out}
	if !p.RequiresVariant() {
		t.Fatal("expected variant requirement")
	}
	if got, ok := p.MatchSize(" m "); !ok || got != "M" {
		t.Fatalf("MatchSize() = %q %v", got, ok)
	}
	if _, ok := p.MatchSize("XL"); ok {
		t.Fatal("XL must not match")
	}
	if p.Available() {
		t.Fatal("in_stock=false must be unavailable")
	}
	if !(Product{}).Available() {
		t.Fatal("missing in_stock defaults to available")
	}
}

func TestCurrencyAndCategories(t *testing.T) {
	t.Parallel()

	c := &Catalog{Products: []Product{
		{Category: "mugs", Currency: "USD"},
		{Category: "hoodies"},
		{Category: "mugs"},
	}}
	if c.Currency() != "USD" {
		t.Fatalf("Currency() = %s", c.Currency())
	}
	if got := c.CategoryNames(); len(got) != 2 || got[0] != "mugs" {
		t.Fatalf("CategoryNames() = %v", got)
	}
}

func TestFAQSearchRanksByOverlap(t *testing.T) {
	t.Parallel()

	faq := FAQ{Entries: []FAQEntry{
		{Question: "Do you have a free tier?", Answer: "No."},
		{Question: "What are the pricing plans?", Answer: "Pricing is per transaction."},
		{Question: "How do refunds work?", Answer: "Refunds take five days; pricing unaffected."},
	}}

	got := faq.Search("pricing for refunds?", 2)
	if len(got) != 2 || got[0].Question != "How do refunds work?" {
		t.Fatalf("Search() = %+v", got)
	}
	if faq.Search("a an", 3) != nil {
		t.Fatal("short words must not match")
	}
}

func TestFAQPricingLinesSorted(t *testing.T) {
	t.Parallel()

	faq := FAQ{Pricing: map[string]map[string]any{
		"payment_links": {"fee": "2%"},
		"gateway":       {"setup": 0, "fee": "1.9%"},
	}}
	lines := faq.PricingLines()
	if len(lines) != 2 || lines[0] != "gateway: fee=1.9%, setup=0" {
		t.Fatalf("PricingLines() = %v", lines)
	}
}

func TestLoadShowDefaults(t *testing.T) {
	t.Parallel()

	show, err := LoadShow(writeFile(t, "show.json", `{"scenarios":[{"id":"s1","title":"Lost Luggage","setup":"x"}]}`))
	if err != nil {
		t.Fatalf("LoadShow() error = %v", err)
	}
	if len(show.Scenarios) != 1 || show.MaxRounds() != DefaultMaxRounds {
		t.Fatalf("LoadShow() = %+v", show)
	}
}

func TestLoadConcepts(t *testing.T) {
	t.Parallel()

	concepts, err := LoadConcepts(writeFile(t, "tutor.json", `[{"id":"variables","title":"Variables","summary":"boxes"}]`))
	if err != nil {
		t.Fatalf("LoadConcepts() error = %v", err)
	}
	if c, ok := FindConcept(concepts, "VARIABLES"); !ok || c.Summary != "boxes" {
		t.Fatalf("FindConcept() = %+v %v", c, ok)
	}
	missing, err := LoadConcepts(filepath.Join(t.TempDir(), "x.json"))
	if err != nil || missing == nil || len(missing) != 0 {
		t.Fatalf("LoadConcepts(missing) = %v %v", missing, err)
	}
}
