package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Recipe is a named ingredient bundle referring to product ids.
type Recipe struct {
	Name       string
	ProductIDs []string
}

// Recipes keeps the document order of the "recipes" object, which decides first-match lookups.
type Recipes []Recipe

func (r *Recipes) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*r = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("recipes: expected object, got %v", tok)
	}

	var out Recipes
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("recipes: expected string key, got %v", keyTok)
		}
		var ids []string
		if err := dec.Decode(&ids); err != nil {
			return fmt.Errorf("recipes[%s]: %w", name, err)
		}
		out = append(out, Recipe{Name: name, ProductIDs: ids})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = out
	return nil
}

func (r Recipes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, recipe := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(recipe.Name)
		if err != nil {
			return nil, err
		}
		ids := recipe.ProductIDs
		if ids == nil {
			ids = []string{}
		}
		val, err := json.Marshal(ids)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r Recipes) Names() []string {
	out := make([]string, 0, len(r))
	for _, recipe := range r {
		out = append(out, recipe.Name)
	}
	return out
}

// RecipeItems resolves the first recipe whose name contains, or is contained in, name.
// Unknown product ids are skipped.
func (c *Catalog) RecipeItems(name string) (Recipe, []Product, bool) {
	if c == nil {
		return Recipe{}, nil, false
	}
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return Recipe{}, nil, false
	}
	for _, recipe := range c.Recipes {
		have := strings.ToLower(recipe.Name)
		if !strings.Contains(have, want) && !strings.Contains(want, have) {
			continue
		}
		items := make([]Product, 0, len(recipe.ProductIDs))
		for _, id := range recipe.ProductIDs {
			if p, ok := c.FindByID(id); ok {
				items = append(items, p)
			}
		}
		return recipe, items, true
	}
	return Recipe{}, nil, false
}
