package commerce

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
)

var ordinals = [...][2]string{
	{"first", "1st"},
	{"second", "2nd"},
	{"third", "3rd"},
	{"fourth", "4th"},
	{"fifth", "5th"},
}

// positional matches "2", "#2", "number 2", "item 2" or "option 2" as the whole reference.
var positional = regexp.MustCompile(`^(?:the\s+)?(?:#|no\.?\s*|number\s+|item\s+|option\s+)?([1-9])(?:\s+one)?$`)

// ordinalIndex finds the first ordinal word mentioned in ref, or a bare position number.
func ordinalIndex(ref string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(ref))
	for i, words := range ordinals {
		if strings.Contains(lower, words[0]) || strings.Contains(lower, words[1]) {
			return i, true
		}
	}
	if m := positional.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n - 1, true
	}
	return 0, false
}

// ResolveProduct turns a spoken reference into a catalog product. Ordinals ("the second
// one") index into lastShown when it is long enough; anything else is a first-match
// name lookup.
func ResolveProduct(c *catalog.Catalog, lastShown []string, ref string) (catalog.Product, error) {
	if len(lastShown) > 0 {
		if i, ok := ordinalIndex(ref); ok && i < len(lastShown) {
			if p, found := c.FindByID(lastShown[i]); found {
				return p, nil
			}
		}
	}
	if p, ok := c.FindByName(ref); ok {
		return p, nil
	}
	return catalog.Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, ref)
}

// ShownIDs keeps the ids of the first limit products for later ordinal references.
func ShownIDs(products []catalog.Product, limit int) []string {
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}
