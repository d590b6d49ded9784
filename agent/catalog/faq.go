package catalog

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

type Company struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Offering struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	UseCase     string `json:"use_case,omitempty"`
}

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// FAQ is the sales knowledge document an SDR persona answers from.
type FAQ struct {
	Company  Company                   `json:"company"`
	Products []Offering                `json:"products,omitempty"`
	Pricing  map[string]map[string]any `json:"pricing,omitempty"`
	Entries  []FAQEntry                `json:"faq,omitempty"`
}

func EmptyFAQ() FAQ {
	return FAQ{}
}

func LoadFAQ(path string) (FAQ, error) {
	return loadJSON(path, EmptyFAQ)
}

// PricingLines renders pricing as "plan: key=value, ..." with sorted keys.
func (f FAQ) PricingLines() []string {
	plans := make([]string, 0, len(f.Pricing))
	for plan := range f.Pricing {
		plans = append(plans, plan)
	}
	sort.Strings(plans)

	out := make([]string, 0, len(plans))
	for _, plan := range plans {
		fields := f.Pricing[plan]
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
		}
		out = append(out, plan+": "+strings.Join(parts, ", "))
	}
	return out
}

func searchTokens(query string) []string {
	var out []string
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		tok = strings.Trim(tok, ".,?!;:'\"")
		if len(tok) >= 3 && !slices.Contains(out, tok) {
			out = append(out, tok)
		}
	}
	return out
}

// Search ranks entries by how many query words (3+ letters) they mention and returns
// at most limit of them. Ties keep document order.
func (f FAQ) Search(query string, limit int) []FAQEntry {
	tokens := searchTokens(query)
	if len(tokens) == 0 {
		return nil
	}

	type hit struct {
		entry FAQEntry
		score int
	}
	var hits []hit
	for _, e := range f.Entries {
		text := strings.ToLower(e.Question + " " + e.Answer)
		score := 0
		for _, tok := range tokens {
			if strings.Contains(text, tok) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, hit{entry: e, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]FAQEntry, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.entry)
	}
	return out
}
