package persona

import (
	"fmt"
	"strings"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
)

func storeContext(cat *catalog.Catalog) string {
	var b strings.Builder
	if name := cat.StoreInfo.Name; name != "" {
		fmt.Fprintf(&b, "Store: %s.\n", name)
	}
	if cats := cat.CategoryNames(); len(cats) > 0 {
		fmt.Fprintf(&b, "Available categories: %s.\n", strings.Join(cats, ", "))
	}
	if cur := cat.Currency(); len(cat.Products) > 0 {
		fmt.Fprintf(&b, "All prices are in %s.\n", cur)
	}
	return b.String()
}

func groceryContext(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(storeContext(cat))
	if eta := cat.StoreInfo.DeliveryTime; eta != "" {
		fmt.Fprintf(&b, "Delivery time: %s.\n", eta)
	}
	if names := cat.Recipes.Names(); len(names) > 0 {
		fmt.Fprintf(&b, "Recipes you can add in one go: %s.\n", strings.Join(names, ", "))
	}
	return b.String()
}

func showContext(show catalog.Show) string {
	name := show.Info.Name
	if name == "" {
		name = "Improv Battle"
	}
	return fmt.Sprintf("Show: %s. Rounds per game: %d. Scenarios in the pool: %d.",
		name, show.MaxRounds(), len(show.Scenarios))
}

func faqContext(faq catalog.FAQ) string {
	var b strings.Builder
	if faq.Company.Name != "" {
		fmt.Fprintf(&b, "You represent %s.", faq.Company.Name)
		if faq.Company.Description != "" {
			fmt.Fprintf(&b, " %s", faq.Company.Description)
		}
		b.WriteString("\n")
	}
	if len(faq.Products) > 0 {
		b.WriteString("\nProducts:\n")
		for _, p := range faq.Products {
			fmt.Fprintf(&b, "- %s", p.Name)
			if p.Description != "" {
				fmt.Fprintf(&b, ": %s", p.Description)
			}
			if p.UseCase != "" {
				fmt.Fprintf(&b, " (best for %s)", p.UseCase)
			}
			b.WriteString("\n")
		}
	}
	if lines := faq.PricingLines(); len(lines) > 0 {
		b.WriteString("\nPricing:\n")
		for _, line := range lines {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}
	if len(faq.Entries) > 0 {
		b.WriteString("\nFAQ:\n")
		for _, e := range faq.Entries {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", e.Question, e.Answer)
		}
	}
	return b.String()
}

func conceptContext(concepts []catalog.Concept) string {
	if len(concepts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Concepts you can teach:\n")
	for _, c := range concepts {
		fmt.Fprintf(&b, "- %s (%s): %s", c.Title, c.ID, c.Summary)
		if c.SampleQuestion != "" {
			fmt.Fprintf(&b, " Sample question: %s", c.SampleQuestion)
		}
		b.WriteString("\n")
	}
	return b.String()
}
