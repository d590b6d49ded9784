package tool

import (
	"strings"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/commerce"
)

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// money renders an amount the way the stores speak prices: "₹1499", "$12.50".
func money(amount float64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "INR"
	}
	if sym, ok := currencySymbols[code]; ok {
		return sym + commerce.FormatAmount(amount)
	}
	return code + " " + commerce.FormatAmount(amount)
}

func sizeSuffix(size string) string {
	if size == "" {
		return ""
	}
	return " (" + size + ")"
}

// datePart keeps the YYYY-MM-DD prefix of an RFC3339 stamp.
func datePart(stamp string) string {
	if len(stamp) >= 10 {
		return stamp[:10]
	}
	return stamp
}
