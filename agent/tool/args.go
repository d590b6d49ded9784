package tool

import (
	"strings"

	"github.com/spf13/cast"
)

// Args are decoded tool-call arguments. Models send numbers as JSON numbers or as
// quoted strings; both are accepted.
type Args map[string]any

func (a Args) String(key string) string {
	v, ok := a[key]
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func (a Args) Has(key string) bool {
	v, ok := a[key]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Int falls back to def when the key is missing or not a number.
func (a Args) Int(key string, def int) int {
	if !a.Has(key) {
		return def
	}
	n, err := cast.ToIntE(trimmed(a[key]))
	if err != nil {
		return def
	}
	return n
}

func (a Args) Float(key string, def float64) float64 {
	if !a.Has(key) {
		return def
	}
	f, err := cast.ToFloat64E(trimmed(a[key]))
	if err != nil {
		return def
	}
	return f
}

func (a Args) Bool(key string, def bool) bool {
	if !a.Has(key) {
		return def
	}
	b, err := cast.ToBoolE(trimmed(a[key]))
	if err != nil {
		return def
	}
	return b
}

func trimmed(v any) any {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return v
}
