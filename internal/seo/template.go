// Package seo renders SEO text templates and normalizes the text that
// feeds them.
package seo

import (
	"strconv"
	"strings"
)

// Placeholders understood by Render. Any other {token} is left verbatim.
const (
	PlaceholderCategory = "{category}"
	PlaceholderYear     = "{year}"
)

// Render substitutes {category} and {year} in tmpl.
func Render(tmpl, category string, year int) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	r := strings.NewReplacer(
		PlaceholderCategory, category,
		PlaceholderYear, strconv.Itoa(year),
	)
	return r.Replace(tmpl)
}

// Fallback returns override when it is set, otherwise global.
func Fallback(override, global string) string {
	if override != "" {
		return override
	}
	return global
}
