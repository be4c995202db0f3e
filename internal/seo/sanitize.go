package seo

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// maxStripPasses bounds StripMarkup on deeply entity-encoded input.
const maxStripPasses = 8

// StripMarkup reduces raw to trimmed plain text: HTML elements are removed
// and entities decoded, so "A & B" survives unchanged. Decoding can expose
// new markup ("&lt;b&gt;"), so passes repeat until the text is stable;
// StripMarkup(StripMarkup(s)) == StripMarkup(s).
func StripMarkup(raw string) string {
	text := strings.TrimSpace(raw)
	for range maxStripPasses {
		next := stripOnce(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func stripOnce(text string) string {
	if text == "" || !strings.ContainsAny(text, "<>&") {
		return text
	}
	cleaned := textSanitizer().Sanitize(text)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
