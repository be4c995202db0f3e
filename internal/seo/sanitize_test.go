package seo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Бизнес-кредит", "Бизнес-кредит"},
		{"trims whitespace", "  Лизинг \n", "Лизинг"},
		{"removes tags", "<b>Лизинг</b> онлайн", "Лизинг онлайн"},
		{"drops script content", "<script>alert(1)</script>Кредит", "Кредит"},
		{"keeps ampersand", "Кредит & займ", "Кредит & займ"},
		{"keeps placeholders", "{category} калькулятор {year}", "{category} калькулятор {year}"},
		{"decodes entities", "Кредит &amp; займ", "Кредит & займ"},
		{"strips markup hidden in entities", "&lt;b&gt;Лизинг&lt;/b&gt;", "Лизинг"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkup(tt.in))
		})
	}
}

func TestStripMarkup_Idempotent(t *testing.T) {
	inputs := []string{
		"  Лизинг \n",
		"Кредит &amp; займ",
		"Кредит &amp;amp; займ",
		"&amp;lt;b&amp;gt;Ипотека&amp;lt;/b&amp;gt;",
		"<p>  <i>Авто</i>кредит </p>",
		"a < b > c",
		"{category} {year}",
	}

	for _, in := range inputs {
		once := StripMarkup(in)
		assert.Equal(t, once, StripMarkup(once), "input %q", in)
	}
}
