// Package model defines the calculator catalog data types shared by every layer.
package model

import "time"

// Variables holds the numeric bounds of a calculator.
type Variables struct {
	MinAmount     float64 `json:"minAmount" yaml:"minAmount"`
	MaxAmount     float64 `json:"maxAmount" yaml:"maxAmount"`
	DefaultAmount float64 `json:"defaultAmount" yaml:"defaultAmount"`
	MinRate       float64 `json:"minRate" yaml:"minRate"`
	MaxRate       float64 `json:"maxRate" yaml:"maxRate"`
	DefaultRate   float64 `json:"defaultRate" yaml:"defaultRate"`
}

// SEO holds per-calculator text templates. An empty field means the
// calculator has no override and the global formula applies.
type SEO struct {
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	H1          string `json:"h1,omitempty" yaml:"h1,omitempty"`
	Keywords    string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// SitemapOverride replaces the store-wide sitemap defaults for one calculator.
type SitemapOverride struct {
	Priority   *float64 `json:"priority,omitempty" yaml:"priority,omitempty"`
	ChangeFreq string   `json:"changefreq,omitempty" yaml:"changefreq,omitempty"`
}

// IsEmpty reports whether o overrides nothing.
func (o *SitemapOverride) IsEmpty() bool {
	return o == nil || (o.ChangeFreq == "" && o.Priority == nil)
}

// Definition is one calculator's configuration record.
type Definition struct {
	CreatedAt   time.Time        `json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time        `json:"updatedAt" yaml:"-"`
	Sitemap     *SitemapOverride `json:"sitemap,omitempty" yaml:"sitemap,omitempty"`
	SEO         SEO              `json:"seo" yaml:"seo"`
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Slug        string           `json:"slug" yaml:"slug"`
	Category    string           `json:"category" yaml:"category"`
	Description string           `json:"description" yaml:"description"`
	Icon        string           `json:"icon" yaml:"icon"`
	Color       string           `json:"color" yaml:"color"`
	Variables   Variables        `json:"variables" yaml:"variables"`
}

// Clone returns a deep copy of d.
func (d Definition) Clone() Definition {
	if d.Sitemap != nil {
		override := *d.Sitemap
		if override.Priority != nil {
			p := *override.Priority
			override.Priority = &p
		}
		d.Sitemap = &override
	}
	return d
}

// GlobalFormulas is the fallback SEO template shared by every calculator
// lacking its own override.
type GlobalFormulas struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	H1          string `json:"h1" yaml:"h1"`
}

// DefaultGlobalFormulas returns the formulas a new catalog starts with.
func DefaultGlobalFormulas() GlobalFormulas {
	return GlobalFormulas{
		Title:       "{category} калькулятор {year} | Рассчитать онлайн",
		Description: "{category} калькулятор {year} - онлайн расчет платежей и условий",
		H1:          "{category} калькулятор",
	}
}

// RenderedSEO is the SEO text of one calculator after fallback and
// placeholder substitution.
type RenderedSEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	H1          string `json:"h1"`
	Keywords    string `json:"keywords"`
}

// SitemapEntry describes one <url> record of the sitemap.
type SitemapEntry struct {
	Loc        string  `json:"loc"`
	LastMod    string  `json:"lastmod"`
	ChangeFreq string  `json:"changefreq"`
	Priority   float64 `json:"priority"`
}
