package catalog

import (
	"strings"

	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/seo"
)

// plainText reduces every human-readable field of def to markup-free,
// trimmed text. Every write path of the store goes through it.
func plainText(def model.Definition) model.Definition {
	def.ID = strings.TrimSpace(def.ID)
	def.Slug = strings.TrimSpace(def.Slug)
	def.Name = seo.StripMarkup(def.Name)
	def.Category = seo.StripMarkup(def.Category)
	def.Description = seo.StripMarkup(def.Description)
	def.Icon = seo.StripMarkup(def.Icon)
	def.Color = seo.StripMarkup(def.Color)
	def.SEO = model.SEO{
		Title:       seo.StripMarkup(def.SEO.Title),
		Description: seo.StripMarkup(def.SEO.Description),
		H1:          seo.StripMarkup(def.SEO.H1),
		Keywords:    seo.StripMarkup(def.SEO.Keywords),
	}
	if def.Sitemap != nil {
		override := *def.Sitemap
		override.ChangeFreq = strings.ToLower(strings.TrimSpace(override.ChangeFreq))
		def.Sitemap = &override
	}
	return def
}

func plainFormulas(f model.GlobalFormulas) model.GlobalFormulas {
	return model.GlobalFormulas{
		Title:       seo.StripMarkup(f.Title),
		Description: seo.StripMarkup(f.Description),
		H1:          seo.StripMarkup(f.H1),
	}
}
