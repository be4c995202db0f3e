package catalog

import (
	"strings"
	"time"

	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/model"
)

// SitemapDefaults are the store-wide sitemap settings.
type SitemapDefaults struct {
	BaseURL    string
	ChangeFreq string
	Priority   float64
}

// DefaultSitemapDefaults returns weekly / 0.8 with no base URL.
func DefaultSitemapDefaults() SitemapDefaults {
	return SitemapDefaults{
		ChangeFreq: "weekly",
		Priority:   0.8,
	}
}

// Validate checks the defaults.
func (d SitemapDefaults) Validate() error {
	if !ChangeFreqs[d.ChangeFreq] {
		return common.NewValidationError("sitemap.changefreq", "unknown value %q", d.ChangeFreq)
	}
	return validatePriority("sitemap.priority", d.Priority)
}

// Loc builds the page URL of a slug.
func (d SitemapDefaults) Loc(slug string) string {
	base := strings.TrimRight(d.BaseURL, "/")
	return base + "/" + slug
}

// SitemapData derives one entry per definition in insertion order.
// lastmod comes from the definition's UpdatedAt; definitions without one
// use the exportedAt of the last imported snapshot, then the store's
// creation time.
func (s *Store) SitemapData() []model.SitemapEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fallback := s.importedAt
	if fallback.IsZero() {
		fallback = s.createdAt
	}

	entries := make([]model.SitemapEntry, 0, len(s.defs))
	for _, def := range s.defs {
		entries = append(entries, s.sitemap.entry(def, fallback))
	}
	return entries
}

func (d SitemapDefaults) entry(def model.Definition, fallback time.Time) model.SitemapEntry {
	lastMod := def.UpdatedAt
	if lastMod.IsZero() {
		lastMod = fallback
	}

	e := model.SitemapEntry{
		Loc:        d.Loc(def.Slug),
		LastMod:    lastMod.UTC().Format(time.DateOnly),
		ChangeFreq: d.ChangeFreq,
		Priority:   d.Priority,
	}
	if o := def.Sitemap; o != nil {
		if o.ChangeFreq != "" {
			e.ChangeFreq = o.ChangeFreq
		}
		if o.Priority != nil {
			e.Priority = *o.Priority
		}
	}
	return e
}
