package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/seo"
)

// ChangeFreqs lists the changefreq values allowed by the sitemap protocol.
var ChangeFreqs = map[string]bool{
	"always":  true,
	"hourly":  true,
	"daily":   true,
	"weekly":  true,
	"monthly": true,
	"yearly":  true,
	"never":   true,
}

// ValidateDefinition checks a single definition in isolation.
func ValidateDefinition(def model.Definition) error {
	required := []struct {
		field string
		value string
	}{
		{"id", def.ID},
		{"name", def.Name},
		{"category", def.Category},
		{"slug", def.Slug},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return common.NewValidationError(r.field, "must not be empty")
		}
	}

	if strings.ContainsAny(def.ID, "/?#% \t\n") {
		return common.NewValidationError("id", "%q must not contain whitespace or URL delimiters", def.ID)
	}
	if !seo.IsValidSlug(def.Slug) {
		return common.NewValidationError("slug", "%q is not a lowercase hyphenated slug", def.Slug)
	}

	if err := validateVariables(def.Variables); err != nil {
		return err
	}

	return ValidateSitemapOverride(def.Sitemap)
}

// ValidateSitemapOverride checks per-definition sitemap settings.
func ValidateSitemapOverride(o *model.SitemapOverride) error {
	if o == nil {
		return nil
	}
	if o.ChangeFreq != "" && !ChangeFreqs[o.ChangeFreq] {
		return common.NewValidationError("sitemap.changefreq", "unknown value %q", o.ChangeFreq)
	}
	if o.Priority != nil {
		if err := validatePriority("sitemap.priority", *o.Priority); err != nil {
			return err
		}
	}
	return nil
}

func validatePriority(field string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return common.NewValidationError(field, "%v is outside [0, 1]", p)
	}
	return nil
}

func validateVariables(v model.Variables) error {
	if err := validateRange("variables", "Amount", v.MinAmount, v.DefaultAmount, v.MaxAmount); err != nil {
		return err
	}
	return validateRange("variables", "Rate", v.MinRate, v.DefaultRate, v.MaxRate)
}

// validateRange enforces 0 <= min <= def <= max for one bounds triple.
func validateRange(prefix, suffix string, lo, def, hi float64) error {
	field := func(name string) string {
		return fmt.Sprintf("%s.%s%s", prefix, name, suffix)
	}

	names := [3]string{"min", "default", "max"}
	for i, v := range [3]float64{lo, def, hi} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return common.NewValidationError(field(names[i]), "must be a finite number")
		}
	}
	if lo < 0 {
		return common.NewValidationError(field("min"), "%v must not be negative", lo)
	}
	if lo > hi {
		return common.NewValidationError(field("min"), "%v exceeds %s %v", lo, field("max"), hi)
	}
	if def < lo || def > hi {
		return common.NewValidationError(field("default"), "%v is outside [%v, %v]", def, lo, hi)
	}
	return nil
}

// validateUnique checks def against every other definition in defs.
// skip is the index of the definition being replaced, or -1.
func validateUnique(defs []model.Definition, def model.Definition, skip int) error {
	for i, other := range defs {
		if i == skip {
			continue
		}
		if other.ID == def.ID {
			return common.NewValidationError("id", "%q already exists", def.ID)
		}
		if other.Slug == def.Slug {
			return common.NewValidationError("slug", "%q is already used by %q", def.Slug, other.ID)
		}
	}
	return nil
}
