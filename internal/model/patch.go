package model

// VariablesPatch changes individual bounds; nil fields are kept.
type VariablesPatch struct {
	MinAmount     *float64 `json:"minAmount,omitempty" yaml:"minAmount,omitempty"`
	MaxAmount     *float64 `json:"maxAmount,omitempty" yaml:"maxAmount,omitempty"`
	DefaultAmount *float64 `json:"defaultAmount,omitempty" yaml:"defaultAmount,omitempty"`
	MinRate       *float64 `json:"minRate,omitempty" yaml:"minRate,omitempty"`
	MaxRate       *float64 `json:"maxRate,omitempty" yaml:"maxRate,omitempty"`
	DefaultRate   *float64 `json:"defaultRate,omitempty" yaml:"defaultRate,omitempty"`
}

// SEOPatch changes individual SEO templates. Setting a field to the empty
// string removes the override.
type SEOPatch struct {
	Title       *string `json:"title,omitempty" yaml:"title,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	H1          *string `json:"h1,omitempty" yaml:"h1,omitempty"`
	Keywords    *string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// SitemapPatch changes individual sitemap overrides. An empty ChangeFreq
// removes that override; Reset drops both before the other fields apply.
type SitemapPatch struct {
	ChangeFreq *string  `json:"changefreq,omitempty" yaml:"changefreq,omitempty"`
	Priority   *float64 `json:"priority,omitempty" yaml:"priority,omitempty"`
	Reset      bool     `json:"reset,omitempty" yaml:"reset,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p *SitemapPatch) IsEmpty() bool {
	return p == nil || (p.ChangeFreq == nil && p.Priority == nil && !p.Reset)
}

// DefinitionPatch is a partial update of a Definition. The id is immutable
// and therefore absent.
type DefinitionPatch struct {
	Name        *string         `json:"name,omitempty" yaml:"name,omitempty"`
	Slug        *string         `json:"slug,omitempty" yaml:"slug,omitempty"`
	Category    *string         `json:"category,omitempty" yaml:"category,omitempty"`
	Description *string         `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        *string         `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color       *string         `json:"color,omitempty" yaml:"color,omitempty"`
	Variables   *VariablesPatch `json:"variables,omitempty" yaml:"variables,omitempty"`
	SEO         *SEOPatch       `json:"seo,omitempty" yaml:"seo,omitempty"`
	Sitemap     *SitemapPatch   `json:"sitemap,omitempty" yaml:"sitemap,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p DefinitionPatch) IsEmpty() bool {
	return p.Name == nil && p.Slug == nil && p.Category == nil &&
		p.Description == nil && p.Icon == nil && p.Color == nil &&
		p.Variables == nil && p.SEO == nil && p.Sitemap.IsEmpty()
}

// Apply returns a copy of def with the patch applied.
func (p DefinitionPatch) Apply(def Definition) Definition {
	out := def.Clone()

	setString(&out.Name, p.Name)
	setString(&out.Slug, p.Slug)
	setString(&out.Category, p.Category)
	setString(&out.Description, p.Description)
	setString(&out.Icon, p.Icon)
	setString(&out.Color, p.Color)

	if v := p.Variables; v != nil {
		setFloat(&out.Variables.MinAmount, v.MinAmount)
		setFloat(&out.Variables.MaxAmount, v.MaxAmount)
		setFloat(&out.Variables.DefaultAmount, v.DefaultAmount)
		setFloat(&out.Variables.MinRate, v.MinRate)
		setFloat(&out.Variables.MaxRate, v.MaxRate)
		setFloat(&out.Variables.DefaultRate, v.DefaultRate)
	}

	if s := p.SEO; s != nil {
		setString(&out.SEO.Title, s.Title)
		setString(&out.SEO.Description, s.Description)
		setString(&out.SEO.H1, s.H1)
		setString(&out.SEO.Keywords, s.Keywords)
	}

	if sp := p.Sitemap; !sp.IsEmpty() {
		override := SitemapOverride{}
		if out.Sitemap != nil && !sp.Reset {
			override = *out.Sitemap
		}
		setString(&override.ChangeFreq, sp.ChangeFreq)
		if sp.Priority != nil {
			v := *sp.Priority
			override.Priority = &v
		}
		out.Sitemap = nil
		if !override.IsEmpty() {
			out.Sitemap = &override
		}
	}

	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}
