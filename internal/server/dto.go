package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/seo"
)

// Request bodies are decoded into these types, stripped of markup and only
// then converted to the model.
type (
	variablesDTO struct {
		MinAmount     *float64 `json:"minAmount"`
		MaxAmount     *float64 `json:"maxAmount"`
		DefaultAmount *float64 `json:"defaultAmount"`
		MinRate       *float64 `json:"minRate"`
		MaxRate       *float64 `json:"maxRate"`
		DefaultRate   *float64 `json:"defaultRate"`
	}

	seoDTO struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		H1          *string `json:"h1"`
		Keywords    *string `json:"keywords"`
	}

	// calculatorRequest is the body of POST /api/calculators and the
	// calculator_data field of the CMS endpoint.
	calculatorRequest struct {
		Variables   *variablesDTO          `json:"variables"`
		SEO         *seoDTO                `json:"seo"`
		Sitemap     *model.SitemapOverride `json:"sitemap"`
		ID          string                 `json:"id"`
		Name        string                 `json:"name"`
		Slug        string                 `json:"slug"`
		Category    string                 `json:"category"`
		Description string                 `json:"description"`
		Icon        string                 `json:"icon"`
		Color       string                 `json:"color"`
	}

	// updateRequest is the body of PUT /api/calculators/{id}. Absent fields
	// are left unchanged.
	updateRequest struct {
		ID          *string          `json:"id"`
		Name        *string          `json:"name"`
		Slug        *string          `json:"slug"`
		Category    *string          `json:"category"`
		Description *string          `json:"description"`
		Icon        *string          `json:"icon"`
		Color       *string          `json:"color"`
		Variables   *variablesDTO    `json:"variables"`
		SEO         *seoDTO          `json:"seo"`
		Sitemap     *sitemapPatchDTO `json:"sitemap"`
	}

	// sitemapPatchDTO changes individual sitemap overrides; "reset" drops
	// the existing ones first.
	sitemapPatchDTO struct {
		ChangeFreq *string  `json:"changefreq"`
		Priority   *float64 `json:"priority"`
		Reset      bool     `json:"reset"`
	}

	formulasRequest struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		H1          string `json:"h1"`
	}
)

// decodeJSON reads exactly one JSON value from r into dst.
func decodeJSON(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return maxErr
		}
		if errors.Is(err, io.EOF) {
			return &common.ParseError{Reason: "request body is empty"}
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &common.ParseError{Path: typeErr.Field, Reason: "expected " + typeErr.Type.String()}
		}
		return &common.ParseError{Err: err}
	}
	if dec.More() {
		return &common.ParseError{Reason: "unexpected data after the JSON value"}
	}
	return nil
}

func decodeJSONString(raw string, dst any) error {
	return decodeJSON(strings.NewReader(raw), dst)
}

func clean(s string) string {
	return seo.StripMarkup(s)
}

func cleanPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := clean(*s)
	return &v
}

func (v *variablesDTO) toModel() (model.Variables, error) {
	if v == nil {
		return model.Variables{}, &common.ParseError{Path: "variables", Reason: "required field is missing"}
	}
	fields := []struct {
		value *float64
		name  string
	}{
		{v.MinAmount, "minAmount"},
		{v.MaxAmount, "maxAmount"},
		{v.DefaultAmount, "defaultAmount"},
		{v.MinRate, "minRate"},
		{v.MaxRate, "maxRate"},
		{v.DefaultRate, "defaultRate"},
	}
	for _, f := range fields {
		if f.value == nil {
			return model.Variables{}, &common.ParseError{Path: "variables." + f.name, Reason: "required field is missing"}
		}
	}
	return model.Variables{
		MinAmount:     *v.MinAmount,
		MaxAmount:     *v.MaxAmount,
		DefaultAmount: *v.DefaultAmount,
		MinRate:       *v.MinRate,
		MaxRate:       *v.MaxRate,
		DefaultRate:   *v.DefaultRate,
	}, nil
}

func (v *variablesDTO) toPatch() *model.VariablesPatch {
	if v == nil {
		return nil
	}
	return &model.VariablesPatch{
		MinAmount:     v.MinAmount,
		MaxAmount:     v.MaxAmount,
		DefaultAmount: v.DefaultAmount,
		MinRate:       v.MinRate,
		MaxRate:       v.MaxRate,
		DefaultRate:   v.DefaultRate,
	}
}

func (s *seoDTO) toModel() model.SEO {
	if s == nil {
		return model.SEO{}
	}
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return clean(*p)
	}
	return model.SEO{
		Title:       deref(s.Title),
		Description: deref(s.Description),
		H1:          deref(s.H1),
		Keywords:    deref(s.Keywords),
	}
}

func (s *seoDTO) toPatch() *model.SEOPatch {
	if s == nil {
		return nil
	}
	return &model.SEOPatch{
		Title:       cleanPtr(s.Title),
		Description: cleanPtr(s.Description),
		H1:          cleanPtr(s.H1),
		Keywords:    cleanPtr(s.Keywords),
	}
}

func cleanSitemap(o *model.SitemapOverride) *model.SitemapOverride {
	if o == nil {
		return nil
	}
	out := &model.SitemapOverride{ChangeFreq: strings.ToLower(clean(o.ChangeFreq))}
	if o.Priority != nil {
		p := *o.Priority
		out.Priority = &p
	}
	return out
}

func (d *sitemapPatchDTO) toPatch() *model.SitemapPatch {
	if d == nil {
		return nil
	}
	out := &model.SitemapPatch{Reset: d.Reset}
	if d.ChangeFreq != nil {
		v := strings.ToLower(clean(*d.ChangeFreq))
		out.ChangeFreq = &v
	}
	if d.Priority != nil {
		v := *d.Priority
		out.Priority = &v
	}
	return out
}

func (req calculatorRequest) toDefinition() (model.Definition, error) {
	vars, err := req.Variables.toModel()
	if err != nil {
		return model.Definition{}, err
	}
	return model.Definition{
		ID:          strings.TrimSpace(req.ID),
		Name:        clean(req.Name),
		Slug:        strings.TrimSpace(req.Slug),
		Category:    clean(req.Category),
		Description: clean(req.Description),
		Icon:        clean(req.Icon),
		Color:       clean(req.Color),
		Variables:   vars,
		SEO:         req.SEO.toModel(),
		Sitemap:     cleanSitemap(req.Sitemap),
	}, nil
}

func (req updateRequest) toPatch(id string) (model.DefinitionPatch, error) {
	if req.ID != nil && strings.TrimSpace(*req.ID) != id {
		return model.DefinitionPatch{}, common.NewValidationError("id", "cannot be changed from %q", id)
	}
	var slug *string
	if req.Slug != nil {
		v := strings.TrimSpace(*req.Slug)
		slug = &v
	}
	return model.DefinitionPatch{
		Name:        cleanPtr(req.Name),
		Slug:        slug,
		Category:    cleanPtr(req.Category),
		Description: cleanPtr(req.Description),
		Icon:        cleanPtr(req.Icon),
		Color:       cleanPtr(req.Color),
		Variables:   req.Variables.toPatch(),
		SEO:         req.SEO.toPatch(),
		Sitemap:     req.Sitemap.toPatch(),
	}, nil
}

func (req formulasRequest) toModel() model.GlobalFormulas {
	return model.GlobalFormulas{
		Title:       clean(req.Title),
		Description: clean(req.Description),
		H1:          clean(req.H1),
	}
}
