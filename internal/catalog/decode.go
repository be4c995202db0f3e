package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/model"
)

// Wire types mirror the snapshot JSON with pointer fields so that missing
// required values can be told apart from zero values.
type (
	wireSnapshot struct {
		ExportedAt  *time.Time            `json:"exportedAt"`
		Formulas    *model.GlobalFormulas `json:"seoFormulas"`
		Version     *int                  `json:"version"`
		Calculators *[]wireDefinition     `json:"calculators"`
	}

	wireDefinition struct {
		CreatedAt   *time.Time             `json:"createdAt"`
		UpdatedAt   *time.Time             `json:"updatedAt"`
		Sitemap     *model.SitemapOverride `json:"sitemap"`
		Variables   *wireVariables         `json:"variables"`
		SEO         *model.SEO             `json:"seo"`
		ID          *string                `json:"id"`
		Name        *string                `json:"name"`
		Slug        *string                `json:"slug"`
		Category    *string                `json:"category"`
		Description string                 `json:"description"`
		Icon        string                 `json:"icon"`
		Color       string                 `json:"color"`
	}

	wireVariables struct {
		MinAmount     *float64 `json:"minAmount"`
		MaxAmount     *float64 `json:"maxAmount"`
		DefaultAmount *float64 `json:"defaultAmount"`
		MinRate       *float64 `json:"minRate"`
		MaxRate       *float64 `json:"maxRate"`
		DefaultRate   *float64 `json:"defaultRate"`
	}
)

// DecodeSnapshot parses an exported configuration. Malformed JSON, wrong
// types and missing required fields are reported as *common.ParseError.
func DecodeSnapshot(r io.Reader) (model.Snapshot, error) {
	var wire wireSnapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return model.Snapshot{}, jsonParseError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return model.Snapshot{}, &common.ParseError{Reason: "unexpected data after the configuration object"}
	}

	return wire.toModel()
}

// ImportJSON decodes data and imports it with replace semantics.
func (s *Store) ImportJSON(ctx context.Context, data []byte) error {
	snap, err := DecodeSnapshot(bytes.NewReader(data))
	if err != nil {
		return err
	}
	return s.Import(ctx, snap)
}

// EncodeSnapshot writes snap as indented JSON.
func EncodeSnapshot(w io.Writer, snap model.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

func jsonParseError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &common.ParseError{
			Path:   typeErr.Field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	return &common.ParseError{Err: err}
}

func (w wireSnapshot) toModel() (model.Snapshot, error) {
	if w.Calculators == nil {
		return model.Snapshot{}, &common.ParseError{Path: "calculators", Reason: "required field is missing"}
	}

	snap := model.Snapshot{
		Version:     model.SnapshotVersion,
		Formulas:    model.DefaultGlobalFormulas(),
		Calculators: make([]model.Definition, 0, len(*w.Calculators)),
	}
	if w.Version != nil {
		if *w.Version > model.SnapshotVersion {
			return model.Snapshot{}, &common.ParseError{
				Path:   "version",
				Reason: fmt.Sprintf("unsupported snapshot version %d", *w.Version),
			}
		}
		snap.Version = *w.Version
	}
	if w.ExportedAt != nil {
		snap.ExportedAt = *w.ExportedAt
	}
	if w.Formulas != nil {
		snap.Formulas = *w.Formulas
	}

	for i, wd := range *w.Calculators {
		def, err := wd.toModel(fmt.Sprintf("calculators[%d]", i))
		if err != nil {
			return model.Snapshot{}, err
		}
		snap.Calculators = append(snap.Calculators, def)
	}
	return snap, nil
}

func (w wireDefinition) toModel(path string) (model.Definition, error) {
	missing := func(field string) error {
		return &common.ParseError{Path: path + "." + field, Reason: "required field is missing"}
	}

	required := []struct {
		value *string
		field string
	}{
		{w.ID, "id"},
		{w.Name, "name"},
		{w.Slug, "slug"},
		{w.Category, "category"},
	}
	for _, r := range required {
		if r.value == nil {
			return model.Definition{}, missing(r.field)
		}
	}

	if w.Variables == nil {
		return model.Definition{}, missing("variables")
	}
	vars, err := w.Variables.toModel(path + ".variables")
	if err != nil {
		return model.Definition{}, err
	}

	def := model.Definition{
		ID:          *w.ID,
		Name:        *w.Name,
		Slug:        *w.Slug,
		Category:    *w.Category,
		Description: w.Description,
		Icon:        w.Icon,
		Color:       w.Color,
		Variables:   vars,
		Sitemap:     w.Sitemap,
	}
	if w.SEO != nil {
		def.SEO = *w.SEO
	}
	if w.CreatedAt != nil {
		def.CreatedAt = *w.CreatedAt
	}
	if w.UpdatedAt != nil {
		def.UpdatedAt = *w.UpdatedAt
	}
	return def, nil
}

func (w wireVariables) toModel(path string) (model.Variables, error) {
	fields := []struct {
		value *float64
		name  string
	}{
		{w.MinAmount, "minAmount"},
		{w.MaxAmount, "maxAmount"},
		{w.DefaultAmount, "defaultAmount"},
		{w.MinRate, "minRate"},
		{w.MaxRate, "maxRate"},
		{w.DefaultRate, "defaultRate"},
	}
	for _, f := range fields {
		if f.value == nil {
			return model.Variables{}, &common.ParseError{Path: path + "." + f.name, Reason: "required field is missing"}
		}
	}

	return model.Variables{
		MinAmount:     *w.MinAmount,
		MaxAmount:     *w.MaxAmount,
		DefaultAmount: *w.DefaultAmount,
		MinRate:       *w.MinRate,
		MaxRate:       *w.MaxRate,
		DefaultRate:   *w.DefaultRate,
	}, nil
}
