package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/calcman/internal/model"
)

const definitionColumns = `
	id, name, slug, category, description, icon, color,
	min_amount, max_amount, default_amount, min_rate, max_rate, default_rate,
	seo_title, seo_description, seo_h1, seo_keywords,
	changefreq, priority, created_at, updated_at`

// SaveDefinition appends def, or updates the stored calculator with the same
// id without moving it.
func (s *SQLiteStorage) SaveDefinition(ctx context.Context, def model.Definition) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDefinition(def); err != nil {
		return err
	}

	changefreq, priority := sitemapColumns(def.Sitemap)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calculators (position,`+definitionColumns+`)
		VALUES (
			(SELECT COALESCE(MAX(position) + 1, 0) FROM calculators),
			?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?
		)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			slug = excluded.slug,
			category = excluded.category,
			description = excluded.description,
			icon = excluded.icon,
			color = excluded.color,
			min_amount = excluded.min_amount,
			max_amount = excluded.max_amount,
			default_amount = excluded.default_amount,
			min_rate = excluded.min_rate,
			max_rate = excluded.max_rate,
			default_rate = excluded.default_rate,
			seo_title = excluded.seo_title,
			seo_description = excluded.seo_description,
			seo_h1 = excluded.seo_h1,
			seo_keywords = excluded.seo_keywords,
			changefreq = excluded.changefreq,
			priority = excluded.priority,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		definitionArgs(def, changefreq, priority)...,
	)
	if err != nil {
		return fmt.Errorf("failed to save calculator %q: %w", def.ID, err)
	}

	slog.Debug("saved calculator", "id", def.ID)
	return nil
}

// DeleteDefinition removes the calculator identified by id. Deleting an
// unknown id is not an error.
func (s *SQLiteStorage) DeleteDefinition(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM calculators WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete calculator %q: %w", id, err)
	}
	return nil
}

func insertDefinitionTx(ctx context.Context, tx *sql.Tx, def model.Definition, position int) error {
	changefreq, priority := sitemapColumns(def.Sitemap)
	args := append([]any{position}, definitionArgs(def, changefreq, priority)...)

	_, err := tx.ExecContext(ctx, `
		INSERT INTO calculators (position,`+definitionColumns+`)
		VALUES (?,
			?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?
		)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to insert calculator %q: %w", def.ID, err)
	}
	return nil
}

func (s *SQLiteStorage) loadDefinitions(ctx context.Context) ([]model.Definition, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+definitionColumns+` FROM calculators ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query calculators: %w", err)
	}
	defer rows.Close()

	defs := []model.Definition{}
	for rows.Next() {
		def, err := scanDefinition(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calculators: %w", err)
	}

	slog.Debug("loaded calculators", "count", len(defs))
	return defs, nil
}

func scanDefinition(rows *sql.Rows) (model.Definition, error) {
	var (
		def                  model.Definition
		changefreq           string
		priority             sql.NullFloat64
		createdAt, updatedAt sql.NullString
	)

	err := rows.Scan(
		&def.ID, &def.Name, &def.Slug, &def.Category, &def.Description, &def.Icon, &def.Color,
		&def.Variables.MinAmount, &def.Variables.MaxAmount, &def.Variables.DefaultAmount,
		&def.Variables.MinRate, &def.Variables.MaxRate, &def.Variables.DefaultRate,
		&def.SEO.Title, &def.SEO.Description, &def.SEO.H1, &def.SEO.Keywords,
		&changefreq, &priority, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Definition{}, fmt.Errorf("failed to scan calculator: %w", err)
	}

	if changefreq != "" || priority.Valid {
		def.Sitemap = &model.SitemapOverride{ChangeFreq: changefreq}
		if priority.Valid {
			p := priority.Float64
			def.Sitemap.Priority = &p
		}
	}

	if def.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Definition{}, fmt.Errorf("calculator %q created_at: %w", def.ID, err)
	}
	if def.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Definition{}, fmt.Errorf("calculator %q updated_at: %w", def.ID, err)
	}
	return def, nil
}

func sitemapColumns(o *model.SitemapOverride) (string, sql.NullFloat64) {
	if o == nil {
		return "", sql.NullFloat64{}
	}
	var priority sql.NullFloat64
	if o.Priority != nil {
		priority = sql.NullFloat64{Float64: *o.Priority, Valid: true}
	}
	return o.ChangeFreq, priority
}

func definitionArgs(def model.Definition, changefreq string, priority sql.NullFloat64) []any {
	v := def.Variables
	return []any{
		def.ID, def.Name, def.Slug, def.Category, def.Description, def.Icon, def.Color,
		v.MinAmount, v.MaxAmount, v.DefaultAmount, v.MinRate, v.MaxRate, v.DefaultRate,
		def.SEO.Title, def.SEO.Description, def.SEO.H1, def.SEO.Keywords,
		changefreq, priority, formatTime(def.CreatedAt), formatTime(def.UpdatedAt),
	}
}
