package sheets

import (
	"github.com/Veraticus/calcman/internal/catalog"
	"github.com/Veraticus/calcman/internal/model"
)

// Header is the first row of the published sheet.
var Header = []any{
	"ID", "Name", "Slug", "Category",
	"Min amount", "Max amount", "Default amount",
	"Min rate", "Max rate", "Default rate",
	"Title", "Description", "H1", "Keywords",
	"URL",
}

// Zero-based indexes of the numeric bound columns.
const (
	firstBoundColumn = 4
	lastBoundColumn  = 9
)

// PrepareRows renders one row per definition with its SEO text resolved
// for year. pages builds the URL column; an empty base URL leaves it blank.
func PrepareRows(defs []model.Definition, formulas model.GlobalFormulas, year int, pages catalog.SitemapDefaults) [][]any {
	values := make([][]any, 0, len(defs)+1)
	values = append(values, Header)

	for _, def := range defs {
		rendered := catalog.RenderSEO(def, formulas, year)

		url := ""
		if pages.BaseURL != "" {
			url = pages.Loc(def.Slug)
		}

		v := def.Variables
		values = append(values, []any{
			def.ID, def.Name, def.Slug, def.Category,
			v.MinAmount, v.MaxAmount, v.DefaultAmount,
			v.MinRate, v.MaxRate, v.DefaultRate,
			rendered.Title, rendered.Description, rendered.H1, rendered.Keywords,
			url,
		})
	}
	return values
}
