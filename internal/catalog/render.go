package catalog

import (
	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/seo"
)

// RenderSEO resolves every SEO field of def against the global formulas
// and substitutes the placeholders for year. Keywords have no global
// fallback.
func RenderSEO(def model.Definition, formulas model.GlobalFormulas, year int) model.RenderedSEO {
	return model.RenderedSEO{
		Title:       seo.Render(seo.Fallback(def.SEO.Title, formulas.Title), def.Category, year),
		Description: seo.Render(seo.Fallback(def.SEO.Description, formulas.Description), def.Category, year),
		H1:          seo.Render(seo.Fallback(def.SEO.H1, formulas.H1), def.Category, year),
		Keywords:    seo.Render(def.SEO.Keywords, def.Category, year),
	}
}

// RenderSEO renders the SEO text of the calculator identified by id.
func (s *Store) RenderSEO(id string, year int) (model.RenderedSEO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return model.RenderedSEO{}, common.NotFoundError(id)
	}
	return RenderSEO(s.defs[pos], s.formulas, year), nil
}
