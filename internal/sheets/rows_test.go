package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/calcman/internal/catalog"
	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/testutil/calculators"
)

func TestPrepareRows(t *testing.T) {
	formulas := model.GlobalFormulas{
		Title:       "{category} X {year}",
		Description: "global {category}",
		H1:          "{category}",
	}

	rows := PrepareRows(
		[]model.Definition{calculators.Business(), calculators.Mortgage()},
		formulas, 2025, catalog.SitemapDefaults{BaseURL: "https://calc.example.com/"},
	)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])

	business := rows[1]
	require.Len(t, business, len(Header))
	assert.Equal(t, "business", business[0])
	assert.Equal(t, 500000.0, business[firstBoundColumn])
	assert.Equal(t, 12.0, business[lastBoundColumn])
	assert.Equal(t, "Бизнес-кредит калькулятор 2025 | Рассчитать бизнес-кредит", business[10])
	assert.Equal(t, "https://calc.example.com/biznes-kredit-kalkulyator", business[14])

	mortgage := rows[2]
	assert.Equal(t, "Ипотека X 2025", mortgage[10], "no override falls back to the global title")
	assert.Equal(t, "global Ипотека", mortgage[11])
	assert.Equal(t, "", mortgage[13], "keywords have no global fallback")
}

func TestPrepareRows_NoBaseURL(t *testing.T) {
	rows := PrepareRows([]model.Definition{calculators.Leasing()}, model.DefaultGlobalFormulas(), 2025, catalog.SitemapDefaults{})
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[1][14])
}
