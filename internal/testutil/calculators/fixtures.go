// Package calculators provides calculator definitions for tests. Every
// constructor returns a fresh value, so tests may modify what they get.
package calculators

import "github.com/Veraticus/calcman/internal/model"

// ID is a strongly-typed fixture calculator id.
type ID string

// String returns the id as a plain string.
func (id ID) String() string { return string(id) }

// Fixture calculator ids.
const (
	IDBusiness ID = "business"
	IDLeasing  ID = "leasing"
	IDMortgage ID = "mortgage"
)

// Business is a business loan calculator with its own SEO templates.
func Business() model.Definition {
	return model.Definition{
		ID:          IDBusiness.String(),
		Name:        "Бизнес-кредит",
		Slug:        "biznes-kredit-kalkulyator",
		Category:    "Бизнес-кредит",
		Description: "Расчет кредита для бизнеса",
		Icon:        "🏢",
		Color:       "#17a2b8",
		Variables: model.Variables{
			MinAmount:     500000,
			MaxAmount:     50000000,
			DefaultAmount: 5000000,
			MinRate:       8,
			MaxRate:       25,
			DefaultRate:   12.0,
		},
		SEO: model.SEO{
			Title:       "{category} калькулятор {year} | Рассчитать бизнес-кредит",
			Description: "{category} калькулятор {year} - расчет кредита для бизнеса, инвестиций и развития компании",
			H1:          "{category} калькулятор",
			Keywords:    "бизнес кредит калькулятор, кредит для бизнеса, инвестиционный кредит",
		},
	}
}

// Leasing is a leasing calculator with its own SEO templates.
func Leasing() model.Definition {
	return model.Definition{
		ID:          IDLeasing.String(),
		Name:        "Лизинг",
		Slug:        "lizing-kalkulyator",
		Category:    "Лизинг",
		Description: "Расчет лизинговых платежей",
		Icon:        "🚛",
		Color:       "#6f42c1",
		Variables: model.Variables{
			MinAmount:     100000,
			MaxAmount:     10000000,
			DefaultAmount: 2000000,
			MinRate:       5,
			MaxRate:       20,
			DefaultRate:   10.0,
		},
		SEO: model.SEO{
			Title:       "{category} калькулятор {year} | Рассчитать лизинговые платежи",
			Description: "{category} калькулятор {year} - расчет лизинговых платежей и условий лизинга",
			H1:          "{category} калькулятор",
			Keywords:    "лизинг калькулятор, лизинговые платежи, лизинг оборудования",
		},
	}
}

// Mortgage is a mortgage calculator without SEO overrides, so it always
// renders through the global formulas.
func Mortgage() model.Definition {
	return model.Definition{
		ID:          IDMortgage.String(),
		Name:        "Ипотека",
		Slug:        "ipoteka-kalkulyator",
		Category:    "Ипотека",
		Description: "Расчет ипотечного кредита",
		Icon:        "🏠",
		Color:       "#28a745",
		Variables: model.Variables{
			MinAmount:     300000,
			MaxAmount:     30000000,
			DefaultAmount: 3000000,
			MinRate:       3,
			MaxRate:       18,
			DefaultRate:   9.5,
		},
	}
}

// Standard returns Business, Leasing and Mortgage in that order.
func Standard() []model.Definition {
	return []model.Definition{Business(), Leasing(), Mortgage()}
}
