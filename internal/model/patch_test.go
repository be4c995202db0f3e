package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func testDefinition() Definition {
	return Definition{
		ID:       "leasing",
		Name:     "Лизинг",
		Slug:     "lizing-kalkulyator",
		Category: "Лизинг",
		Variables: Variables{
			MinAmount: 100000, MaxAmount: 10000000, DefaultAmount: 2000000,
			MinRate: 5, MaxRate: 20, DefaultRate: 10,
		},
		SEO: SEO{Title: "{category} калькулятор {year}"},
	}
}

func TestDefinitionPatch_Apply(t *testing.T) {
	def := testDefinition()

	patch := DefinitionPatch{
		Name:      ptr("Лизинг авто"),
		Variables: &VariablesPatch{MaxRate: ptr(25.0)},
		SEO:       &SEOPatch{Title: ptr("")},
	}
	got := patch.Apply(def)

	assert.Equal(t, "Лизинг авто", got.Name)
	assert.Equal(t, 25.0, got.Variables.MaxRate)
	assert.Equal(t, 5.0, got.Variables.MinRate)
	assert.Empty(t, got.SEO.Title, "empty string clears the override")
	assert.Equal(t, "lizing-kalkulyator", got.Slug)

	// The original must not be touched.
	assert.Equal(t, "Лизинг", def.Name)
	assert.Equal(t, "{category} калькулятор {year}", def.SEO.Title)
}

func TestDefinitionPatch_ApplySitemap(t *testing.T) {
	def := testDefinition()

	got := DefinitionPatch{Sitemap: &SitemapPatch{ChangeFreq: ptr("daily"), Priority: ptr(0.5)}}.Apply(def)
	if assert.NotNil(t, got.Sitemap) {
		assert.Equal(t, "daily", got.Sitemap.ChangeFreq)
		assert.Equal(t, 0.5, *got.Sitemap.Priority)
	}

	cleared := DefinitionPatch{Sitemap: &SitemapPatch{Reset: true}}.Apply(got)
	assert.Nil(t, cleared.Sitemap)
}

func TestDefinitionPatch_ApplySitemapMergesFields(t *testing.T) {
	def := testDefinition()
	def.Sitemap = &SitemapOverride{ChangeFreq: "monthly", Priority: ptr(0.3)}

	got := DefinitionPatch{Sitemap: &SitemapPatch{ChangeFreq: ptr("daily")}}.Apply(def)
	require.NotNil(t, got.Sitemap)
	assert.Equal(t, "daily", got.Sitemap.ChangeFreq)
	require.NotNil(t, got.Sitemap.Priority)
	assert.Equal(t, 0.3, *got.Sitemap.Priority)

	got = DefinitionPatch{Sitemap: &SitemapPatch{Priority: ptr(0.9)}}.Apply(got)
	assert.Equal(t, "daily", got.Sitemap.ChangeFreq)
	assert.Equal(t, 0.9, *got.Sitemap.Priority)

	// Removing the only remaining field drops the override entirely.
	onlyFreq := DefinitionPatch{Sitemap: &SitemapPatch{Reset: true, ChangeFreq: ptr("yearly")}}.Apply(got)
	assert.Equal(t, &SitemapOverride{ChangeFreq: "yearly"}, onlyFreq.Sitemap)
	assert.Nil(t, DefinitionPatch{Sitemap: &SitemapPatch{ChangeFreq: ptr("")}}.Apply(onlyFreq).Sitemap)

	// The original keeps its own override.
	assert.Equal(t, 0.3, *def.Sitemap.Priority)
	assert.Equal(t, "monthly", def.Sitemap.ChangeFreq)
}

func TestDefinitionPatch_IsEmpty(t *testing.T) {
	assert.True(t, DefinitionPatch{}.IsEmpty())
	assert.False(t, DefinitionPatch{Color: ptr("#fff")}.IsEmpty())
	assert.True(t, DefinitionPatch{Sitemap: &SitemapPatch{}}.IsEmpty())
	assert.False(t, DefinitionPatch{Sitemap: &SitemapPatch{Reset: true}}.IsEmpty())
}

func TestDefinition_CloneIsDeep(t *testing.T) {
	def := testDefinition()
	def.Sitemap = &SitemapOverride{Priority: ptr(0.3)}

	clone := def.Clone()
	*clone.Sitemap.Priority = 0.9

	assert.Equal(t, 0.3, *def.Sitemap.Priority)
}

func TestSnapshot_Clone(t *testing.T) {
	snap := Snapshot{Calculators: []Definition{testDefinition()}, Version: SnapshotVersion}

	clone := snap.Clone()
	clone.Calculators[0].Name = "changed"

	assert.Equal(t, "Лизинг", snap.Calculators[0].Name)
}
