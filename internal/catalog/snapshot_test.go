package catalog_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/calcman/internal/catalog"
	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/testutil/calculators"
)

// assertSameState compares everything a caller can observe through the
// read API.
func assertSameState(t *testing.T, want, got *catalog.Store) {
	t.Helper()
	if diff := cmp.Diff(want.List(), got.List()); diff != "" {
		t.Errorf("definitions differ (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.GlobalFormulas(), got.GlobalFormulas()); diff != "" {
		t.Errorf("global formulas differ (-want +got):\n%s", diff)
	}
}

func populatedStore(t *testing.T) *catalog.Store {
	t.Helper()
	def := calculators.Mortgage()
	def.Sitemap = &model.SitemapOverride{ChangeFreq: "monthly", Priority: ptr(0.6)}

	store, clock := newStore(t, calculators.Business(), calculators.Leasing())
	clock.Advance(24 * time.Hour)
	_, err := store.Add(context.Background(), def)
	require.NoError(t, err)
	require.NoError(t, store.UpdateGlobalFormulas(context.Background(), model.GlobalFormulas{
		Title:       "{category} калькулятор {year} | Быстрый расчет онлайн",
		Description: "{category} калькулятор {year} - профессиональный расчет кредитных условий с учетом всех параметров",
		H1:          "{category} калькулятор {year}",
	}))
	return store
}

func TestStore_ExportIsDeepCopy(t *testing.T) {
	store := populatedStore(t)

	snap := store.Export()
	assert.Equal(t, model.SnapshotVersion, snap.Version)
	assert.False(t, snap.ExportedAt.IsZero())
	require.Len(t, snap.Calculators, 3)

	snap.Calculators[0].Name = "mutated"
	*snap.Calculators[2].Sitemap.Priority = 0.1
	snap.Formulas.Title = "mutated"

	assert.Equal(t, "Бизнес-кредит", store.List()[0].Name)
	assert.Equal(t, 0.6, *store.List()[2].Sitemap.Priority)
	assert.NotEqual(t, "mutated", store.GlobalFormulas().Title)
}

func TestStore_RoundTrip(t *testing.T) {
	original := populatedStore(t)

	restored, _ := newStore(t)
	require.NoError(t, restored.Import(context.Background(), original.Export()))

	assertSameState(t, original, restored)
}

func TestStore_RoundTripThroughJSON(t *testing.T) {
	original := populatedStore(t)

	var buf bytes.Buffer
	require.NoError(t, catalog.EncodeSnapshot(&buf, original.Export()))
	assert.Contains(t, buf.String(), "\n  \"calculators\": [", "export is pretty-printed")

	restored, _ := newStore(t)
	require.NoError(t, restored.ImportJSON(context.Background(), buf.Bytes()))

	assertSameState(t, original, restored)
	assert.Equal(t, original.SitemapData(), restored.SitemapData())
}

func TestStore_ImportReplaces(t *testing.T) {
	store, _ := newStore(t, calculators.Business(), calculators.Leasing())

	snap := model.Snapshot{
		Calculators: []model.Definition{calculators.Mortgage()},
		Formulas:    model.GlobalFormulas{Title: "{category}"},
	}
	require.NoError(t, store.Import(context.Background(), snap))

	list := store.List()
	require.Len(t, list, 1)
	assert.Equal(t, "mortgage", list[0].ID)
	assert.Equal(t, model.GlobalFormulas{Title: "{category}"}, store.GlobalFormulas())

	_, err := store.Get("business")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStore_ImportIsIdempotent(t *testing.T) {
	store := populatedStore(t)
	snap := store.Export()

	require.NoError(t, store.Import(context.Background(), snap))
	first := store.Export()
	require.NoError(t, store.Import(context.Background(), snap))
	second := store.Export()

	if diff := cmp.Diff(first.Calculators, second.Calculators); diff != "" {
		t.Errorf("second import changed state (-first +second):\n%s", diff)
	}
}

func TestStore_ImportRejectsInvalidSnapshot(t *testing.T) {
	tests := []struct {
		name  string
		snap  func() model.Snapshot
		field string
	}{
		{
			name: "duplicate ids",
			snap: func() model.Snapshot {
				dup := calculators.Leasing()
				dup.ID = "business"
				return model.Snapshot{Calculators: []model.Definition{calculators.Business(), dup}}
			},
			field: "id",
		},
		{
			name: "duplicate slugs",
			snap: func() model.Snapshot {
				dup := calculators.Leasing()
				dup.Slug = calculators.Business().Slug
				return model.Snapshot{Calculators: []model.Definition{calculators.Business(), dup}}
			},
			field: "slug",
		},
		{
			name: "inverted range",
			snap: func() model.Snapshot {
				bad := calculators.Leasing()
				bad.Variables.MinRate = 50
				return model.Snapshot{Calculators: []model.Definition{calculators.Business(), bad}}
			},
			field: "variables.minRate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := populatedStore(t)
			before := store.List()

			err := store.Import(context.Background(), tt.snap())
			var vErr *common.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)

			if diff := cmp.Diff(before, store.List()); diff != "" {
				t.Errorf("failed import modified the store (-before +after):\n%s", diff)
			}
		})
	}
}

const validSnapshotJSON = `{
  "version": 1,
  "exportedAt": "2025-01-02T03:04:05Z",
  "seoFormulas": {"title": "{category} {year}", "description": "d", "h1": "h"},
  "calculators": [
    {
      "id": "leasing",
      "name": "Лизинг",
      "slug": "lizing-kalkulyator",
      "category": "Лизинг",
      "variables": {
        "minAmount": 100000, "maxAmount": 10000000, "defaultAmount": 2000000,
        "minRate": 5, "maxRate": 20, "defaultRate": 10
      }
    }
  ]
}`

func TestDecodeSnapshot(t *testing.T) {
	snap, err := catalog.DecodeSnapshot(strings.NewReader(validSnapshotJSON))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), snap.ExportedAt)
	assert.Equal(t, model.GlobalFormulas{Title: "{category} {year}", Description: "d", H1: "h"}, snap.Formulas)
	require.Len(t, snap.Calculators, 1)
	assert.Equal(t, "lizing-kalkulyator", snap.Calculators[0].Slug)
	assert.Equal(t, 10.0, snap.Calculators[0].Variables.DefaultRate)
	assert.Nil(t, snap.Calculators[0].Sitemap)
}

func TestDecodeSnapshot_DefaultsMissingFormulas(t *testing.T) {
	snap, err := catalog.DecodeSnapshot(strings.NewReader(`{"calculators": []}`))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultGlobalFormulas(), snap.Formulas)
	assert.Empty(t, snap.Calculators)
}

func TestDecodeSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		path  string
	}{
		{"not json", `calculators: []`, ""},
		{"empty input", ``, ""},
		{"missing calculators", `{"seoFormulas": {}}`, "calculators"},
		{"null calculators", `{"calculators": null}`, "calculators"},
		{"missing id", `{"calculators": [{"name": "n", "slug": "s", "category": "c", "variables": {}}]}`, "calculators[0].id"},
		{"missing variables", `{"calculators": [{"id": "i", "name": "n", "slug": "s", "category": "c"}]}`, "calculators[0].variables"},
		{
			"missing minAmount",
			`{"calculators": [{"id": "i", "name": "n", "slug": "s", "category": "c",
			  "variables": {"maxAmount": 1, "defaultAmount": 1, "minRate": 1, "maxRate": 1, "defaultRate": 1}}]}`,
			"calculators[0].variables.minAmount",
		},
		{"wrong type", `{"calculators": [{"id": 42}]}`, ""},
		{"unsupported version", `{"version": 99, "calculators": []}`, "version"},
		{"trailing data", `{"calculators": []} {}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.DecodeSnapshot(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrParse)

			var pErr *common.ParseError
			require.ErrorAs(t, err, &pErr)
			if tt.path != "" {
				assert.Equal(t, tt.path, pErr.Path)
			}
		})
	}
}

func TestStore_PartialImportRejected(t *testing.T) {
	store, _ := newStore(t, calculators.Business(), calculators.Leasing())
	before := store.Export()

	partial := strings.Replace(validSnapshotJSON, `"minAmount": 100000, `, "", 1)
	err := store.ImportJSON(context.Background(), []byte(partial))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrParse)

	if diff := cmp.Diff(before.Calculators, store.List()); diff != "" {
		t.Errorf("partial import modified the store (-before +after):\n%s", diff)
	}
	assert.Equal(t, before.Formulas, store.GlobalFormulas())
}
