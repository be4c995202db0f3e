package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/service"
	"github.com/Veraticus/calcman/internal/testutil/calculators"
)

var _ service.Storage = (*SQLiteStorage)(nil)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func stamped(def model.Definition, at time.Time) model.Definition {
	def.CreatedAt = at
	def.UpdatedAt = at
	return def
}

func TestSQLiteStorage_Migrate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Running again is a no-op.
	require.NoError(t, store.Migrate(ctx))
}

func TestSQLiteStorage_LoadEmpty(t *testing.T) {
	store := createTestStorage(t)

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Calculators)
	assert.NotNil(t, snap.Calculators)
	assert.True(t, snap.ExportedAt.IsZero())
	assert.Equal(t, model.DefaultGlobalFormulas(), snap.Formulas)
}

func TestSQLiteStorage_SaveDefinition(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	at := time.Date(2025, time.May, 1, 12, 30, 0, 123456789, time.UTC)

	mortgage := stamped(calculators.Mortgage(), at)
	mortgage.Sitemap = &model.SitemapOverride{ChangeFreq: "monthly", Priority: ptr(0.0)}

	require.NoError(t, store.SaveDefinition(ctx, stamped(calculators.Business(), at)))
	require.NoError(t, store.SaveDefinition(ctx, stamped(calculators.Leasing(), at)))
	require.NoError(t, store.SaveDefinition(ctx, mortgage))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Calculators, 3)

	assert.Equal(t, stamped(calculators.Business(), at), snap.Calculators[0])
	assert.Equal(t, stamped(calculators.Leasing(), at), snap.Calculators[1])
	assert.Equal(t, mortgage, snap.Calculators[2])
}

func TestSQLiteStorage_SaveDefinitionKeepsPosition(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDefinition(ctx, calculators.Business()))
	require.NoError(t, store.SaveDefinition(ctx, calculators.Leasing()))

	updated := calculators.Business()
	updated.Name = "Кредит для бизнеса"
	updated.Variables.DefaultRate = 14
	require.NoError(t, store.SaveDefinition(ctx, updated))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Calculators, 2)
	assert.Equal(t, updated, snap.Calculators[0])
	assert.Equal(t, "leasing", snap.Calculators[1].ID)
}

func TestSQLiteStorage_SaveDefinitionDuplicateSlug(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDefinition(ctx, calculators.Business()))

	dup := calculators.Leasing()
	dup.Slug = calculators.Business().Slug
	assert.Error(t, store.SaveDefinition(ctx, dup))
}

func TestSQLiteStorage_SaveDefinitionInvalid(t *testing.T) {
	store := createTestStorage(t)

	err := store.SaveDefinition(context.Background(), model.Definition{Name: "no id"})
	assert.ErrorIs(t, err, ErrInvalidCalculator)
}

func TestSQLiteStorage_DeleteDefinition(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, def := range calculators.Standard() {
		require.NoError(t, store.SaveDefinition(ctx, def))
	}
	require.NoError(t, store.DeleteDefinition(ctx, "leasing"))
	require.NoError(t, store.DeleteDefinition(ctx, "unknown"))

	// Appending after a delete still goes to the end.
	extra := calculators.Leasing()
	extra.ID = "leasing-2"
	require.NoError(t, store.SaveDefinition(ctx, extra))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(snap.Calculators))
	for _, def := range snap.Calculators {
		ids = append(ids, def.ID)
	}
	assert.Equal(t, []string{"business", "mortgage", "leasing-2"}, ids)
}

func TestSQLiteStorage_SaveGlobalFormulas(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first := model.GlobalFormulas{Title: "a", Description: "b", H1: "c"}
	second := model.GlobalFormulas{Title: "{category} {year}"}

	require.NoError(t, store.SaveGlobalFormulas(ctx, first))
	require.NoError(t, store.SaveGlobalFormulas(ctx, second))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, snap.Formulas)
}

func TestSQLiteStorage_ReplaceAll(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDefinition(ctx, calculators.Business()))
	require.NoError(t, store.SaveDefinition(ctx, calculators.Leasing()))

	// Swapping slugs between two calculators must not trip the unique index.
	leasing := calculators.Leasing()
	business := calculators.Business()
	leasing.Slug, business.Slug = business.Slug, leasing.Slug

	formulas := model.GlobalFormulas{Title: "t", Description: "d", H1: "h"}
	require.NoError(t, store.ReplaceAll(ctx, model.Snapshot{
		Calculators: []model.Definition{leasing, business},
		Formulas:    formulas,
	}))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Definition{leasing, business}, snap.Calculators)
	assert.Equal(t, formulas, snap.Formulas)
}

func TestSQLiteStorage_ReplaceAllStoresImportTime(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	exported := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.ReplaceAll(ctx, model.Snapshot{
		ExportedAt:  exported,
		Calculators: []model.Definition{calculators.Leasing()},
		Formulas:    model.DefaultGlobalFormulas(),
	}))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, exported, snap.ExportedAt)

	require.NoError(t, store.ReplaceAll(ctx, model.Snapshot{Formulas: model.DefaultGlobalFormulas()}))
	snap, err = store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, snap.ExportedAt.IsZero())
}

func TestSQLiteStorage_ReplaceAllRollsBack(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDefinition(ctx, calculators.Business()))

	dup := calculators.Leasing()
	dup.Slug = calculators.Mortgage().Slug
	err := store.ReplaceAll(ctx, model.Snapshot{
		Calculators: []model.Definition{calculators.Mortgage(), dup},
		Formulas:    model.GlobalFormulas{Title: "never saved"},
	})
	require.Error(t, err)

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Calculators, 1)
	assert.Equal(t, "business", snap.Calculators[0].ID)
	assert.Equal(t, model.DefaultGlobalFormulas(), snap.Formulas)
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "calc.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.SaveDefinition(ctx, calculators.Leasing()))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	snap, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Calculators, 1)
	assert.Equal(t, calculators.Leasing(), snap.Calculators[0])
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func ptr[T any](v T) *T { return &v }
