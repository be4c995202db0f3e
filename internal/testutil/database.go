// Package testutil provides shared setup helpers for tests that need a real
// database or a populated catalog.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/calcman/internal/catalog"
	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/storage"
)

// TestDB bundles an in-memory database with the catalog opened on top of it.
type TestDB struct {
	Storage *storage.SQLiteStorage
	Store   *catalog.Store
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database, opens a catalog on it
// and seeds defs in order. Everything is closed when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, calculators.Standard()...)
//	def := db.MustGet(calculators.IDLeasing.String())
func SetupTestDB(t *testing.T, defs ...model.Definition) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Definitions: defs})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	Formulas     *model.GlobalFormulas
	Definitions  []model.Definition
	StoreOptions []catalog.Option
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()
	ctx := context.Background()

	repo, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	store, err := catalog.Open(ctx, repo, opts.StoreOptions...)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}

	for _, def := range opts.Definitions {
		if _, err := store.Add(ctx, def); err != nil {
			t.Fatalf("failed to seed calculator %q: %v", def.ID, err)
		}
	}
	if opts.Formulas != nil {
		if err := store.UpdateGlobalFormulas(ctx, *opts.Formulas); err != nil {
			t.Fatalf("failed to seed global formulas: %v", err)
		}
	}

	return &TestDB{
		Storage: repo,
		Store:   store,
		t:       t,
	}
}

// MustGet returns the calculator with the given id or fails the test.
func (db *TestDB) MustGet(id string) model.Definition {
	db.t.Helper()
	def, err := db.Store.Get(id)
	if err != nil {
		db.t.Fatalf("calculator %q not found: %v", id, err)
	}
	return def
}

// Reload opens a second catalog on the same database, which shows exactly
// what was persisted.
func (db *TestDB) Reload() *catalog.Store {
	db.t.Helper()
	store, err := catalog.Open(context.Background(), db.Storage)
	if err != nil {
		db.t.Fatalf("failed to reopen catalog: %v", err)
	}
	return store
}
