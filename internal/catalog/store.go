// Package catalog implements the calculator configuration store: an ordered
// collection of calculator definitions plus the global SEO formulas.
//
// Every mutation is all-or-nothing. Input is validated against the current
// state, written through the optional persistence adapter, and only then
// committed in memory. Mutations are serialized; readers always receive
// copies, so no caller can alias the store's definitions.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/seo"
	"github.com/Veraticus/calcman/internal/service"
)

// Store is the calculator configuration store.
type Store struct {
	createdAt  time.Time
	importedAt time.Time
	repo       service.Storage
	logger     *slog.Logger
	clock      func() time.Time
	index      map[string]int
	formulas   model.GlobalFormulas
	sitemap    SitemapDefaults
	defs       []model.Definition
	mu         sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithStorage makes the store write every change through repo.
func WithStorage(repo service.Storage) Option {
	return func(s *Store) { s.repo = repo }
}

// WithLogger sets the logger used for change events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithSitemapDefaults sets the store-wide sitemap settings.
func WithSitemapDefaults(d SitemapDefaults) Option {
	return func(s *Store) { s.sitemap = d }
}

// New creates an empty store with the default global formulas.
func New(opts ...Option) *Store {
	s := &Store{
		index:    make(map[string]int),
		formulas: model.DefaultGlobalFormulas(),
		sitemap:  DefaultSitemapDefaults(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = common.OrDefault(s.logger)
	s.createdAt = s.now()
	return s
}

// Open creates a store and loads its state from repo.
func Open(ctx context.Context, repo service.Storage, opts ...Option) (*Store, error) {
	s := New(append(opts, WithStorage(repo))...)

	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := validateSnapshot(snap); err != nil {
		return nil, fmt.Errorf("stored catalog is invalid: %w", err)
	}

	s.commitSnapshot(snap)
	s.importedAt = snap.ExportedAt.UTC()
	s.logger.Debug("loaded catalog", "calculators", len(s.defs))
	return s, nil
}

func (s *Store) now() time.Time {
	return s.clock().UTC()
}

// Add appends a new definition. An empty slug is derived from the name.
func (s *Store) Add(ctx context.Context, def model.Definition) (model.Definition, error) {
	def = plainText(def.Clone())
	if def.Slug == "" {
		def.Slug = seo.Slugify(def.Name)
	}
	if def.Sitemap.IsEmpty() {
		def.Sitemap = nil
	}
	if err := ValidateDefinition(def); err != nil {
		return model.Definition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateUnique(s.defs, def, -1); err != nil {
		return model.Definition{}, err
	}

	now := s.now()
	def.CreatedAt = now
	def.UpdatedAt = now

	if s.repo != nil {
		if err := s.repo.SaveDefinition(ctx, def); err != nil {
			return model.Definition{}, fmt.Errorf("failed to persist calculator %q: %w", def.ID, err)
		}
	}

	s.index[def.ID] = len(s.defs)
	s.defs = append(s.defs, def)

	s.logger.Info("added calculator", "id", def.ID, "slug", def.Slug)
	return def.Clone(), nil
}

// Update applies patch to the definition identified by id.
func (s *Store) Update(ctx context.Context, id string, patch model.DefinitionPatch) (model.Definition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return model.Definition{}, common.NotFoundError(id)
	}

	merged := plainText(patch.Apply(s.defs[pos]))
	if err := ValidateDefinition(merged); err != nil {
		return model.Definition{}, err
	}
	if err := validateUnique(s.defs, merged, pos); err != nil {
		return model.Definition{}, err
	}
	merged.UpdatedAt = s.now()

	if s.repo != nil {
		if err := s.repo.SaveDefinition(ctx, merged); err != nil {
			return model.Definition{}, fmt.Errorf("failed to persist calculator %q: %w", id, err)
		}
	}

	s.defs[pos] = merged

	s.logger.Info("updated calculator", "id", id)
	return merged.Clone(), nil
}

// Delete removes the definition identified by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return common.NotFoundError(id)
	}

	if s.repo != nil {
		if err := s.repo.DeleteDefinition(ctx, id); err != nil {
			return fmt.Errorf("failed to delete calculator %q: %w", id, err)
		}
	}

	s.defs = slices.Delete(s.defs, pos, pos+1)
	s.reindex()

	s.logger.Info("deleted calculator", "id", id)
	return nil
}

// UpdateGlobalFormulas replaces the global SEO formulas wholesale. Stored
// per-definition overrides are left alone.
func (s *Store) UpdateGlobalFormulas(ctx context.Context, formulas model.GlobalFormulas) error {
	formulas = plainFormulas(formulas)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.SaveGlobalFormulas(ctx, formulas); err != nil {
			return fmt.Errorf("failed to persist global formulas: %w", err)
		}
	}

	s.formulas = formulas
	s.logger.Info("updated global SEO formulas")
	return nil
}

// Get returns a copy of the definition identified by id.
func (s *Store) Get(id string) (model.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return model.Definition{}, common.NotFoundError(id)
	}
	return s.defs[pos].Clone(), nil
}

// List returns copies of all definitions in insertion order.
func (s *Store) List() []model.Definition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Definition, len(s.defs))
	for i, def := range s.defs {
		out[i] = def.Clone()
	}
	return out
}

// Len returns the number of definitions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.defs)
}

// GlobalFormulas returns the current global SEO formulas.
func (s *Store) GlobalFormulas() model.GlobalFormulas {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.formulas
}

// Export captures the full state as an independent snapshot.
func (s *Store) Export() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := model.Snapshot{
		Version:     model.SnapshotVersion,
		ExportedAt:  s.now(),
		Calculators: make([]model.Definition, len(s.defs)),
		Formulas:    s.formulas,
	}
	for i, def := range s.defs {
		snap.Calculators[i] = def.Clone()
	}
	return snap
}

// Import replaces the entire state with snap. Nothing is merged: after a
// successful import the store matches snap exactly. On any error the
// previous state is kept.
func (s *Store) Import(ctx context.Context, snap model.Snapshot) error {
	snap = normalizeSnapshot(snap)
	if err := validateSnapshot(snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.ReplaceAll(ctx, snap); err != nil {
			return fmt.Errorf("failed to persist imported catalog: %w", err)
		}
	}

	s.commitSnapshot(snap)
	s.importedAt = snap.ExportedAt

	s.logger.Info("imported catalog",
		"calculators", len(snap.Calculators),
		"exported_at", snap.ExportedAt)
	return nil
}

// commitSnapshot installs snap. Callers hold the write lock or own s exclusively.
func (s *Store) commitSnapshot(snap model.Snapshot) {
	clone := snap.Clone()
	s.defs = clone.Calculators
	s.formulas = clone.Formulas
	s.reindex()
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.defs))
	for i, def := range s.defs {
		s.index[def.ID] = i
	}
}

// normalizeSnapshot reduces text to plain text, converts timestamps to UTC
// and drops empty sitemap overrides so that an imported store compares
// equal to the exporting one.
func normalizeSnapshot(snap model.Snapshot) model.Snapshot {
	snap = snap.Clone()
	snap.ExportedAt = snap.ExportedAt.UTC()
	snap.Formulas = plainFormulas(snap.Formulas)
	for i := range snap.Calculators {
		snap.Calculators[i] = plainText(snap.Calculators[i])
		snap.Calculators[i].CreatedAt = snap.Calculators[i].CreatedAt.UTC()
		snap.Calculators[i].UpdatedAt = snap.Calculators[i].UpdatedAt.UTC()
		if snap.Calculators[i].Sitemap.IsEmpty() {
			snap.Calculators[i].Sitemap = nil
		}
	}
	return snap
}

// validateSnapshot checks every definition and uniqueness across the whole set.
func validateSnapshot(snap model.Snapshot) error {
	for i, def := range snap.Calculators {
		if err := ValidateDefinition(def); err != nil {
			return fmt.Errorf("calculators[%d]: %w", i, err)
		}
		if err := validateUnique(snap.Calculators[:i], def, -1); err != nil {
			return fmt.Errorf("calculators[%d]: %w", i, err)
		}
	}
	return nil
}
