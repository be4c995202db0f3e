// Package service defines the interfaces shared between the catalog and its adapters.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/calcman/internal/model"
)

// Storage defines the contract for the catalog persistence layer. The
// catalog calls it before committing a change in memory, so an error here
// aborts the change.
type Storage interface {
	// Load returns the persisted state in insertion order. ExportedAt is the
	// export time of the last imported snapshot, zero if there was none.
	Load(ctx context.Context) (model.Snapshot, error)

	// SaveDefinition inserts def at the end of the collection, or replaces
	// the stored definition with the same id in place.
	SaveDefinition(ctx context.Context, def model.Definition) error
	DeleteDefinition(ctx context.Context, id string) error
	SaveGlobalFormulas(ctx context.Context, formulas model.GlobalFormulas) error

	// ReplaceAll discards everything and stores snap atomically, including
	// snap.ExportedAt as the import time returned by Load.
	ReplaceAll(ctx context.Context, snap model.Snapshot) error

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// WithDefaults fills unset fields with conservative defaults.
func (o RetryOptions) WithDefaults() RetryOptions {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = 100 * time.Millisecond
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = 30 * time.Second
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 2.0
	}
	return o
}
