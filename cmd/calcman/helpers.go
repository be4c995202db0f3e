package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/calcman/internal/catalog"
	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/config"
	"github.com/Veraticus/calcman/internal/model"
	"github.com/Veraticus/calcman/internal/storage"
)

// loadSettings resolves the settings of this invocation.
func loadSettings() (config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Settings{}, common.NewUserError("invalid configuration", err)
	}
	return settings, nil
}

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context, dbPath string) (*storage.SQLiteStorage, error) {
	repo, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := repo.Migrate(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// openStore loads the catalog from the configured database. The returned
// close function releases the database.
func openStore(ctx context.Context, settings config.Settings) (*catalog.Store, func(), error) {
	repo, err := initStorage(ctx, settings.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	store, err := catalog.Open(ctx, repo,
		catalog.WithLogger(slog.Default()),
		catalog.WithSitemapDefaults(settings.Sitemap),
	)
	if err != nil {
		_ = repo.Close()
		return nil, nil, err
	}

	return store, func() { _ = repo.Close() }, nil
}

// readDefinitionFile reads a definition written as YAML or JSON.
func readDefinitionFile(path string) (model.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Definition{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var def model.Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return model.Definition{}, &common.ParseError{Path: filepath.Base(path), Err: err}
	}
	return def, nil
}

// writeOutput writes data to name inside dir, creating dir if needed.
func writeOutput(dir, name string, data []byte) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
