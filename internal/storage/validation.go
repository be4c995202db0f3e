// Package storage provides the SQLite persistence layer for the calculator catalog.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/calcman/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrInvalidCalculator = errors.New("invalid calculator")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateDefinition checks the columns the schema requires. Business rules
// belong to the catalog; this only guards the table constraints.
func validateDefinition(def model.Definition) error {
	if strings.TrimSpace(def.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidCalculator)
	}
	if strings.TrimSpace(def.Slug) == "" {
		return fmt.Errorf("%w: missing slug", ErrInvalidCalculator)
	}
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCalculator)
	}
	return nil
}
