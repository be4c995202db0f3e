package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/calcman/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "test", wantErr: false},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: " \t\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "param")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrEmptyString) {
				t.Errorf("validateString() error = %v, want ErrEmptyString", err)
			}
		})
	}
}

func TestValidateDefinition(t *testing.T) {
	valid := model.Definition{ID: "auto", Name: "Автокредит", Slug: "avtokredit"}

	tests := []struct {
		name    string
		modify  func(*model.Definition)
		wantErr bool
	}{
		{name: "valid", modify: func(*model.Definition) {}, wantErr: false},
		{name: "missing id", modify: func(d *model.Definition) { d.ID = "" }, wantErr: true},
		{name: "missing slug", modify: func(d *model.Definition) { d.Slug = " " }, wantErr: true},
		{name: "missing name", modify: func(d *model.Definition) { d.Name = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := valid
			tt.modify(&def)
			err := validateDefinition(def)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDefinition() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCalculator) {
				t.Errorf("validateDefinition() error = %v, want ErrInvalidCalculator", err)
			}
		})
	}
}
