package store

import (
	"context"

	"github.com/verte-zerg/wsec/internal/model"
)

// Memory is an in-process Repository for tests and the browser preview.
type Memory struct {
	sel   model.Selection
	saved bool
}

var _ Repository = (*Memory)(nil)

// NewMemory returns an empty repository with nothing saved.
func NewMemory() *Memory {
	return &Memory{}
}

// Reset stores an empty selection.
func (m *Memory) Reset(ctx context.Context) error {
	return m.Save(ctx, model.EmptySelection())
}

// Save stores a copy of sel.
func (m *Memory) Save(_ context.Context, sel model.Selection) error {
	m.sel = sel.Normalize().Clone()
	m.saved = true
	return nil
}

// Load returns a copy of the stored selection.
func (m *Memory) Load(_ context.Context) (model.Selection, error) {
	if !m.saved {
		return model.Selection{}, ErrStorageUnavailable
	}
	return m.sel.Clone(), nil
}
