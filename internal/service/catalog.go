package service

import (
	"context"

	"github.com/timmy/epigraph/internal/domain"
)

// ScriptCatalog lists the writing systems the backend knows about.
type ScriptCatalog struct {
	store Persistence
}

// NewScriptCatalog creates a catalog over store.
func NewScriptCatalog(store Persistence) *ScriptCatalog {
	return &ScriptCatalog{store: store}
}

// List returns every script ordered by name.
func (c *ScriptCatalog) List(ctx context.Context) ([]domain.AncientScript, error) {
	return c.store.ListScripts(ctx)
}
