package shop

import (
	"context"

	domain "polyglot/internal/domain/shop"
)

// Store defines the interface for shop persistence.
type Store interface {
	// Save persists a shop.
	// PRE: s is valid
	// POST: Shop is persisted
	Save(ctx context.Context, s domain.Shop) error

	// GetByDomain retrieves a shop by its storefront domain.
	// PRE: shopDomain is non-empty
	// POST: Returns the shop or an error wrapping domain.ErrNotFound
	GetByDomain(ctx context.Context, shopDomain string) (domain.Shop, error)

	// Delete removes the shop row.
	// PRE: rows scoped to the shop are already deleted
	// POST: Returns the number of rows deleted (0 when no shop matched)
	Delete(ctx context.Context, id string) (int64, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
