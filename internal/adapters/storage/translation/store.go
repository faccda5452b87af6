package translation

import (
	"context"

	domain "polyglot/internal/domain/translation"
)

// Store defines the interface for translation persistence.
type Store interface {
	// Save persists a translation.
	Save(ctx context.Context, tr domain.Translation) error

	// DeleteByShop removes every translation scoped to the shop.
	// POST: Returns the number of rows deleted (0 is a valid outcome)
	DeleteByShop(ctx context.Context, shopID string) (int64, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
