package export

import (
	"context"
	"time"

	domain "polyglot/internal/domain/export"
)

// Store defines the interface for data export persistence.
type Store interface {
	// Save persists an export.
	// PRE: ex is valid
	// POST: Export is persisted
	Save(ctx context.Context, ex domain.Export) error

	// GetByID retrieves an export by its id.
	// POST: Returns the export or an error wrapping domain.ErrNotFound
	GetByID(ctx context.Context, id string) (domain.Export, error)

	// MarkDownloaded records the first download time for an export.
	MarkDownloaded(ctx context.Context, id string, at time.Time) error

	// DeleteByShop removes every export scoped to the shop.
	// POST: Returns the number of rows deleted (0 is a valid outcome)
	DeleteByShop(ctx context.Context, shopID string) (int64, error)

	// DeleteByCustomer removes the exports compiled for a customer in a shop.
	// PRE: at least one of customerID or customerEmail is non-empty
	// POST: Returns the number of rows deleted (0 is a valid outcome)
	DeleteByCustomer(ctx context.Context, shopID, customerID, customerEmail string) (int64, error)

	// DeleteExpired removes exports requested before the cutoff.
	// POST: Returns the number of rows deleted (0 is a valid outcome)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
