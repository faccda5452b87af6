package locale

import (
	"context"

	domain "polyglot/internal/domain/locale"
)

// Store defines the interface for customer locale preference persistence.
type Store interface {
	// Save persists a locale preference.
	Save(ctx context.Context, pref domain.Preference) error

	// ListByCustomer returns the preferences recorded for a customer
	// within a shop, matched by customer id, email, or both.
	ListByCustomer(ctx context.Context, shopID, customerID, customerEmail string) ([]domain.Preference, error)

	// DeleteByShop removes every preference scoped to the shop.
	// POST: Returns the number of rows deleted (0 is a valid outcome)
	DeleteByShop(ctx context.Context, shopID string) (int64, error)

	// DeleteByCustomer removes the preferences a customer left in a shop.
	// PRE: at least one of customerID or customerEmail is non-empty
	// POST: Returns the number of rows deleted (0 is a valid outcome)
	DeleteByCustomer(ctx context.Context, shopID, customerID, customerEmail string) (int64, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
