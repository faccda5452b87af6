package credential

import (
	"context"

	domain "polyglot/internal/domain/credential"
)

// Store defines the interface for provider credential persistence.
type Store interface {
	// Save persists a credential.
	Save(ctx context.Context, cred domain.Credential) error

	// ListPage returns up to limit credentials with an id greater than
	// afterID, ordered by id. Pass an empty afterID for the first page.
	ListPage(ctx context.Context, afterID string, limit int) ([]domain.Credential, error)

	// UpdateToken replaces the stored token value for a credential.
	UpdateToken(ctx context.Context, id, token string) error

	// DeleteByShop removes every credential scoped to the shop.
	// POST: Returns the number of rows deleted (0 is a valid outcome)
	DeleteByShop(ctx context.Context, shopID string) (int64, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
