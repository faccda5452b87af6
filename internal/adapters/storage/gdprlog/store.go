package gdprlog

import (
	"context"

	"polyglot/internal/domain/gdpr"
)

// Filter describes optional criteria for listing audit records.
// Nil fields are ignored.
type Filter struct {
	ShopDomain  *string
	RequestType *string
	FromDate    *string
	ToDate      *string
}

// Store defines the interface for the compliance audit trail.
// The trail is append-only. Records are never updated or deleted.
type Store interface {
	// Append persists an audit record.
	// PRE: rec is valid
	// POST: Record is persisted and immutable
	Append(ctx context.Context, rec gdpr.Record) error

	// List retrieves audit records matching the filter, most recent
	// first, capped at limit.
	List(ctx context.Context, filter Filter, limit int) ([]gdpr.Record, error)
}

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)
