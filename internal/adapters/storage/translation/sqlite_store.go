package translation

import (
	"context"
	"fmt"

	"polyglot/internal/adapters/storage"
	domain "polyglot/internal/domain/translation"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements the translation Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLite-backed translation store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a translation.
func (s *SQLiteStore) Save(ctx context.Context, tr domain.Translation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO translation (id, shop_id, resource_type, resource_id, locale, source_text, translated_text, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, tr.ID, tr.ShopID, tr.ResourceType, tr.ResourceID, tr.Locale, tr.SourceText, tr.TranslatedText, tr.CreatedAt.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("failed to save translation: %w", err)
	}

	return nil
}

// DeleteByShop removes every translation scoped to the shop.
func (s *SQLiteStore) DeleteByShop(ctx context.Context, shopID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation WHERE shop_id = ?`, shopID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete translations: %w", err)
	}

	return res.RowsAffected()
}
