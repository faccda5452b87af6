package shop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"polyglot/internal/adapters/storage"
	domain "polyglot/internal/domain/shop"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements the shop Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLite-backed shop store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a shop.
func (s *SQLiteStore) Save(ctx context.Context, sh domain.Shop) error {
	var uninstalledAt any
	if sh.UninstalledAt != nil {
		uninstalledAt = sh.UninstalledAt.Format(dateLayout)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shop (id, domain, access_token, primary_locale, installed_at, uninstalled_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sh.ID, sh.Domain, sh.AccessToken, sh.PrimaryLocale, sh.InstalledAt.Format(dateLayout), uninstalledAt)
	if err != nil {
		return fmt.Errorf("failed to save shop: %w", err)
	}

	return nil
}

// GetByDomain retrieves a shop by its storefront domain.
func (s *SQLiteStore) GetByDomain(ctx context.Context, shopDomain string) (domain.Shop, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, domain, access_token, primary_locale, installed_at, uninstalled_at
		FROM shop
		WHERE domain = ?
	`, shopDomain)

	return scanShop(row)
}

// Delete removes the shop row and reports how many rows went away.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM shop WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete shop: %w", err)
	}

	return res.RowsAffected()
}

// scanShop scans a single shop row.
func scanShop(row *sql.Row) (domain.Shop, error) {
	var sh domain.Shop
	var installedAtStr string
	var uninstalledAtStr sql.NullString

	err := row.Scan(&sh.ID, &sh.Domain, &sh.AccessToken, &sh.PrimaryLocale, &installedAtStr, &uninstalledAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Shop{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Shop{}, fmt.Errorf("failed to scan shop: %w", err)
	}

	sh.InstalledAt, err = time.Parse(dateLayout, installedAtStr)
	if err != nil {
		return domain.Shop{}, fmt.Errorf("failed to parse installed_at: %w", err)
	}

	if uninstalledAtStr.Valid {
		t, err := time.Parse(dateLayout, uninstalledAtStr.String)
		if err != nil {
			return domain.Shop{}, fmt.Errorf("failed to parse uninstalled_at: %w", err)
		}
		sh.UninstalledAt = &t
	}

	return sh, nil
}
