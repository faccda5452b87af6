package locale

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"polyglot/internal/adapters/storage"
	domain "polyglot/internal/domain/locale"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// ErrNoCustomerMatch is returned when neither a customer id nor an email
// is supplied to a customer-scoped operation.
var ErrNoCustomerMatch = errors.New("customer id or email is required")

// SQLiteStore implements the locale Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLite-backed locale store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a locale preference.
func (s *SQLiteStore) Save(ctx context.Context, pref domain.Preference) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customer_locale (id, shop_id, customer_id, customer_email, locale, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, pref.ID, pref.ShopID, pref.CustomerID, pref.CustomerEmail, pref.Locale, pref.UpdatedAt.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("failed to save locale preference: %w", err)
	}

	return nil
}

// ListByCustomer returns the preferences recorded for a customer within a shop.
func (s *SQLiteStore) ListByCustomer(ctx context.Context, shopID, customerID, customerEmail string) ([]domain.Preference, error) {
	match, args, err := customerClause(shopID, customerID, customerEmail)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, shop_id, customer_id, customer_email, locale, updated_at
		FROM customer_locale
		WHERE ` + match + `
		ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query locale preferences: %w", err)
	}
	defer rows.Close()

	return scanPreferences(rows)
}

// DeleteByShop removes every preference scoped to the shop.
func (s *SQLiteStore) DeleteByShop(ctx context.Context, shopID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM customer_locale WHERE shop_id = ?`, shopID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete locale preferences: %w", err)
	}

	return res.RowsAffected()
}

// DeleteByCustomer removes the preferences a customer left in a shop.
func (s *SQLiteStore) DeleteByCustomer(ctx context.Context, shopID, customerID, customerEmail string) (int64, error) {
	match, args, err := customerClause(shopID, customerID, customerEmail)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM customer_locale WHERE `+match, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete locale preferences: %w", err)
	}

	return res.RowsAffected()
}

// customerClause builds the WHERE clause matching a customer inside a shop.
// When both identifiers are present either one matches, so rows written
// before the customer signed in are still covered.
func customerClause(shopID, customerID, customerEmail string) (string, []any, error) {
	clause := "shop_id = ?"
	args := []any{shopID}

	switch {
	case customerID != "" && customerEmail != "":
		clause += " AND (customer_id = ? OR customer_email = ?)"
		args = append(args, customerID, customerEmail)
	case customerID != "":
		clause += " AND customer_id = ?"
		args = append(args, customerID)
	case customerEmail != "":
		clause += " AND customer_email = ?"
		args = append(args, customerEmail)
	default:
		return "", nil, ErrNoCustomerMatch
	}

	return clause, args, nil
}

// scanPreferenceFromRows scans a preference from a rows iterator.
func scanPreferenceFromRows(rows *sql.Rows) (domain.Preference, error) {
	var pref domain.Preference
	var updatedAtStr string

	err := rows.Scan(&pref.ID, &pref.ShopID, &pref.CustomerID, &pref.CustomerEmail, &pref.Locale, &updatedAtStr)
	if err != nil {
		return domain.Preference{}, fmt.Errorf("failed to scan locale preference: %w", err)
	}

	pref.UpdatedAt, err = time.Parse(dateLayout, updatedAtStr)
	if err != nil {
		return domain.Preference{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return pref, nil
}

// scanPreferences scans all preferences from a rows iterator.
func scanPreferences(rows *sql.Rows) ([]domain.Preference, error) {
	var prefs []domain.Preference
	for rows.Next() {
		pref, err := scanPreferenceFromRows(rows)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, pref)
	}

	return prefs, rows.Err()
}
