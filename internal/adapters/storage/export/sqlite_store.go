package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"polyglot/internal/adapters/storage"
	domain "polyglot/internal/domain/export"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements the export Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLite-backed export store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists an export.
func (s *SQLiteStore) Save(ctx context.Context, ex domain.Export) error {
	orders, err := json.Marshal(ex.Orders)
	if err != nil {
		return fmt.Errorf("failed to encode orders: %w", err)
	}

	var completedAt, downloadedAt any
	if ex.CompletedAt != nil {
		completedAt = ex.CompletedAt.Format(dateLayout)
	}
	if ex.DownloadedAt != nil {
		downloadedAt = ex.DownloadedAt.Format(dateLayout)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO data_export (id, shop_id, customer_id, customer_email, orders, payload, token_hash, status, requested_at, completed_at, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ex.ID, ex.ShopID, ex.CustomerID, ex.CustomerEmail, string(orders), ex.Payload, ex.TokenHash, ex.Status,
		ex.RequestedAt.Format(dateLayout), completedAt, downloadedAt)
	if err != nil {
		return fmt.Errorf("failed to save export: %w", err)
	}

	return nil
}

// GetByID retrieves an export by its id.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Export, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, shop_id, customer_id, customer_email, orders, payload, token_hash, status, requested_at, completed_at, downloaded_at
		FROM data_export
		WHERE id = ?
	`, id)

	return scanExport(row)
}

// MarkDownloaded records the first download time for an export.
func (s *SQLiteStore) MarkDownloaded(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE data_export
		SET downloaded_at = ?
		WHERE id = ? AND downloaded_at IS NULL
	`, at.Format(dateLayout), id)
	if err != nil {
		return fmt.Errorf("failed to mark export downloaded: %w", err)
	}

	return nil
}

// DeleteByShop removes every export scoped to the shop.
func (s *SQLiteStore) DeleteByShop(ctx context.Context, shopID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM data_export WHERE shop_id = ?`, shopID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete exports: %w", err)
	}

	return res.RowsAffected()
}

// DeleteByCustomer removes the exports compiled for a customer in a shop.
// When both identifiers are present either one matches.
func (s *SQLiteStore) DeleteByCustomer(ctx context.Context, shopID, customerID, customerEmail string) (int64, error) {
	query := `DELETE FROM data_export WHERE shop_id = ?`
	args := []any{shopID}

	switch {
	case customerID != "" && customerEmail != "":
		query += ` AND (customer_id = ? OR customer_email = ?)`
		args = append(args, customerID, customerEmail)
	case customerID != "":
		query += ` AND customer_id = ?`
		args = append(args, customerID)
	case customerEmail != "":
		query += ` AND customer_email = ?`
		args = append(args, customerEmail)
	default:
		return 0, errors.New("customer id or email is required")
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete exports: %w", err)
	}

	return res.RowsAffected()
}

// DeleteExpired removes exports requested before the cutoff.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM data_export WHERE requested_at < ?`, cutoff.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired exports: %w", err)
	}

	return res.RowsAffected()
}

// scanExport scans a single export row.
func scanExport(row *sql.Row) (domain.Export, error) {
	var ex domain.Export
	var ordersStr sql.NullString
	var customerEmail sql.NullString
	var requestedAtStr string
	var completedAtStr, downloadedAtStr sql.NullString

	err := row.Scan(&ex.ID, &ex.ShopID, &ex.CustomerID, &customerEmail, &ordersStr, &ex.Payload, &ex.TokenHash,
		&ex.Status, &requestedAtStr, &completedAtStr, &downloadedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Export{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Export{}, fmt.Errorf("failed to scan export: %w", err)
	}

	ex.CustomerEmail = customerEmail.String

	if ordersStr.Valid && ordersStr.String != "" {
		if err := json.Unmarshal([]byte(ordersStr.String), &ex.Orders); err != nil {
			return domain.Export{}, fmt.Errorf("failed to decode orders: %w", err)
		}
	}

	ex.RequestedAt, err = time.Parse(dateLayout, requestedAtStr)
	if err != nil {
		return domain.Export{}, fmt.Errorf("failed to parse requested_at: %w", err)
	}

	if completedAtStr.Valid {
		t, err := time.Parse(dateLayout, completedAtStr.String)
		if err != nil {
			return domain.Export{}, fmt.Errorf("failed to parse completed_at: %w", err)
		}
		ex.CompletedAt = &t
	}

	if downloadedAtStr.Valid {
		t, err := time.Parse(dateLayout, downloadedAtStr.String)
		if err != nil {
			return domain.Export{}, fmt.Errorf("failed to parse downloaded_at: %w", err)
		}
		ex.DownloadedAt = &t
	}

	return ex, nil
}
