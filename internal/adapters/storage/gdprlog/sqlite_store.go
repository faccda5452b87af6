package gdprlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"polyglot/internal/adapters/storage"
	"polyglot/internal/domain/gdpr"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements the gdprlog Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLite-backed audit trail store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Append persists an audit record. There is no update path on purpose.
// The gdpr_request table carries no foreign keys, so records for shops
// that were never installed, or already deleted, still land.
func (s *SQLiteStore) Append(ctx context.Context, rec gdpr.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO gdpr_request (id, shop_domain, request_type, customer_id, customer_email, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.ShopDomain, string(rec.RequestType), rec.CustomerID, rec.CustomerEmail, rec.ErrorMessage,
		rec.CreatedAt.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	return nil
}

// List retrieves audit records matching the filter, most recent first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]gdpr.Record, error) {
	query := `
		SELECT id, shop_domain, request_type, customer_id, customer_email, error_message, created_at
		FROM gdpr_request
		WHERE 1=1`
	args := []any{}

	if filter.ShopDomain != nil {
		query += ` AND shop_domain = ?`
		args = append(args, *filter.ShopDomain)
	}
	if filter.RequestType != nil {
		query += ` AND request_type = ?`
		args = append(args, *filter.RequestType)
	}
	if filter.FromDate != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.FromDate)
	}
	if filter.ToDate != nil {
		query += ` AND created_at <= ?`
		args = append(args, *filter.ToDate)
	}

	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecordFromRows scans an audit record from a rows iterator.
func scanRecordFromRows(rows *sql.Rows) (gdpr.Record, error) {
	var rec gdpr.Record
	var requestType string
	var customerID, customerEmail, errorMessage sql.NullString
	var createdAtStr string

	err := rows.Scan(&rec.ID, &rec.ShopDomain, &requestType, &customerID, &customerEmail, &errorMessage, &createdAtStr)
	if err != nil {
		return gdpr.Record{}, fmt.Errorf("failed to scan audit record: %w", err)
	}

	rec.RequestType = gdpr.RequestType(requestType)
	rec.CustomerID = customerID.String
	rec.CustomerEmail = customerEmail.String
	rec.ErrorMessage = errorMessage.String

	rec.CreatedAt, err = time.Parse(dateLayout, createdAtStr)
	if err != nil {
		return gdpr.Record{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return rec, nil
}

// scanRecords scans all audit records from a rows iterator.
func scanRecords(rows *sql.Rows) ([]gdpr.Record, error) {
	var recs []gdpr.Record
	for rows.Next() {
		rec, err := scanRecordFromRows(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}
