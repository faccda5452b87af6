package credential

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"polyglot/internal/adapters/storage"
	domain "polyglot/internal/domain/credential"
)

const dateLayout = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements the credential Store interface using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLite-backed credential store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a credential.
func (s *SQLiteStore) Save(ctx context.Context, cred domain.Credential) error {
	var updatedAt any
	if cred.UpdatedAt != nil {
		updatedAt = cred.UpdatedAt.Format(dateLayout)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credential (id, shop_id, provider, token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, cred.ID, cred.ShopID, cred.Provider, cred.Token, cred.CreatedAt.Format(dateLayout), updatedAt)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return nil
}

// ListPage returns up to limit credentials with an id greater than afterID,
// ordered by id. Keyset pagination keeps the scan stable while rows are
// updated mid-run.
func (s *SQLiteStore) ListPage(ctx context.Context, afterID string, limit int) ([]domain.Credential, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, shop_id, provider, token, created_at, updated_at
		FROM credential
		WHERE id > ?
		ORDER BY id
		LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	return scanCredentials(rows)
}

// UpdateToken replaces the stored token value for a credential.
func (s *SQLiteStore) UpdateToken(ctx context.Context, id, token string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE credential
		SET token = ?, updated_at = ?
		WHERE id = ?
	`, token, time.Now().Format(dateLayout), id)
	if err != nil {
		return fmt.Errorf("failed to update credential token: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("credential not found: %s", id)
	}

	return nil
}

// DeleteByShop removes every credential scoped to the shop.
func (s *SQLiteStore) DeleteByShop(ctx context.Context, shopID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM credential WHERE shop_id = ?`, shopID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete credentials: %w", err)
	}

	return res.RowsAffected()
}

// scanCredentialFromRows scans a credential from a rows iterator.
func scanCredentialFromRows(rows *sql.Rows) (domain.Credential, error) {
	var cred domain.Credential
	var createdAtStr string
	var updatedAtStr sql.NullString

	err := rows.Scan(&cred.ID, &cred.ShopID, &cred.Provider, &cred.Token, &createdAtStr, &updatedAtStr)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("failed to scan credential: %w", err)
	}

	cred.CreatedAt, err = time.Parse(dateLayout, createdAtStr)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	if updatedAtStr.Valid {
		t, err := time.Parse(dateLayout, updatedAtStr.String)
		if err != nil {
			return domain.Credential{}, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		cred.UpdatedAt = &t
	}

	return cred, nil
}

// scanCredentials scans all credentials from a rows iterator.
func scanCredentials(rows *sql.Rows) ([]domain.Credential, error) {
	var creds []domain.Credential
	for rows.Next() {
		cred, err := scanCredentialFromRows(rows)
		if err != nil {
			return nil, err
		}
		creds = append(creds, cred)
	}

	return creds, rows.Err()
}
