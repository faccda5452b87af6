package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled, foreign keys enforced
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables. Every entity except gdpr_request references shop;
	// redaction deletes children before the shop row. gdpr_request carries
	// no foreign key so the audit trail survives shop redaction.
	schema := `
	CREATE TABLE IF NOT EXISTS shop (
		id TEXT PRIMARY KEY,
		domain TEXT NOT NULL UNIQUE,
		access_token TEXT NOT NULL,
		primary_locale TEXT NOT NULL DEFAULT 'en',
		installed_at TEXT NOT NULL,
		uninstalled_at TEXT
	);

	CREATE TABLE IF NOT EXISTS credential (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL,
		provider TEXT NOT NULL,
		token TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT,
		FOREIGN KEY (shop_id) REFERENCES shop(id)
	);

	CREATE TABLE IF NOT EXISTS translation (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		locale TEXT NOT NULL,
		source_text TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (shop_id) REFERENCES shop(id)
	);

	CREATE TABLE IF NOT EXISTS customer_locale (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		customer_email TEXT,
		locale TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (shop_id) REFERENCES shop(id)
	);

	CREATE TABLE IF NOT EXISTS data_export (
		id TEXT PRIMARY KEY,
		shop_id TEXT NOT NULL,
		customer_id TEXT NOT NULL,
		customer_email TEXT,
		orders TEXT,
		payload TEXT NOT NULL DEFAULT '',
		token_hash TEXT NOT NULL,
		status TEXT NOT NULL,
		requested_at TEXT NOT NULL,
		completed_at TEXT,
		downloaded_at TEXT,
		FOREIGN KEY (shop_id) REFERENCES shop(id)
	);

	CREATE TABLE IF NOT EXISTS gdpr_request (
		id TEXT PRIMARY KEY,
		shop_domain TEXT NOT NULL,
		request_type TEXT NOT NULL,
		customer_id TEXT,
		customer_email TEXT,
		error_message TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_credential_shop ON credential(shop_id);
	CREATE INDEX IF NOT EXISTS idx_translation_shop ON translation(shop_id);
	CREATE INDEX IF NOT EXISTS idx_customer_locale_shop ON customer_locale(shop_id);
	CREATE INDEX IF NOT EXISTS idx_customer_locale_customer ON customer_locale(shop_id, customer_id);
	CREATE INDEX IF NOT EXISTS idx_data_export_shop ON data_export(shop_id);
	CREATE INDEX IF NOT EXISTS idx_gdpr_request_shop_domain ON gdpr_request(shop_domain);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
