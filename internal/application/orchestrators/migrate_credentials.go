package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"polyglot/internal/domain/credential"
	"polyglot/internal/domain/secrets"
)

// DefaultMigrationBatchSize is how many credentials one page scans.
const DefaultMigrationBatchSize = 100

// CredentialStoreForMigration defines the store interface needed by MigrateCredentials.
type CredentialStoreForMigration interface {
	ListPage(ctx context.Context, afterID string, limit int) ([]credential.Credential, error)
	UpdateToken(ctx context.Context, id, token string) error
}

// MigrateCredentialsInput carries input for the migration batch runner.
type MigrateCredentialsInput struct {
	BatchSize int
	Live      bool // false scans and counts without writing
}

// MigrateCredentialsDeps holds dependencies for MigrateCredentials.
type MigrateCredentialsDeps struct {
	Credentials CredentialStoreForMigration
	Cipher      *secrets.Cipher
	Now         func() time.Time
}

// MigrationStats summarizes a migration run. ErrorMessages identify failed
// records by id only; token values never appear in them.
type MigrationStats struct {
	Scanned       int
	Encrypted     int
	Skipped       int
	Errors        int
	ErrorMessages []string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// ExecuteMigrateCredentials walks every stored credential in id order and
// encrypts the ones still in plaintext. A dry run performs the same scan
// and encryption checks but writes nothing, so its counts predict what a
// live run will do.
// PRE: deps.Cipher is loaded with the production key
// POST: In live mode every readable plaintext token is replaced by its
// ciphertext; already-encrypted tokens are untouched
// INVARIANT: One failing record never aborts the run; it is counted and
// the scan moves on
// INVARIANT: Rerunning after a partial failure only touches records that
// are still plaintext
func ExecuteMigrateCredentials(ctx context.Context, input MigrateCredentialsInput, deps MigrateCredentialsDeps) (MigrationStats, error) {
	batchSize := input.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultMigrationBatchSize
	}

	stats := MigrationStats{StartedAt: deps.Now()}

	afterID := ""
	for {
		page, err := deps.Credentials.ListPage(ctx, afterID, batchSize)
		if err != nil {
			stats.FinishedAt = deps.Now()
			return stats, fmt.Errorf("failed to list credentials after %q: %w", afterID, err)
		}
		if len(page) == 0 {
			break
		}

		for _, cred := range page {
			stats.Scanned++

			if secrets.IsEncrypted(cred.Token) {
				stats.Skipped++
				continue
			}

			ciphertext, err := deps.Cipher.Encrypt(cred.Token)
			if err != nil {
				stats.Errors++
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("credential %s: encrypt: %v", cred.ID, err))
				continue
			}

			if input.Live {
				if err := deps.Credentials.UpdateToken(ctx, cred.ID, ciphertext); err != nil {
					stats.Errors++
					stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("credential %s: update: %v", cred.ID, err))
					continue
				}
			}
			stats.Encrypted++
		}

		afterID = page[len(page)-1].ID
	}

	stats.FinishedAt = deps.Now()
	slog.Info("migration_event", "event", "credentials_migrated",
		"live", input.Live, "scanned", stats.Scanned, "encrypted", stats.Encrypted,
		"skipped", stats.Skipped, "errors", stats.Errors)
	return stats, nil
}
