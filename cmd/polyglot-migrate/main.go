package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"polyglot/internal/adapters/storage"
	credentialStore "polyglot/internal/adapters/storage/credential"
	"polyglot/internal/application/orchestrators"
	"polyglot/internal/domain/secrets"
)

var (
	migrateLive      bool
	migrateBatchSize int
	migrateDBPath    string
)

var rootCmd = &cobra.Command{
	Use:   "polyglot-migrate",
	Short: "Encrypt provider credentials that are still stored in plaintext",
	Long: `Walks every stored provider credential in id order and encrypts the
ones written before encryption at rest was introduced. Already-encrypted
credentials are skipped, so the run is safe to repeat.

The default is a dry run: it scans and reports what a live run would do
without writing anything. Pass --live to apply the changes.

The encryption key is read from POLYGLOT_ENCRYPTION_KEY (64 hex characters),
never from a flag, so it cannot leak into shell history.

Examples:
  polyglot-migrate --db polyglot.db
  polyglot-migrate --db polyglot.db --live`,
	RunE: runMigrate,
}

func init() {
	rootCmd.Flags().BoolVar(&migrateLive, "live", false, "write encrypted tokens back (default is a dry run)")
	rootCmd.Flags().IntVar(&migrateBatchSize, "batch-size", orchestrators.DefaultMigrationBatchSize, "credentials scanned per page")
	rootCmd.Flags().StringVar(&migrateDBPath, "db", envOrDefault("POLYGLOT_DB", "polyglot.db"), "path to the SQLite database")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	key, err := secrets.ParseKey(os.Getenv("POLYGLOT_ENCRYPTION_KEY"))
	if err != nil {
		return fmt.Errorf("POLYGLOT_ENCRYPTION_KEY: %w", err)
	}
	cipher, err := secrets.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to initialize cipher: %w", err)
	}

	dsn := migrateDBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.InitDB(db); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if migrateLive {
		fmt.Println("Starting live migration...")
	} else {
		fmt.Println("Starting dry run (no changes will be written)...")
	}

	stats, err := orchestrators.ExecuteMigrateCredentials(context.Background(),
		orchestrators.MigrateCredentialsInput{BatchSize: migrateBatchSize, Live: migrateLive},
		orchestrators.MigrateCredentialsDeps{
			Credentials: credentialStore.NewSQLiteStore(db),
			Cipher:      cipher,
			Now:         time.Now,
		})
	if err != nil {
		return fmt.Errorf("migration aborted: %w", err)
	}

	fmt.Printf("\nScanned:    %d\n", stats.Scanned)
	if migrateLive {
		fmt.Printf("Encrypted:  %d\n", stats.Encrypted)
	} else {
		fmt.Printf("To encrypt: %d (dry run, nothing written)\n", stats.Encrypted)
	}
	fmt.Printf("Skipped:    %d (already encrypted)\n", stats.Skipped)
	fmt.Printf("Errors:     %d\n", stats.Errors)
	fmt.Printf("Duration:   %s\n", stats.FinishedAt.Sub(stats.StartedAt).Round(time.Millisecond))

	for _, msg := range stats.ErrorMessages {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	}

	if stats.Errors > 0 {
		return fmt.Errorf("%d credentials failed to migrate", stats.Errors)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
