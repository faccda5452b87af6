package config

import (
	"fmt"
	"os"

	"polyglot/internal/domain/secrets"
)

// Config holds everything the service needs to run. Values are read from
// the environment exactly once, at startup; after Load returns, nothing
// consults the environment again.
type Config struct {
	Addr          string
	DBPath        string
	WebhookSecret string
	EncryptionKey []byte
	AdminToken    string
	ResendKey     string
	EmailFrom     string
	OpsEmail      string
	BaseURL       string
	Env           string
}

// Load reads configuration from POLYGLOT_* environment variables.
// POST: Returns a validated Config, or an error naming the first variable
// that is missing or invalid. The encryption key is parsed here so a bad
// key fails the boot, not the first webhook.
func Load() (Config, error) {
	cfg := Config{
		Addr:          envOrDefault("POLYGLOT_ADDR", ":8080"),
		DBPath:        envOrDefault("POLYGLOT_DB", "polyglot.db"),
		WebhookSecret: os.Getenv("POLYGLOT_WEBHOOK_SECRET"),
		AdminToken:    os.Getenv("POLYGLOT_ADMIN_TOKEN"),
		ResendKey:     os.Getenv("POLYGLOT_RESEND_KEY"),
		EmailFrom:     envOrDefault("POLYGLOT_EMAIL_FROM", "Polyglot <privacy@polyglot.app>"),
		OpsEmail:      envOrDefault("POLYGLOT_OPS_EMAIL", "ops@polyglot.app"),
		BaseURL:       envOrDefault("POLYGLOT_BASE_URL", "http://localhost:8080"),
		Env:           envOrDefault("POLYGLOT_ENV", "development"),
	}

	if cfg.WebhookSecret == "" {
		return Config{}, fmt.Errorf("POLYGLOT_WEBHOOK_SECRET is required")
	}

	keyHex := os.Getenv("POLYGLOT_ENCRYPTION_KEY")
	if keyHex == "" {
		return Config{}, fmt.Errorf("POLYGLOT_ENCRYPTION_KEY is required")
	}
	key, err := secrets.ParseKey(keyHex)
	if err != nil {
		// The key value itself never appears in the error.
		return Config{}, fmt.Errorf("POLYGLOT_ENCRYPTION_KEY: %w", err)
	}
	cfg.EncryptionKey = key

	return cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
