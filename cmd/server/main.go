package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	emailPkg "polyglot/internal/adapters/email"
	web "polyglot/internal/adapters/http"
	"polyglot/internal/adapters/storage"
	credentialStore "polyglot/internal/adapters/storage/credential"
	exportStore "polyglot/internal/adapters/storage/export"
	gdprlogStore "polyglot/internal/adapters/storage/gdprlog"
	localeStore "polyglot/internal/adapters/storage/locale"
	shopStore "polyglot/internal/adapters/storage/shop"
	translationStore "polyglot/internal/adapters/storage/translation"
	"polyglot/internal/application/orchestrators"
	"polyglot/internal/config"
	"polyglot/internal/domain/secrets"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	log.Println("Database initialized successfully!")

	// Query instrumentation: wrap the DB so store calls report durations
	timedDB := storage.NewTimedDB(db)

	cipher, err := secrets.NewCipher(cfg.EncryptionKey)
	if err != nil {
		log.Fatalf("failed to initialize payload cipher: %v", err)
	}

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: POLYGLOT_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set POLYGLOT_RESEND_KEY for real delivery)")
		}
	}

	exports := exportStore.NewSQLiteStore(timedDB)

	handlers := &web.Handlers{
		WebhookSecret: cfg.WebhookSecret,
		AdminToken:    cfg.AdminToken,
		GDPRLog:       gdprlogStore.NewSQLiteStore(timedDB),
		Shops:         shopStore.NewSQLiteStore(timedDB),
		Translations:  translationStore.NewSQLiteStore(timedDB),
		Locales:       localeStore.NewSQLiteStore(timedDB),
		Credentials:   credentialStore.NewSQLiteStore(timedDB),
		Exports:       exports,
		Cipher:        cipher,
		Sender:        sender,
		EmailFrom:     cfg.EmailFrom,
		OpsEmail:      cfg.OpsEmail,
		BaseURL:       cfg.BaseURL,
		GenerateID:    uuid.NewString,
		Now:           time.Now,
	}

	// Start retention worker purging exports past their download window
	retentionStopCh := make(chan struct{})
	orchestrators.StartRetentionWorker(orchestrators.PurgeExportsDeps{
		Exports: exports,
		Now:     time.Now,
	}, 1*time.Hour, retentionStopCh)
	defer close(retentionStopCh)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      web.NewMux(handlers),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Polyglot %s starting on %s (env=%s)", version, cfg.Addr, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Shut down cleanly on SIGINT/SIGTERM so in-flight deliveries finish
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
