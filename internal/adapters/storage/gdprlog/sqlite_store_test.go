package gdprlog

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"polyglot/internal/adapters/storage"
	"polyglot/internal/domain/gdpr"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to initialize test database: %v", err)
	}

	return db
}

func strPtr(s string) *string {
	return &s
}

func TestSQLiteStore_AppendAndList(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	rec := gdpr.NewRecord("req-1", "boutique.example.com", gdpr.TypeCustomerRedact, fixedTime).
		WithCustomer("9001", "ana@example.com")

	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := store.List(ctx, Filter{}, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].ID != "req-1" {
		t.Errorf("expected id req-1, got %s", got[0].ID)
	}
	if got[0].RequestType != gdpr.TypeCustomerRedact {
		t.Errorf("expected type %s, got %s", gdpr.TypeCustomerRedact, got[0].RequestType)
	}
	if got[0].CustomerEmail != "ana@example.com" {
		t.Errorf("expected customer email to round-trip, got %q", got[0].CustomerEmail)
	}
	if !got[0].CreatedAt.Equal(fixedTime) {
		t.Errorf("expected created_at %v, got %v", fixedTime, got[0].CreatedAt)
	}
}

func TestSQLiteStore_Append_RecordsFailureMessage(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	rec := gdpr.NewRecord("req-2", "boutique.example.com", gdpr.TypeShopRedact, fixedTime).
		WithError("translation: disk I/O error")

	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := store.List(ctx, Filter{}, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got[0].ErrorMessage != "translation: disk I/O error" {
		t.Errorf("expected error message to round-trip, got %q", got[0].ErrorMessage)
	}
	if got[0].Succeeded() {
		t.Error("expected record with error message to report failure")
	}
}

func TestSQLiteStore_Append_NoShopRowRequired(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	// No shop table row exists for this domain. The trail must still
	// accept the record: deletion webhooks arrive after uninstall.
	rec := gdpr.NewRecord("req-3", "gone.example.com", gdpr.TypeShopRedact, fixedTime)

	if err := store.Append(ctx, rec); err != nil {
		t.Fatalf("Append failed for unknown shop: %v", err)
	}
}

func TestSQLiteStore_List_Filters(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	seed := []gdpr.Record{
		gdpr.NewRecord("req-1", "alpha.example.com", gdpr.TypeShopRedact, fixedTime),
		gdpr.NewRecord("req-2", "alpha.example.com", gdpr.TypeCustomerRedact, fixedTime.Add(time.Hour)),
		gdpr.NewRecord("req-3", "beta.example.com", gdpr.TypeDataRequest, fixedTime.Add(2*time.Hour)),
	}
	for _, rec := range seed {
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	t.Run("by shop domain", func(t *testing.T) {
		got, err := store.List(ctx, Filter{ShopDomain: strPtr("alpha.example.com")}, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records, got %d", len(got))
		}
	})

	t.Run("by request type", func(t *testing.T) {
		got, err := store.List(ctx, Filter{RequestType: strPtr(string(gdpr.TypeDataRequest))}, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != "req-3" {
			t.Fatalf("expected only req-3, got %v", got)
		}
	})

	t.Run("by date range", func(t *testing.T) {
		from := fixedTime.Add(30 * time.Minute).Format(dateLayout)
		got, err := store.List(ctx, Filter{FromDate: &from}, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records at or after cutoff, got %d", len(got))
		}
	})

	t.Run("most recent first", func(t *testing.T) {
		got, err := store.List(ctx, Filter{}, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if got[0].ID != "req-3" || got[2].ID != "req-1" {
			t.Fatalf("expected reverse chronological order, got %s..%s", got[0].ID, got[2].ID)
		}
	})
}

func TestSQLiteStore_List_Limit(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := gdpr.NewRecord(
			string(rune('a'+i)),
			"alpha.example.com",
			gdpr.TypeShopRedact,
			fixedTime.Add(time.Duration(i)*time.Minute),
		)
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := store.List(ctx, Filter{}, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit of 2 to apply, got %d records", len(got))
	}
}
