package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"polyglot/internal/domain/export"
	"polyglot/internal/metrics"
)

// ExportStoreForRetention defines the store interface needed by the retention sweep.
type ExportStoreForRetention interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeExportsDeps holds dependencies for PurgeExports.
type PurgeExportsDeps struct {
	Exports ExportStoreForRetention
	Now     func() time.Time
}

// ExecutePurgeExports removes exports older than the download window.
// Compiled exports are themselves personal data; keeping them past the
// window would recreate the problem the redaction webhooks solve.
// POST: No export older than DownloadTTL remains
func ExecutePurgeExports(ctx context.Context, deps PurgeExportsDeps) (int64, error) {
	cutoff := deps.Now().Add(-export.DownloadTTL)

	deleted, err := deps.Exports.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired exports: %w", err)
	}

	if deleted > 0 {
		metrics.ExportsPurged.Add(float64(deleted))
		slog.Info("compliance_event", "event", "exports_purged", "count", deleted)
	}
	return deleted, nil
}

// StartRetentionWorker starts a background goroutine that periodically purges expired exports.
// PRE: stopCh is provided to signal shutdown
// POST: Worker runs until stopCh is closed
func StartRetentionWorker(deps PurgeExportsDeps, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if _, err := ExecutePurgeExports(ctx, deps); err != nil {
					slog.Error("retention_sweep_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("retention_worker_stopped")
				return
			}
		}
	}()
}
