package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"polyglot/internal/domain/shop"
	"polyglot/internal/metrics"
)

// RedactShopInput carries input for the shop redaction orchestrator.
type RedactShopInput struct {
	ShopDomain string
}

// RedactShopDeps holds dependencies for RedactShop.
type RedactShopDeps struct {
	Shops        ShopStoreForRedaction
	Translations TranslationStoreForRedaction
	Locales      LocaleStoreForRedaction
	Credentials  CredentialStoreForRedaction
	Exports      ExportStoreForRedaction
}

// ExecuteRedactShop deletes every row the app holds for a shop.
// PRE: ShopDomain must be non-empty
// POST: On success no shop-scoped rows remain; the report lists per-entity counts
// INVARIANT: Child entities are deleted before the shop row; the shop row
// stays when any child step fails, so no orphaned rows are ever created
// INVARIANT: A failed step never stops the remaining child steps
func ExecuteRedactShop(ctx context.Context, input RedactShopInput, deps RedactShopDeps) (RedactionReport, error) {
	var report RedactionReport

	if input.ShopDomain == "" {
		return report, errors.New("shop domain is required")
	}

	sh, err := deps.Shops.GetByDomain(ctx, input.ShopDomain)
	if errors.Is(err, shop.ErrNotFound) {
		// Nothing stored for this shop. Uninstall cleanup or an earlier
		// redaction already ran; report success with zero deletions.
		slog.Info("compliance_event", "event", "shop_redact_noop", "shop_domain", input.ShopDomain)
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("failed to resolve shop: %w", err)
	}

	run := func(entity string, del func() (int64, error)) {
		deleted, err := del()
		report.add(entity, deleted, err)
		if err != nil {
			metrics.RedactionStepFailures.WithLabelValues(entity).Inc()
			slog.Error("compliance_event", "event", "redaction_step_failed",
				"entity", entity, "shop_domain", input.ShopDomain, "error", err)
			return
		}
		metrics.RedactionDeletedRows.WithLabelValues(entity).Add(float64(deleted))
	}

	run("data_export", func() (int64, error) { return deps.Exports.DeleteByShop(ctx, sh.ID) })
	run("customer_locale", func() (int64, error) { return deps.Locales.DeleteByShop(ctx, sh.ID) })
	run("translation", func() (int64, error) { return deps.Translations.DeleteByShop(ctx, sh.ID) })
	run("credential", func() (int64, error) { return deps.Credentials.DeleteByShop(ctx, sh.ID) })

	if failed := report.FailedSteps(); len(failed) > 0 {
		report.add("shop", 0, fmt.Errorf("skipped: %d dependent deletions failed", len(failed)))
		return report, &RedactionError{Report: report}
	}

	run("shop", func() (int64, error) { return deps.Shops.Delete(ctx, sh.ID) })
	if report.PartialFailure() {
		return report, &RedactionError{Report: report}
	}

	slog.Info("compliance_event", "event", "shop_redacted",
		"shop_domain", input.ShopDomain, "rows_deleted", report.TotalDeleted())
	return report, nil
}
