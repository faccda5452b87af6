package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"polyglot/internal/domain/shop"
	"polyglot/internal/metrics"
)

// ShopStoreForCustomerRedaction defines the store interface needed by RedactCustomer.
type ShopStoreForCustomerRedaction interface {
	GetByDomain(ctx context.Context, shopDomain string) (shop.Shop, error)
}

// RedactCustomerInput carries input for the customer redaction orchestrator.
type RedactCustomerInput struct {
	ShopDomain    string
	CustomerID    string
	CustomerEmail string
}

// RedactCustomerDeps holds dependencies for RedactCustomer.
type RedactCustomerDeps struct {
	Shops   ShopStoreForCustomerRedaction
	Locales LocaleStoreForRedaction
	Exports ExportStoreForRedaction
}

// ExecuteRedactCustomer deletes the rows the app holds for one customer
// within one shop. Only customer-scoped entities are touched; the shop's
// own data stays.
// PRE: ShopDomain must be non-empty; at least one customer identifier is present
// POST: On success no rows for that customer remain; the report lists per-entity counts
// INVARIANT: A failed step never stops the remaining steps
func ExecuteRedactCustomer(ctx context.Context, input RedactCustomerInput, deps RedactCustomerDeps) (RedactionReport, error) {
	var report RedactionReport

	if input.ShopDomain == "" {
		return report, errors.New("shop domain is required")
	}
	if input.CustomerID == "" && input.CustomerEmail == "" {
		return report, errors.New("customer id or email is required")
	}

	sh, err := deps.Shops.GetByDomain(ctx, input.ShopDomain)
	if errors.Is(err, shop.ErrNotFound) {
		// The shop is gone, and its customer rows with it.
		slog.Info("compliance_event", "event", "customer_redact_noop", "shop_domain", input.ShopDomain)
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

	// Exports first: a compiled export embeds the locale rows, so the
	// derived copy goes before its source.
	run("data_export", func() (int64, error) {
		return deps.Exports.DeleteByCustomer(ctx, sh.ID, input.CustomerID, input.CustomerEmail)
	})
	run("customer_locale", func() (int64, error) {
		return deps.Locales.DeleteByCustomer(ctx, sh.ID, input.CustomerID, input.CustomerEmail)
	})

	if report.PartialFailure() {
		return report, &RedactionError{Report: report}
	}

	slog.Info("compliance_event", "event", "customer_redacted",
		"shop_domain", input.ShopDomain, "rows_deleted", report.TotalDeleted())
	return report, nil
}
