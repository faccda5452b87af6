package orchestrators

import (
	"context"
	"fmt"
	"strings"

	"polyglot/internal/domain/shop"
)

// ShopStoreForRedaction defines the store interface needed by RedactShop.
type ShopStoreForRedaction interface {
	GetByDomain(ctx context.Context, shopDomain string) (shop.Shop, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// TranslationStoreForRedaction defines the store interface needed by RedactShop.
type TranslationStoreForRedaction interface {
	DeleteByShop(ctx context.Context, shopID string) (int64, error)
}

// LocaleStoreForRedaction defines the store interface needed by the redaction orchestrators.
type LocaleStoreForRedaction interface {
	DeleteByShop(ctx context.Context, shopID string) (int64, error)
	DeleteByCustomer(ctx context.Context, shopID, customerID, customerEmail string) (int64, error)
}

// CredentialStoreForRedaction defines the store interface needed by RedactShop.
type CredentialStoreForRedaction interface {
	DeleteByShop(ctx context.Context, shopID string) (int64, error)
}

// ExportStoreForRedaction defines the store interface needed by the redaction orchestrators.
type ExportStoreForRedaction interface {
	DeleteByShop(ctx context.Context, shopID string) (int64, error)
	DeleteByCustomer(ctx context.Context, shopID, customerID, customerEmail string) (int64, error)
}

// RedactionStep records the outcome of one entity-scoped deletion.
type RedactionStep struct {
	Entity  string
	Deleted int64
	Err     error
}

// RedactionReport collects per-entity outcomes of a redaction run.
// Steps appear in execution order, children before their parent. A report
// with zero deletions and no failed steps is still a success: redaction is
// idempotent and retries are expected.
type RedactionReport struct {
	Steps []RedactionStep
}

func (r *RedactionReport) add(entity string, deleted int64, err error) {
	r.Steps = append(r.Steps, RedactionStep{Entity: entity, Deleted: deleted, Err: err})
}

// TotalDeleted sums deletions across all steps.
func (r *RedactionReport) TotalDeleted() int64 {
	var total int64
	for _, step := range r.Steps {
		total += step.Deleted
	}
	return total
}

// PartialFailure reports whether any step failed.
func (r *RedactionReport) PartialFailure() bool {
	for _, step := range r.Steps {
		if step.Err != nil {
			return true
		}
	}
	return false
}

// FailedSteps lists the entities whose step failed.
func (r *RedactionReport) FailedSteps() []string {
	var failed []string
	for _, step := range r.Steps {
		if step.Err != nil {
			failed = append(failed, step.Entity)
		}
	}
	return failed
}

// RedactionError marks a redaction that completed with one or more failed
// steps. The report inside lists exactly which entities still hold data,
// so the failure is never silent.
type RedactionError struct {
	Report RedactionReport
}

func (e *RedactionError) Error() string {
	var parts []string
	for _, step := range e.Report.Steps {
		if step.Err != nil {
			parts = append(parts, fmt.Sprintf("%s: %v", step.Entity, step.Err))
		}
	}
	return "redaction incomplete: " + strings.Join(parts, "; ")
}
