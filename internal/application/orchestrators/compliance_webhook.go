package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"polyglot/internal/adapters/email"
	"polyglot/internal/domain/export"
	"polyglot/internal/domain/gdpr"
	"polyglot/internal/domain/locale"
	"polyglot/internal/domain/secrets"
	"polyglot/internal/domain/shop"
	"polyglot/internal/domain/webhook"
	"polyglot/internal/metrics"
)

// ErrVerificationFailed is returned when the webhook signature does not
// match. Handlers map it to 401 and must not leak anything more specific.
var ErrVerificationFailed = errors.New("verification failed")

// ErrUnsupportedTopic is returned for topics outside the compliance set.
var ErrUnsupportedTopic = errors.New("unsupported webhook topic")

// GDPRLogForCompliance defines the audit trail interface needed by ComplianceWebhook.
type GDPRLogForCompliance interface {
	Append(ctx context.Context, rec gdpr.Record) error
}

// ShopStoreForCompliance defines the shop store interface needed by ComplianceWebhook.
type ShopStoreForCompliance interface {
	GetByDomain(ctx context.Context, shopDomain string) (shop.Shop, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// LocaleStoreForCompliance defines the locale store interface needed by ComplianceWebhook.
type LocaleStoreForCompliance interface {
	ListByCustomer(ctx context.Context, shopID, customerID, customerEmail string) ([]locale.Preference, error)
	DeleteByShop(ctx context.Context, shopID string) (int64, error)
	DeleteByCustomer(ctx context.Context, shopID, customerID, customerEmail string) (int64, error)
}

// ExportStoreForCompliance defines the export store interface needed by ComplianceWebhook.
type ExportStoreForCompliance interface {
	Save(ctx context.Context, ex export.Export) error
	DeleteByShop(ctx context.Context, shopID string) (int64, error)
	DeleteByCustomer(ctx context.Context, shopID, customerID, customerEmail string) (int64, error)
}

// ComplianceWebhookInput carries one inbound webhook delivery.
type ComplianceWebhookInput struct {
	Request webhook.Request
}

// ComplianceWebhookDeps holds dependencies for ComplianceWebhook.
type ComplianceWebhookDeps struct {
	Secret       string
	GDPRLog      GDPRLogForCompliance
	Shops        ShopStoreForCompliance
	Translations TranslationStoreForRedaction
	Locales      LocaleStoreForCompliance
	Credentials  CredentialStoreForRedaction
	Exports      ExportStoreForCompliance
	Cipher       *secrets.Cipher
	Sender       email.Sender
	EmailFrom    string
	OpsEmail     string
	BaseURL      string
	GenerateID   func() string
	Now          func() time.Time
}

// ComplianceWebhookResult reports the outcome the handler turns into a response.
type ComplianceWebhookResult struct {
	RequestID string
	Message   string
}

// ExecuteComplianceWebhook verifies, audits, and dispatches one compliance
// webhook. Every delivery leaves exactly one audit record regardless of
// outcome: rejected signatures, malformed payloads, and failed redactions
// are all evidence the platform can ask for.
// PRE: input.Request.Body holds the exact raw bytes that were signed
// POST: One audit record appended; data mutations only after a valid signature
// INVARIANT: An invalid signature never reaches a store mutation
func ExecuteComplianceWebhook(ctx context.Context, input ComplianceWebhookInput, deps ComplianceWebhookDeps) (ComplianceWebhookResult, error) {
	verified := webhook.Verify(input.Request, deps.Secret)
	requestType := requestTypeForTopic(input.Request.Topic)
	shopDomain := effectiveShopDomain(verified.Payload, input.Request.ShopDomain)

	record := gdpr.NewRecord(deps.GenerateID(), shopDomain, requestType, deps.Now())
	if verified.Payload != nil && verified.Payload.HasCustomer() {
		record = record.WithCustomer(payloadCustomerID(verified.Payload), verified.Payload.Customer.Email)
	}
	result := ComplianceWebhookResult{RequestID: record.ID}

	if !verified.Valid {
		appendRecord(ctx, deps, record.WithError("signature verification failed"))
		metrics.WebhooksTotal.WithLabelValues(string(requestType), metrics.OutcomeUnauthorized).Inc()
		slog.Warn("compliance_event", "event", "webhook_rejected",
			"shop_domain", shopDomain, "topic", input.Request.Topic, "webhook_id", input.Request.WebhookID)
		return result, ErrVerificationFailed
	}

	if reason := malformedReason(verified.Payload, shopDomain, requestType); reason != "" {
		appendRecord(ctx, deps, record.WithError(reason))
		metrics.WebhooksTotal.WithLabelValues(string(requestType), metrics.OutcomeMalformed).Inc()
		if requestType == gdpr.TypeUnknown {
			return result, fmt.Errorf("%w: %q", ErrUnsupportedTopic, input.Request.Topic)
		}
		return result, fmt.Errorf("%s: %w", reason, webhook.ErrMalformedPayload)
	}

	var dispatchErr error
	switch requestType {
	case gdpr.TypeShopRedact:
		_, dispatchErr = ExecuteRedactShop(ctx, RedactShopInput{ShopDomain: shopDomain}, RedactShopDeps{
			Shops:        deps.Shops,
			Translations: deps.Translations,
			Locales:      deps.Locales,
			Credentials:  deps.Credentials,
			Exports:      deps.Exports,
		})
		result.Message = "shop data redacted"

	case gdpr.TypeCustomerRedact:
		_, dispatchErr = ExecuteRedactCustomer(ctx, RedactCustomerInput{
			ShopDomain:    shopDomain,
			CustomerID:    record.CustomerID,
			CustomerEmail: record.CustomerEmail,
		}, RedactCustomerDeps{
			Shops:   deps.Shops,
			Locales: deps.Locales,
			Exports: deps.Exports,
		})
		result.Message = "customer data redacted"

	case gdpr.TypeDataRequest:
		var res DataRequestResult
		res, dispatchErr = ExecuteDataRequest(ctx, DataRequestInput{
			ShopDomain:      shopDomain,
			CustomerID:      record.CustomerID,
			CustomerEmail:   record.CustomerEmail,
			OrdersRequested: verified.Payload.OrdersRequested,
		}, DataRequestDeps{
			Shops:      deps.Shops,
			Locales:    deps.Locales,
			Exports:    deps.Exports,
			Cipher:     deps.Cipher,
			Sender:     deps.Sender,
			EmailFrom:  deps.EmailFrom,
			BaseURL:    deps.BaseURL,
			GenerateID: deps.GenerateID,
			Now:        deps.Now,
		})
		if res.Compiled {
			result.Message = "data export compiled"
		} else {
			result.Message = "no stored data for shop"
		}
	}

	if dispatchErr != nil {
		appendRecord(ctx, deps, record.WithError(dispatchErr.Error()))

		var redactionErr *RedactionError
		if errors.As(dispatchErr, &redactionErr) {
			metrics.WebhooksTotal.WithLabelValues(string(requestType), metrics.OutcomePartialFailure).Inc()
			notifier := AlertNotifier{Sender: deps.Sender, From: deps.EmailFrom, To: deps.OpsEmail}
			notifier.NotifyRedactionFailure(ctx, shopDomain, requestType, redactionErr.Report)
		} else {
			metrics.WebhooksTotal.WithLabelValues(string(requestType), metrics.OutcomeError).Inc()
		}
		return result, dispatchErr
	}

	if err := appendRecord(ctx, deps, record); err != nil {
		// The mutation succeeded but the evidence write did not. Fail the
		// delivery so the platform retries and the trail catches up.
		metrics.WebhooksTotal.WithLabelValues(string(requestType), metrics.OutcomeError).Inc()
		return result, err
	}

	metrics.WebhooksTotal.WithLabelValues(string(requestType), metrics.OutcomeOK).Inc()
	slog.Info("compliance_event", "event", "webhook_processed",
		"request_id", record.ID, "topic", input.Request.Topic,
		"shop_domain", shopDomain, "webhook_id", input.Request.WebhookID)
	return result, nil
}

// requestTypeForTopic maps a topic header to the audited request type.
// Unrecognized topics map to TypeUnknown rather than an error so the
// delivery is still audited.
func requestTypeForTopic(topic string) gdpr.RequestType {
	switch webhook.Topic(topic) {
	case webhook.TopicShopRedact:
		return gdpr.TypeShopRedact
	case webhook.TopicCustomerRedact:
		return gdpr.TypeCustomerRedact
	case webhook.TopicDataRequest:
		return gdpr.TypeDataRequest
	default:
		return gdpr.TypeUnknown
	}
}

// effectiveShopDomain prefers the signed payload over the header and falls
// back to the audit placeholder when both are absent.
func effectiveShopDomain(payload *webhook.CompliancePayload, headerDomain string) string {
	if payload != nil && payload.ShopDomain != "" {
		return payload.ShopDomain
	}
	if headerDomain != "" {
		return headerDomain
	}
	return gdpr.UnknownShopDomain
}

// malformedReason explains why a verified delivery still cannot be
// processed. An empty string means the payload is complete.
func malformedReason(payload *webhook.CompliancePayload, shopDomain string, requestType gdpr.RequestType) string {
	if payload == nil {
		return "malformed payload"
	}
	if requestType == gdpr.TypeUnknown {
		return "unsupported topic"
	}
	if shopDomain == gdpr.UnknownShopDomain {
		return "missing shop domain"
	}
	if requestType != gdpr.TypeShopRedact && !payload.HasCustomer() {
		return "missing customer"
	}
	return ""
}

// payloadCustomerID renders the numeric customer id for storage, empty when absent.
func payloadCustomerID(payload *webhook.CompliancePayload) string {
	if payload.Customer == nil || payload.Customer.ID == 0 {
		return ""
	}
	return strconv.FormatInt(payload.Customer.ID, 10)
}

// appendRecord writes the mandatory audit record. Callers on failure paths
// ignore the returned error so the primary failure wins; the append failure
// is still logged here.
func appendRecord(ctx context.Context, deps ComplianceWebhookDeps, rec gdpr.Record) error {
	if err := deps.GDPRLog.Append(ctx, rec); err != nil {
		slog.Error("compliance_event", "event", "audit_append_failed", "request_id", rec.ID, "error", err)
		return fmt.Errorf("failed to record audit trail: %w", err)
	}
	return nil
}
