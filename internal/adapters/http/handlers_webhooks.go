package web

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"polyglot/internal/application/orchestrators"
	"polyglot/internal/domain/webhook"
)

// maxWebhookBody caps how much of a delivery is read. Compliance payloads
// are small; anything larger is not one.
const maxWebhookBody = 1 << 20

// handleComplianceWebhook accepts platform compliance deliveries (POST /webhooks/compliance).
// PRE: The raw body is hashed exactly as received; nothing re-serializes it
// POST: One of 200/400/401/500 with the JSON envelope; the audit trail
// recorded the delivery whatever the outcome
func (h *Handlers) handleComplianceWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		internalError(w, err)
		return
	}

	req := webhook.Request{
		Body:       body,
		Signature:  r.Header.Get(webhook.HeaderSignature),
		ShopDomain: r.Header.Get(webhook.HeaderShopDomain),
		Topic:      r.Header.Get(webhook.HeaderTopic),
		WebhookID:  r.Header.Get(webhook.HeaderWebhookID),
	}

	result, err := orchestrators.ExecuteComplianceWebhook(r.Context(),
		orchestrators.ComplianceWebhookInput{Request: req}, h.complianceDeps())

	switch {
	case err == nil:
		writeSuccess(w, result.Message)

	case errors.Is(err, orchestrators.ErrVerificationFailed):
		// The only detail an unauthenticated caller gets.
		writeError(w, http.StatusUnauthorized, "verification failed")

	case errors.Is(err, webhook.ErrMalformedPayload), errors.Is(err, orchestrators.ErrUnsupportedTopic):
		writeError(w, http.StatusBadRequest, err.Error())

	default:
		var redactionErr *orchestrators.RedactionError
		if errors.As(err, &redactionErr) {
			slog.Error("webhook_redaction_incomplete", "request_id", result.RequestID, "error", err.Error())
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"success": false,
				"error":   "redaction incomplete",
				"message": "one or more deletions failed; manual remediation may be required",
			})
			return
		}
		internalError(w, err)
	}
}

// complianceDeps assembles orchestrator dependencies from the handler set.
func (h *Handlers) complianceDeps() orchestrators.ComplianceWebhookDeps {
	return orchestrators.ComplianceWebhookDeps{
		Secret:       h.WebhookSecret,
		GDPRLog:      h.GDPRLog,
		Shops:        h.Shops,
		Translations: h.Translations,
		Locales:      h.Locales,
		Credentials:  h.Credentials,
		Exports:      h.Exports,
		Cipher:       h.Cipher,
		Sender:       h.Sender,
		EmailFrom:    h.EmailFrom,
		OpsEmail:     h.OpsEmail,
		BaseURL:      h.BaseURL,
		GenerateID:   h.GenerateID,
		Now:          h.Now,
	}
}
