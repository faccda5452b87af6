package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"polyglot/internal/adapters/email"
	"polyglot/internal/domain/export"
	"polyglot/internal/domain/locale"
	"polyglot/internal/domain/secrets"
	"polyglot/internal/domain/shop"
)

// ShopStoreForDataRequest defines the store interface needed by DataRequest.
type ShopStoreForDataRequest interface {
	GetByDomain(ctx context.Context, shopDomain string) (shop.Shop, error)
}

// LocaleStoreForDataRequest defines the store interface needed by DataRequest.
type LocaleStoreForDataRequest interface {
	ListByCustomer(ctx context.Context, shopID, customerID, customerEmail string) ([]locale.Preference, error)
}

// ExportStoreForDataRequest defines the store interface needed by DataRequest.
type ExportStoreForDataRequest interface {
	Save(ctx context.Context, ex export.Export) error
}

// DataRequestInput carries input for the data request orchestrator.
type DataRequestInput struct {
	ShopDomain      string
	CustomerID      string
	CustomerEmail   string
	OrdersRequested []int64
}

// DataRequestDeps holds dependencies for DataRequest.
type DataRequestDeps struct {
	Shops      ShopStoreForDataRequest
	Locales    LocaleStoreForDataRequest
	Exports    ExportStoreForDataRequest
	Cipher     *secrets.Cipher
	Sender     email.Sender
	EmailFrom  string
	BaseURL    string
	GenerateID func() string
	Now        func() time.Time
}

// DataRequestResult reports what the orchestrator produced.
type DataRequestResult struct {
	ExportID string
	Compiled bool // false when the app holds nothing for the shop
}

// ExecuteDataRequest compiles everything the app holds about a customer
// into an encrypted export and mails the customer a download link.
// PRE: ShopDomain must be non-empty; at least one customer identifier is present
// POST: An export row exists with an encrypted payload and a hashed download
// token, or Compiled is false because the shop has no stored data
// INVARIANT: The plaintext document and download token are never persisted
// and never logged; only the ciphertext and the bcrypt hash reach the store
func ExecuteDataRequest(ctx context.Context, input DataRequestInput, deps DataRequestDeps) (DataRequestResult, error) {
	if input.ShopDomain == "" {
		return DataRequestResult{}, errors.New("shop domain is required")
	}
	if input.CustomerID == "" && input.CustomerEmail == "" {
		return DataRequestResult{}, errors.New("customer id or email is required")
	}

	sh, err := deps.Shops.GetByDomain(ctx, input.ShopDomain)
	if errors.Is(err, shop.ErrNotFound) {
		// No shop row means no stored data to hand over. The request
		// still succeeds; the audit trail records that it arrived.
		slog.Info("compliance_event", "event", "data_request_noop", "shop_domain", input.ShopDomain)
		return DataRequestResult{Compiled: false}, nil
	}
	if err != nil {
		return DataRequestResult{}, fmt.Errorf("failed to resolve shop: %w", err)
	}

	prefs, err := deps.Locales.ListByCustomer(ctx, sh.ID, input.CustomerID, input.CustomerEmail)
	if err != nil {
		return DataRequestResult{}, fmt.Errorf("failed to collect locale preferences: %w", err)
	}

	doc := export.Document{
		ShopDomain:        input.ShopDomain,
		CustomerID:        input.CustomerID,
		CustomerEmail:     input.CustomerEmail,
		OrdersRequested:   input.OrdersRequested,
		LocalePreferences: make([]export.PreferenceRecord, 0, len(prefs)),
		CompiledAt:        deps.Now(),
	}
	for _, pref := range prefs {
		doc.LocalePreferences = append(doc.LocalePreferences, export.PreferenceRecord{
			Locale:    pref.Locale,
			UpdatedAt: pref.UpdatedAt,
		})
	}

	plaintext, err := doc.ToJSON()
	if err != nil {
		return DataRequestResult{}, fmt.Errorf("failed to compile export document: %w", err)
	}

	payload, err := deps.Cipher.Encrypt(string(plaintext))
	if err != nil {
		return DataRequestResult{}, fmt.Errorf("failed to encrypt export document: %w", err)
	}

	token, err := export.NewDownloadToken()
	if err != nil {
		return DataRequestResult{}, err
	}
	tokenHash, err := export.HashToken(token)
	if err != nil {
		return DataRequestResult{}, err
	}

	ex := export.Export{
		ID:            deps.GenerateID(),
		ShopID:        sh.ID,
		CustomerID:    input.CustomerID,
		CustomerEmail: input.CustomerEmail,
		Orders:        input.OrdersRequested,
		TokenHash:     tokenHash,
		Status:        export.StatusPending,
		RequestedAt:   deps.Now(),
	}
	if err := ex.MarkReady(payload, deps.Now()); err != nil {
		return DataRequestResult{}, err
	}

	if err := deps.Exports.Save(ctx, ex); err != nil {
		return DataRequestResult{}, fmt.Errorf("failed to save export: %w", err)
	}

	sendDownloadLink(ctx, deps, input.CustomerEmail, ex.ID, token)

	slog.Info("compliance_event", "event", "data_request_compiled",
		"shop_domain", input.ShopDomain, "export_id", ex.ID, "preferences", len(prefs))
	return DataRequestResult{ExportID: ex.ID, Compiled: true}, nil
}

// sendDownloadLink mails the customer their one download link. Delivery is
// best effort: the export already exists and the webhook outcome must not
// depend on a mail provider.
func sendDownloadLink(ctx context.Context, deps DataRequestDeps, to, exportID, token string) {
	if deps.Sender == nil || to == "" {
		return
	}

	link := fmt.Sprintf("%s/exports/%s?token=%s", deps.BaseURL, exportID, token)
	md := fmt.Sprintf(`# Your data export is ready

The store you shopped with asked us to compile the data we hold about you.

[Download your export](%s)

The link works for 7 days. The file is a JSON document listing your saved
language preferences for this store.`, link)

	html, err := email.RenderHTML(md)
	if err != nil {
		slog.Error("compliance_event", "event", "export_email_render_failed", "export_id", exportID, "error", err)
		return
	}

	_, err = deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{to},
		From:    deps.EmailFrom,
		Subject: "Your data export is ready",
		HTML:    html,
	})
	if err != nil {
		slog.Error("compliance_event", "event", "export_email_failed", "export_id", exportID, "error", err)
	}
}
