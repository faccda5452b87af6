package orchestrators

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"testing"
	"time"

	"polyglot/internal/adapters/email"
	"polyglot/internal/domain/credential"
	"polyglot/internal/domain/export"
	"polyglot/internal/domain/gdpr"
	"polyglot/internal/domain/locale"
	"polyglot/internal/domain/secrets"
	"polyglot/internal/domain/shop"
	"polyglot/internal/domain/webhook"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

func fixedID() string { return "test-id-001" }

const testWebhookSecret = "shpss_test_secret"

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func testCipher(t *testing.T) *secrets.Cipher {
	t.Helper()

	key, err := secrets.ParseKey(testKeyHex)
	if err != nil {
		t.Fatalf("failed to parse test key: %v", err)
	}
	c, err := secrets.NewCipher(key)
	if err != nil {
		t.Fatalf("failed to build test cipher: %v", err)
	}
	return c
}

// signedRequest builds a webhook request whose signature matches its body.
func signedRequest(t *testing.T, topic string, payload map[string]any) webhook.Request {
	t.Helper()

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}

	shopDomain, _ := payload["shop_domain"].(string)
	return webhook.Request{
		Body:       body,
		Signature:  webhook.Sign(body, testWebhookSecret),
		ShopDomain: shopDomain,
		Topic:      topic,
		WebhookID:  "wh-001",
	}
}

// mockShopStore implements the shop store interfaces for testing, keyed by domain.
type mockShopStore struct {
	shops     map[string]shop.Shop
	deleted   []string
	getErr    error
	deleteErr error
}

func newMockShopStore(shops ...shop.Shop) *mockShopStore {
	m := &mockShopStore{shops: make(map[string]shop.Shop)}
	for _, sh := range shops {
		m.shops[sh.Domain] = sh
	}
	return m
}

func (m *mockShopStore) GetByDomain(_ context.Context, shopDomain string) (shop.Shop, error) {
	if m.getErr != nil {
		return shop.Shop{}, m.getErr
	}
	sh, ok := m.shops[shopDomain]
	if !ok {
		return shop.Shop{}, shop.ErrNotFound
	}
	return sh, nil
}

func (m *mockShopStore) Delete(_ context.Context, id string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	for d, sh := range m.shops {
		if sh.ID == id {
			delete(m.shops, d)
			m.deleted = append(m.deleted, id)
			return 1, nil
		}
	}
	return 0, nil
}

// mockTranslationStore implements TranslationStoreForRedaction for testing.
type mockTranslationStore struct {
	rowsByShop map[string]int64
	calls      int
	err        error
}

func (m *mockTranslationStore) DeleteByShop(_ context.Context, shopID string) (int64, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	n := m.rowsByShop[shopID]
	delete(m.rowsByShop, shopID)
	return n, nil
}

// mockLocaleStore implements the locale store interfaces for testing.
type mockLocaleStore struct {
	prefs     []locale.Preference
	listErr   error
	deleteErr error
}

func matchesCustomer(p locale.Preference, customerID, customerEmail string) bool {
	if customerID != "" && p.CustomerID == customerID {
		return true
	}
	if customerEmail != "" && p.CustomerEmail == customerEmail {
		return true
	}
	return false
}

func (m *mockLocaleStore) ListByCustomer(_ context.Context, shopID, customerID, customerEmail string) ([]locale.Preference, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []locale.Preference
	for _, p := range m.prefs {
		if p.ShopID == shopID && matchesCustomer(p, customerID, customerEmail) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockLocaleStore) DeleteByShop(_ context.Context, shopID string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var kept []locale.Preference
	var n int64
	for _, p := range m.prefs {
		if p.ShopID == shopID {
			n++
			continue
		}
		kept = append(kept, p)
	}
	m.prefs = kept
	return n, nil
}

func (m *mockLocaleStore) DeleteByCustomer(_ context.Context, shopID, customerID, customerEmail string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var kept []locale.Preference
	var n int64
	for _, p := range m.prefs {
		if p.ShopID == shopID && matchesCustomer(p, customerID, customerEmail) {
			n++
			continue
		}
		kept = append(kept, p)
	}
	m.prefs = kept
	return n, nil
}

// mockCredentialStore implements the credential store interfaces for testing.
type mockCredentialStore struct {
	creds        []credential.Credential
	deleteErr    error
	listErr      error
	updateErrFor map[string]error
}

func (m *mockCredentialStore) ListPage(_ context.Context, afterID string, limit int) ([]credential.Credential, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	sorted := make([]credential.Credential, len(m.creds))
	copy(sorted, m.creds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var page []credential.Credential
	for _, c := range sorted {
		if c.ID > afterID {
			page = append(page, c)
			if len(page) == limit {
				break
			}
		}
	}
	return page, nil
}

func (m *mockCredentialStore) UpdateToken(_ context.Context, id, token string) error {
	if err := m.updateErrFor[id]; err != nil {
		return err
	}
	for i := range m.creds {
		if m.creds[i].ID == id {
			m.creds[i].Token = token
			return nil
		}
	}
	return errors.New("credential not found")
}

func (m *mockCredentialStore) DeleteByShop(_ context.Context, shopID string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var kept []credential.Credential
	var n int64
	for _, c := range m.creds {
		if c.ShopID == shopID {
			n++
			continue
		}
		kept = append(kept, c)
	}
	m.creds = kept
	return n, nil
}

// mockExportStore implements the export store interfaces for testing.
type mockExportStore struct {
	exports   []export.Export
	saveErr   error
	deleteErr error
}

func (m *mockExportStore) Save(_ context.Context, ex export.Export) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.exports = append(m.exports, ex)
	return nil
}

func (m *mockExportStore) DeleteByShop(_ context.Context, shopID string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var kept []export.Export
	var n int64
	for _, ex := range m.exports {
		if ex.ShopID == shopID {
			n++
			continue
		}
		kept = append(kept, ex)
	}
	m.exports = kept
	return n, nil
}

func (m *mockExportStore) DeleteByCustomer(_ context.Context, shopID, customerID, customerEmail string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var kept []export.Export
	var n int64
	for _, ex := range m.exports {
		match := ex.ShopID == shopID &&
			((customerID != "" && ex.CustomerID == customerID) ||
				(customerEmail != "" && ex.CustomerEmail == customerEmail))
		if match {
			n++
			continue
		}
		kept = append(kept, ex)
	}
	m.exports = kept
	return n, nil
}

// mockGDPRLog implements GDPRLogForCompliance for testing.
type mockGDPRLog struct {
	records []gdpr.Record
	err     error
}

func (m *mockGDPRLog) Append(_ context.Context, rec gdpr.Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

// mockSender implements email.Sender for testing.
type mockSender struct {
	sent []email.SendRequest
	err  error
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "mock-msg-001", SentAt: fixedTime}, nil
}
