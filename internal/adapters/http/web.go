package web

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"polyglot/internal/adapters/email"
	"polyglot/internal/adapters/http/middleware"
	credentialStore "polyglot/internal/adapters/storage/credential"
	exportStore "polyglot/internal/adapters/storage/export"
	gdprlogStore "polyglot/internal/adapters/storage/gdprlog"
	localeStore "polyglot/internal/adapters/storage/locale"
	shopStore "polyglot/internal/adapters/storage/shop"
	translationStore "polyglot/internal/adapters/storage/translation"
	"polyglot/internal/domain/secrets"
)

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Handlers carries every dependency the HTTP surface needs. All wiring is
// explicit; there is no package-level state to configure.
type Handlers struct {
	WebhookSecret string
	AdminToken    string

	GDPRLog      gdprlogStore.Store
	Shops        shopStore.Store
	Translations translationStore.Store
	Locales      localeStore.Store
	Credentials  credentialStore.Store
	Exports      exportStore.Store

	Cipher    *secrets.Cipher
	Sender    email.Sender
	EmailFrom string
	OpsEmail  string
	BaseURL   string

	GenerateID func() string
	Now        func() time.Time
}

// NewMux wires HTTP handlers for the compliance service.
func NewMux(h *Handlers) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhooks/compliance", h.handleComplianceWebhook)
	mux.HandleFunc("/exports/", h.handleExportDownload)
	mux.HandleFunc("/admin/gdpr-requests", h.handleAdminGDPRRequests)
	mux.HandleFunc("/healthz", h.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	// Rate limiter: configurable requests per second per IP
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Metrics -> RateLimit -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.Metrics,
	)
}
