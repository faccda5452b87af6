package web

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	gdprlogStore "polyglot/internal/adapters/storage/gdprlog"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// authorizeAdmin checks the bearer token in constant time. An unset admin
// token disables the endpoint entirely rather than opening it.
func (h *Handlers) authorizeAdmin(r *http.Request) bool {
	if h.AdminToken == "" {
		return false
	}

	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return false
	}

	token := strings.TrimPrefix(auth, prefix)
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.AdminToken)) == 1
}

// handleAdminGDPRRequests lists audit trail records (GET /admin/gdpr-requests).
// Query parameters: shop_domain, request_type, from, to, limit.
func (h *Handlers) handleAdminGDPRRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if !h.authorizeAdmin(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var filter gdprlogStore.Filter
	q := r.URL.Query()
	if v := q.Get("shop_domain"); v != "" {
		filter.ShopDomain = &v
	}
	if v := q.Get("request_type"); v != "" {
		filter.RequestType = &v
	}
	if v := q.Get("from"); v != "" {
		filter.FromDate = &v
	}
	if v := q.Get("to"); v != "" {
		filter.ToDate = &v
	}

	limit := defaultAuditLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxAuditLimit)
	}

	records, err := h.GDPRLog.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"count":    len(records),
		"requests": records,
	})
}

// handleHealthz reports liveness (GET /healthz).
func (h *Handlers) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
