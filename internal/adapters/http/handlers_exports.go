package web

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"polyglot/internal/domain/export"
)

// handleExportDownload serves a compiled data export (GET /exports/{id}?token=...).
// The token is the capability: without it the export id alone is worthless.
// Unknown and expired exports answer identically so the endpoint cannot be
// used to probe which ids exist.
func (h *Handlers) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/exports/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "export not found or expired")
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusForbidden, "download token required")
		return
	}

	ex, err := h.Exports.GetByID(r.Context(), id)
	if errors.Is(err, export.ErrNotFound) {
		writeError(w, http.StatusNotFound, "export not found or expired")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	if err := ex.CanDownload(token, h.Now()); err != nil {
		switch {
		case errors.Is(err, export.ErrTokenInvalid):
			writeError(w, http.StatusForbidden, "invalid download token")
		case errors.Is(err, export.ErrExpired), errors.Is(err, export.ErrNotReady):
			writeError(w, http.StatusNotFound, "export not found or expired")
		default:
			internalError(w, err)
		}
		return
	}

	plaintext, err := h.Cipher.Decrypt(ex.Payload)
	if err != nil {
		// Never serve partial or garbled output; fail loudly instead.
		slog.Error("export_decrypt_failed", "export_id", ex.ID, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "export unreadable",
			"message": "the export could not be decrypted",
		})
		return
	}

	if err := h.Exports.MarkDownloaded(r.Context(), ex.ID, h.Now()); err != nil {
		slog.Error("export_mark_downloaded_failed", "export_id", ex.ID, "error", err.Error())
	}

	slog.Info("compliance_event", "event", "export_downloaded", "export_id", ex.ID)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="data-export.json"`)
	if _, err := w.Write([]byte(plaintext)); err != nil {
		slog.Error("export_write_failed", "export_id", ex.ID, "error", err.Error())
	}
}
