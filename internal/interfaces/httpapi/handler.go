package httpapi

import (
	"net/http"

	"cryptofeed/internal/application/service"
)

type CryptoHandler struct {
	snapshots *service.SnapshotService
}

func NewCryptoHandler(snapshots *service.SnapshotService) *CryptoHandler {
	return &CryptoHandler{snapshots: snapshots}
}

// List serves GET /api/crypto.
func (h *CryptoHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.snapshots.Current(r.Context())
	if err != nil {
		WriteError(w, WrapError(err, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError))
		return
	}
	WriteJSON(w, http.StatusOK, rows)
}

// Health serves GET /healthz.
func (h *CryptoHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.snapshots.Healthy(r.Context()); err != nil {
		WriteError(w, WrapError(err, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
