package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/tailorledger/internal/audit"
	"github.com/diewo77/tailorledger/internal/httpx"
)

type HistoryHandler struct {
	Audit *audit.Recorder
}

func NewHistoryHandler(rec *audit.Recorder) *HistoryHandler {
	return &HistoryHandler{Audit: rec}
}

// Index: GET /history – recent audit entries, newest first. Reading the
// log also prunes anything past the retention horizon.
func (h *HistoryHandler) Index(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 500 {
		limit = n
	}
	entries, err := h.Audit.ListRecent(limit)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_history", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries})
}
