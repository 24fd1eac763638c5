package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/tailorledger/internal/httpx"
	"github.com/diewo77/tailorledger/internal/reporting"
)

type ReminderHandler struct {
	Reports *reporting.Engine
}

func NewReminderHandler(rep *reporting.Engine) *ReminderHandler {
	return &ReminderHandler{Reports: rep}
}

// Index: GET /reminders – overdue and tomorrow's deliveries plus the
// largest outstanding balances, all derived live from orders.
func (h *ReminderHandler) Index(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	urgent, err := h.Reports.UrgentDeliveries(now)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_reminders", nil)
		return
	}
	tomorrow, _ := h.Reports.TomorrowsDeliveries(now)
	pending, _ := h.Reports.PendingPayments(10)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"urgent":           urgent,
		"tomorrow":         tomorrow,
		"pending_payments": pending,
	})
}
