package handlers

import (
	"net/http"
	"time"

	"github.com/diewo77/tailorledger/internal/httpx"
	"github.com/diewo77/tailorledger/internal/i18n"
	"github.com/diewo77/tailorledger/internal/reporting"
)

type DashboardHandler struct {
	Reports *reporting.Engine
	Phrases *i18n.Cache
}

func NewDashboardHandler(rep *reporting.Engine, phrases *i18n.Cache) *DashboardHandler {
	return &DashboardHandler{Reports: rep, Phrases: phrases}
}

var dashboardLabelCodes = []string{
	"dashboard", "total_customers", "all_time_revenue", "pending_balance",
	"due_today", "urgent_reminders", "upcoming_deliveries", "top_customers",
	"working", "delivered", "payment_status",
}

// Index: GET /dashboard – the one-call aggregate behind the landing
// screen. The counter block is load-bearing; the side lists degrade to
// empty independently rather than failing the whole payload.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	stats, err := h.Reports.Stats(now)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_dashboard", nil)
		return
	}

	top, _ := h.Reports.TopCustomers(reporting.TopCustomersLimit)
	histogram, _ := h.Reports.StatusHistogram()
	urgent, _ := h.Reports.UrgentDeliveries(now)
	upcoming, _ := h.Reports.UpcomingDeliveries(now)
	todays, _ := h.Reports.TodaysOrders(now)
	trend, _ := h.Reports.MonthlyTrend(now)

	lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
	labels := make(map[string]string, len(dashboardLabelCodes))
	for _, code := range dashboardLabelCodes {
		labels[code] = h.Phrases.Lookup(lang, code)
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"stats":            stats,
		"top_customers":    top,
		"status_histogram": histogram,
		"urgent":           urgent,
		"upcoming":         upcoming,
		"todays_orders":    todays,
		"monthly_trend":    trend,
		"lang":             lang,
		"labels":           labels,
	})
}
