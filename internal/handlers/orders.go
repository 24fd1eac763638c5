package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/tailorledger/internal/auth"
	"github.com/diewo77/tailorledger/internal/httpx"
	"github.com/diewo77/tailorledger/internal/ledger"
	"github.com/diewo77/tailorledger/internal/models"
	"github.com/diewo77/tailorledger/internal/validation"
	"github.com/diewo77/tailorledger/internal/window"
)

type OrderHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Engine
}

func NewOrderHandler(db *gorm.DB, eng *ledger.Engine) *OrderHandler {
	return &OrderHandler{DB: db, Ledger: eng}
}

// List: GET /orders – one calendar month per page, offset pagination within
// it. delivery_date=today|YYYY-MM-DD overrides the month window.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	m := monthFromQuery(r, now)

	dbq := h.DB.Model(&models.Order{})
	if dd := r.URL.Query().Get("delivery_date"); dd != "" {
		day, ok := deliveryDayFilter(dd, now)
		if !ok {
			dbq = dbq.Where("orders.created_at >= ? AND orders.created_at <= ?", m.Start, m.End)
		} else {
			dbq = dbq.Where("orders.delivery_date >= ? AND orders.delivery_date < ?", day, day.AddDate(0, 0, 1))
		}
	} else {
		dbq = dbq.Where("orders.created_at >= ? AND orders.created_at <= ?", m.Start, m.End)
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := "%" + q + "%"
		dbq = dbq.Joins("JOIN customers ON customers.id = orders.customer_id").
			Where("customers.name LIKE ? OR customers.mobile LIKE ?", like, like)
	}
	switch r.URL.Query().Get("status") {
	case "pending":
		dbq = dbq.Where("orders.balance > 0")
	case "paid":
		dbq = dbq.Where("orders.balance <= 0")
	}

	var total int64
	dbq.Count(&total)
	var orders []models.Order
	page := pageFromQuery(r)
	if err := dbq.Preload("Customer").Order("orders.created_at DESC").
		Limit(window.PerPage).Offset(window.Offset(page)).Find(&orders).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_orders", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":     orders,
		"total":     total,
		"page":      page,
		"per_page":  window.PerPage,
		"month_nav": navFor(m),
	})
}

func deliveryDayFilter(raw string, now time.Time) (time.Time, bool) {
	if raw == "today" {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

type orderUpdateReq struct {
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`
	TotalAmt     string `json:"total_amt"`
	Advance      string `json:"advance"`
	PaymentMode  string `json:"payment_mode"`
	DeliveryDate string `json:"delivery_date"`
}

func decodeOrderUpdate(r *http.Request) (orderUpdateReq, bool) {
	var req orderUpdateReq
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, false
		}
		return req, true
	}
	if err := r.ParseForm(); err != nil {
		return req, false
	}
	req.OrderID = r.Form.Get("order_id")
	req.Status = r.Form.Get("status")
	req.TotalAmt = r.Form.Get("total_amt")
	req.Advance = r.Form.Get("advance")
	req.PaymentMode = r.Form.Get("payment_mode")
	req.DeliveryDate = r.Form.Get("delivery_date")
	return req, true
}

// UpdateDetails: POST /orders/update – reruns the ledger rule for one order.
// Amounts arrive as text and are validated before any store access;
// malformed input rolls the whole thing back.
func (h *OrderHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorIDFromContext(r.Context())
	req, ok := decodeOrderUpdate(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", nil)
		return
	}
	orderID, err := strconv.Atoi(req.OrderID)
	if err != nil || orderID <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}

	v := validation.Violations{}
	in := ledger.FinancialUpdate{
		Total:       validation.Amount("total_amt", req.TotalAmt, v),
		Advance:     validation.Amount("advance", req.Advance, v),
		PaymentMode: req.PaymentMode,
		WorkStatus:  req.Status,
	}
	in.DeliveryDate = validation.Date("delivery_date", req.DeliveryDate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	order, err := h.Ledger.ApplyFinancials(r.Context(), actorID, uint(orderID), in)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":             order.ID,
		"total_amt":      order.TotalAmt,
		"advance":        order.Advance,
		"balance":        order.Balance,
		"payment_status": order.PaymentStatus,
		"work_status":    order.WorkStatus,
	})
}

// Delete: POST /orders/delete?id=...
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorIDFromContext(r.Context())
	id, ok := idFromQuery(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Ledger.DeleteOrder(r.Context(), actorID, id); err != nil {
		writeCoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
