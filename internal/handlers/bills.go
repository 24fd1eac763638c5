package handlers

import (
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/tailorledger/internal/auth"
	"github.com/diewo77/tailorledger/internal/billtoken"
	"github.com/diewo77/tailorledger/internal/httpx"
	"github.com/diewo77/tailorledger/internal/ledger"
	"github.com/diewo77/tailorledger/internal/models"
	"github.com/diewo77/tailorledger/internal/validation"
	"github.com/diewo77/tailorledger/internal/window"
)

type BillHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Engine
	Tokens *billtoken.Signer
}

func NewBillHandler(db *gorm.DB, eng *ledger.Engine, tokens *billtoken.Signer) *BillHandler {
	return &BillHandler{DB: db, Ledger: eng, Tokens: tokens}
}

// List: GET /bills – the billing view of orders, month-windowed on
// creation date with an optional pending/paid filter.
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	m := monthFromQuery(r, time.Now())
	dbq := h.DB.Model(&models.Order{}).
		Where("orders.created_at >= ? AND orders.created_at <= ?", m.Start, m.End)

	switch r.URL.Query().Get("status") {
	case "pending":
		dbq = dbq.Where("orders.balance > 0")
	case "paid":
		dbq = dbq.Where("orders.balance <= 0")
	}
	if q := r.URL.Query().Get("q"); q != "" {
		like := "%" + q + "%"
		dbq = dbq.Joins("JOIN customers ON customers.id = orders.customer_id").
			Where("customers.name LIKE ? OR customers.mobile LIKE ?", like, like)
	}

	var total int64
	dbq.Count(&total)
	page := pageFromQuery(r)
	var orders []models.Order
	if err := dbq.Preload("Customer").
		Order("orders.created_at DESC, orders.id DESC").
		Limit(window.PerPage).Offset(window.Offset(page)).Find(&orders).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_bills", nil)
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

type billUpdateReq struct {
	TotalAmt     string `json:"total_amt"`
	Advance      string `json:"advance"`
	DeliveryDate string `json:"delivery_date"`
	PaymentMode  string `json:"payment_mode"`
	Status       string `json:"status"`
}

// Update: POST /bills/update?id= – same financial recompute as the order
// detail edit, reachable from the billing screen.
func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromQuery(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	actorID, _ := auth.ActorIDFromContext(r.Context())

	req, ok := decodeOrderUpdate(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", nil)
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

	order, err := h.Ledger.ApplyFinancials(r.Context(), actorID, id, in)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"order_id":       order.ID,
		"total_amt":      order.TotalAmt,
		"advance":        order.Advance,
		"balance":        order.Balance,
		"payment_status": order.PaymentStatus,
		"work_status":    order.WorkStatus,
	})
}

// Share: GET /bills/share?id= – mints the customer-facing link for an
// existing order. The token never expires; re-minting returns the same
// value.
func (h *BillHandler) Share(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromQuery(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var order models.Order
	if err := h.DB.First(&order, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	token := h.Tokens.Issue(order.ID)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"order_id": order.ID,
		"token":    token,
		"url":      fmt.Sprintf("/bills/view?id=%d&token=%s", order.ID, token),
	})
}

// PublicView: GET /bills/view?id=&token= – the only unauthenticated data
// route. Every failure mode answers with the same 403 so the endpoint
// does not reveal whether an order id exists.
func (h *BillHandler) PublicView(w http.ResponseWriter, r *http.Request) {
	deny := func() {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	}
	id, ok := idFromQuery(r, "id")
	if !ok {
		deny()
		return
	}
	if !h.Tokens.Verify(id, r.URL.Query().Get("token")) {
		deny()
		return
	}
	var order models.Order
	if err := h.DB.Preload("Customer").First(&order, id).Error; err != nil {
		deny()
		return
	}
	var shop models.ShopProfile
	h.DB.First(&shop)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"order_id":       order.ID,
		"customer":       map[string]any{"name": order.Customer.Name, "mobile": order.Customer.Mobile},
		"items":          order.Items,
		"created_at":     order.CreatedAt,
		"delivery_date":  order.DeliveryDate,
		"work_status":    order.WorkStatus,
		"total_amt":      order.TotalAmt,
		"advance":        order.Advance,
		"balance":        order.Balance,
		"payment_status": order.PaymentStatus,
		"payment_mode":   order.PaymentMode,
		"shop": map[string]any{
			"name":    shop.ShopName,
			"address": shop.Address,
			"mobile":  shop.Mobile,
			"gst_no":  shop.GSTNo,
			"terms":   shop.Terms,
			"upi_id":  shop.UPIID,
		},
	})
}
