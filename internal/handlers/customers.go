package handlers

import (
	"encoding/json"
	"net/http"
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

type CustomerHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Engine
}

func NewCustomerHandler(db *gorm.DB, eng *ledger.Engine) *CustomerHandler {
	return &CustomerHandler{DB: db, Ledger: eng}
}

// customerRow is a listing row with per-customer aggregates computed in SQL.
type customerRow struct {
	models.Customer
	OrderCount   int64   `json:"order_count"`
	PendingTotal float64 `json:"pending_total"`
}

// List: GET /customers – month window on last visit, plus gender and
// payment-status filters and a name/mobile search.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	m := monthFromQuery(r, time.Now())
	dbq := h.DB.Model(&models.Customer{}).
		Where("customers.last_visit >= ? AND customers.last_visit <= ?", m.Start, m.End)

	if g := r.URL.Query().Get("gender"); g == "male" || g == "female" {
		dbq = dbq.Where("customers.gender = ?", g)
	}
	if q := r.URL.Query().Get("q"); q != "" {
		like := "%" + q + "%"
		dbq = dbq.Where("customers.name LIKE ? OR customers.mobile LIKE ?", like, like)
	}
	switch r.URL.Query().Get("status") {
	case "pending":
		dbq = dbq.Where("EXISTS (SELECT 1 FROM orders WHERE orders.customer_id = customers.id AND orders.balance > 0)")
	case "paid":
		dbq = dbq.Where("NOT EXISTS (SELECT 1 FROM orders WHERE orders.customer_id = customers.id AND orders.balance > 0)")
	}

	var total int64
	dbq.Count(&total)
	page := pageFromQuery(r)
	var rows []customerRow
	err := dbq.
		Select("customers.*, " +
			"(SELECT COUNT(*) FROM orders WHERE orders.customer_id = customers.id) AS order_count, " +
			"(SELECT COALESCE(SUM(balance), 0) FROM orders WHERE orders.customer_id = customers.id) AS pending_total").
		Order("customers.last_visit DESC, customers.id DESC").
		Limit(window.PerPage).Offset(window.Offset(page)).
		Scan(&rows).Error
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_customers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":     rows,
		"total":     total,
		"page":      page,
		"per_page":  window.PerPage,
		"month_nav": navFor(m),
	})
}

type customerCreateReq struct {
	Name      string `json:"name"`
	Mobile    string `json:"mobile"`
	AltMobile string `json:"alt_mobile"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Area      string `json:"area"`
	Gender    string `json:"gender"`
	Notes     string `json:"notes"`
	StylePref string `json:"style_pref"`
	WhatsApp  bool   `json:"whatsapp"`
}

// Create: POST /customers – the quick-add used mid-order. Name and mobile
// are the only required fields; a duplicate mobile is a 409.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req customerCreateReq
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_request", nil)
			return
		}
		req.Name = r.Form.Get("name")
		req.Mobile = r.Form.Get("mobile")
		req.AltMobile = r.Form.Get("alt_mobile")
		req.Email = r.Form.Get("email")
		req.Address = r.Form.Get("address")
		req.City = r.Form.Get("city")
		req.Area = r.Form.Get("area")
		req.Gender = r.Form.Get("gender")
		req.Notes = r.Form.Get("notes")
		req.StylePref = r.Form.Get("style_pref")
		req.WhatsApp = r.Form.Get("whatsapp") == "1"
	}

	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.Required("mobile", req.Mobile, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var existing int64
	h.DB.Model(&models.Customer{}).Where("mobile = ?", req.Mobile).Count(&existing)
	if existing > 0 {
		httpx.JSONError(w, http.StatusConflict, "mobile_already_registered", nil)
		return
	}

	c := models.Customer{
		Name:      strings.TrimSpace(req.Name),
		Mobile:    strings.TrimSpace(req.Mobile),
		AltMobile: req.AltMobile,
		Email:     req.Email,
		Address:   req.Address,
		City:      req.City,
		Area:      req.Area,
		Gender:    req.Gender,
		Notes:     req.Notes,
		StylePref: req.StylePref,
		WhatsApp:  req.WhatsApp,
		LastVisit: time.Now(),
	}
	if err := h.DB.Create(&c).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_customer", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"customer_id": c.ID, "name": c.Name})
}

// Detail: GET /customers/detail?id= – profile with order and measurement
// history preloaded.
func (h *CustomerHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromQuery(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var c models.Customer
	err := h.DB.
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Preload("Measurements", func(db *gorm.DB) *gorm.DB { return db.Order("date DESC") }).
		Preload("Measurements.Category").
		First(&c, id).Error
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"customer":      c,
		"pending_total": c.TotalPending(),
	})
}

// Delete: POST /customers/delete?id= – cascades through measurements,
// orders and reminders in one transaction.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromQuery(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	actorID, _ := auth.ActorIDFromContext(r.Context())
	if err := h.Ledger.DeleteCustomer(r.Context(), actorID, id); err != nil {
		writeCoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
