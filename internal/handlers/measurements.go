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

type MeasurementHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Engine
}

func NewMeasurementHandler(db *gorm.DB, eng *ledger.Engine) *MeasurementHandler {
	return &MeasurementHandler{DB: db, Ledger: eng}
}

type measurementCreateReq struct {
	CustomerID   uint                      `json:"customer_id"`
	CategoryID   uint                      `json:"category_id"`
	Values       []models.MeasurementValue `json:"values"`
	Remarks      string                    `json:"remarks"`
	StartDate    string                    `json:"start_date"`
	DeliveryDate string                    `json:"delivery_date"`
	Status       string                    `json:"status"`
	Notes        string                    `json:"notes"`
	TotalAmt     string                    `json:"total_amt"`
	Advance      string                    `json:"advance"`
	PaymentMode  string                    `json:"payment_mode"`
}

// Create: POST /measurements – records the measurement sheet and its order
// in one atomic operation. Either both come back or neither was persisted.
func (h *MeasurementHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, _ := auth.ActorIDFromContext(r.Context())
	var req measurementCreateReq
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
		if n, err := strconv.Atoi(r.Form.Get("customer_id")); err == nil {
			req.CustomerID = uint(n)
		}
		if n, err := strconv.Atoi(r.Form.Get("category_id")); err == nil {
			req.CategoryID = uint(n)
		}
		if raw := r.Form.Get("values"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Values); err != nil {
				httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"values": "invalid_json"})
				return
			}
		}
		req.Remarks = r.Form.Get("remarks")
		req.StartDate = r.Form.Get("start_date")
		req.DeliveryDate = r.Form.Get("delivery_date")
		req.Status = r.Form.Get("status")
		req.Notes = r.Form.Get("notes")
		req.TotalAmt = r.Form.Get("total_amt")
		req.Advance = r.Form.Get("advance")
		req.PaymentMode = r.Form.Get("payment_mode")
	}

	v := validation.Violations{}
	in := ledger.CreateInput{
		CustomerID:  req.CustomerID,
		CategoryID:  req.CategoryID,
		Values:      req.Values,
		Remarks:     req.Remarks,
		WorkStatus:  req.Status,
		Notes:       req.Notes,
		Total:       validation.Amount("total_amt", req.TotalAmt, v),
		Advance:     validation.Amount("advance", req.Advance, v),
		PaymentMode: req.PaymentMode,
	}
	in.StartDate = validation.Date("start_date", req.StartDate, v)
	in.DeliveryDate = validation.Date("delivery_date", req.DeliveryDate, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	meas, order, err := h.Ledger.CreateOrderWithMeasurement(r.Context(), actorID, in)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"measurement_id": meas.ID,
		"order_id":       order.ID,
		"items":          order.Items,
		"balance":        order.Balance,
		"payment_status": order.PaymentStatus,
	})
}

// List: GET /measurements – month window on the measurement date.
func (h *MeasurementHandler) List(w http.ResponseWriter, r *http.Request) {
	m := monthFromQuery(r, time.Now())
	dbq := h.DB.Model(&models.Measurement{}).
		Where("date >= ? AND date <= ?", m.Start, m.End)

	var total int64
	dbq.Count(&total)
	var items []models.Measurement
	page := pageFromQuery(r)
	if err := dbq.Preload("Customer").Preload("Category").
		Order("date DESC, id DESC").
		Limit(window.PerPage).Offset(window.Offset(page)).Find(&items).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_measurements", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":     items,
		"total":     total,
		"page":      page,
		"per_page":  window.PerPage,
		"month_nav": navFor(m),
	})
}
