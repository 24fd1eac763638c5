package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/tailorledger/internal/auth"
	"github.com/diewo77/tailorledger/internal/httpx"
	"github.com/diewo77/tailorledger/internal/ledger"
	"github.com/diewo77/tailorledger/internal/models"
	"github.com/diewo77/tailorledger/internal/validation"
)

type CategoryHandler struct {
	DB     *gorm.DB
	Ledger *ledger.Engine
}

func NewCategoryHandler(db *gorm.DB, eng *ledger.Engine) *CategoryHandler {
	return &CategoryHandler{DB: db, Ledger: eng}
}

// List: GET /categories – optionally narrowed to one gender. Unisex
// categories are always included.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	dbq := h.DB.Model(&models.Category{})
	if g := r.URL.Query().Get("gender"); g == "male" || g == "female" {
		dbq = dbq.Where("gender = ? OR gender = ?", g, "unisex")
	}
	var cats []models.Category
	if err := dbq.Order("name ASC").Find(&cats).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_categories", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": cats})
}

type categoryCreateReq struct {
	Name   string   `json:"name"`
	Gender string   `json:"gender"`
	Fields []string `json:"fields"`
}

// Create: POST /categories – custom garment type with its measurement
// field list.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryCreateReq
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
		req.Gender = r.Form.Get("gender")
		for _, f := range strings.Split(r.Form.Get("fields"), ",") {
			if f = strings.TrimSpace(f); f != "" {
				req.Fields = append(req.Fields, f)
			}
		}
	}

	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	if len(req.Fields) == 0 {
		v["fields"] = "required"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if req.Gender != "male" && req.Gender != "female" {
		req.Gender = "unisex"
	}

	cat := models.Category{
		Name:     strings.TrimSpace(req.Name),
		Gender:   req.Gender,
		Fields:   req.Fields,
		IsCustom: true,
	}
	if err := h.DB.Create(&cat).Error; err != nil {
		httpx.JSONError(w, http.StatusConflict, "category_exists", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"category_id": cat.ID, "name": cat.Name})
}

// Delete: POST /categories/delete?id= – refused while any measurement
// still references the category.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idFromQuery(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	actorID, _ := auth.ActorIDFromContext(r.Context())
	if err := h.Ledger.DeleteCategory(r.Context(), actorID, id); err != nil {
		writeCoreError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}
