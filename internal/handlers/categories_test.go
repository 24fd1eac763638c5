package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/tailorledger/internal/auth"
	"github.com/diewo77/tailorledger/internal/models"
)

func TestCategoryCreateAndGenderFilter(t *testing.T) {
	db := setupHandlerTestDB(t)
	h := NewCategoryHandler(db, newHandlerEngine(db))

	post := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(sessionCookie(1))
		resp := httptest.NewRecorder()
		auth.Middleware(http.HandlerFunc(h.Create)).ServeHTTP(resp, req)
		return resp
	}

	if resp := post(`{"name":"Sherwani","gender":"male","fields":["Length","Chest"]}`); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if resp := post(`{"name":"Lehenga","gender":"female","fields":["Waist"]}`); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if resp := post(`{"name":"Robe","fields":["Length"]}`); resp.Code != http.StatusCreated {
		t.Fatalf("unisex default: expected 201 got %d", resp.Code)
	}
	if resp := post(`{"name":"","fields":[]}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/categories?gender=male", nil)
	req.AddCookie(sessionCookie(1))
	resp := httptest.NewRecorder()
	auth.Middleware(http.HandlerFunc(h.List)).ServeHTTP(resp, req)
	var body struct {
		Items []models.Category `json:"items"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// male + unisex, female excluded
	if len(body.Items) != 2 {
		t.Fatalf("male listing = %d categories, want 2: %+v", len(body.Items), body.Items)
	}
	for _, cat := range body.Items {
		if cat.Gender == "female" {
			t.Fatalf("female category leaked into male listing")
		}
	}
}

func TestCategoryDeleteGuard(t *testing.T) {
	db := setupHandlerTestDB(t)
	h := NewCategoryHandler(db, newHandlerEngine(db))
	c := seedHandlerCustomer(t, db, "Asha", "9000000001")
	cat := models.Category{Name: "Kurta", Gender: "unisex", Fields: []string{"Length"}}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	meas := models.Measurement{CustomerID: c.ID, CategoryID: cat.ID, Values: []models.MeasurementValue{{Field: "Length", Value: "40"}}, IsActive: true}
	if err := db.Create(&meas).Error; err != nil {
		t.Fatalf("seed measurement: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/categories/delete?id=%d", cat.ID), nil)
	req.AddCookie(sessionCookie(1))
	resp := httptest.NewRecorder()
	auth.Middleware(http.HandlerFunc(h.Delete)).ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", resp.Code, resp.Body.String())
	}
	var count int64
	db.Model(&models.Category{}).Count(&count)
	if count != 1 {
		t.Fatalf("category deleted despite guard")
	}
}
