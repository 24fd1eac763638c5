package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/tailorledger/internal/auth"
	"github.com/diewo77/tailorledger/internal/billtoken"
	"github.com/diewo77/tailorledger/internal/models"
)

func setupRouterTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Customer{}, &models.Category{}, &models.Measurement{},
		&models.Order{}, &models.AuditEntry{}, &models.Reminder{}, &models.ShopProfile{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestRouter(t *testing.T, db *gorm.DB) http.Handler {
	return New(db, "router-test-secret", zerolog.Nop())
}

func TestHealthEndpoints(t *testing.T) {
	db := setupRouterTestDB(t)
	h := newTestRouter(t, db)

	for _, path := range []string{"/health", "/healthz"} {
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Errorf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	db := setupRouterTestDB(t)
	h := newTestRouter(t, db)

	protected := []struct{ method, path string }{
		{http.MethodGet, "/orders"},
		{http.MethodPost, "/orders/update"},
		{http.MethodGet, "/bills"},
		{http.MethodGet, "/bills/share?id=1"},
		{http.MethodGet, "/customers"},
		{http.MethodGet, "/measurements"},
		{http.MethodGet, "/categories"},
		{http.MethodGet, "/dashboard"},
		{http.MethodGet, "/reminders"},
		{http.MethodGet, "/history"},
	}
	for _, route := range protected {
		resp := httptest.NewRecorder()
		h.ServeHTTP(resp, httptest.NewRequest(route.method, route.path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 got %d", route.method, route.path, resp.Code)
		}
	}
}

func TestAuthenticatedDashboardFlow(t *testing.T) {
	db := setupRouterTestDB(t)
	h := newTestRouter(t, db)

	c := models.Customer{Name: "Asha", Mobile: "9000000001", LastVisit: time.Now()}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	o := models.Order{CustomerID: c.ID, Items: []models.LineItem{{Name: "Shirt", Qty: 1}}, WorkStatus: models.WorkWorking, PaymentStatus: models.PaymentPending, TotalAmt: 500, Balance: 500}
	if err := db.Create(&o).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	sessW := httptest.NewRecorder()
	auth.CreateSession(sessW, 1)
	cookie := sessW.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, section := range []string{"stats", "top_customers", "status_histogram", "urgent", "upcoming", "todays_orders", "monthly_trend"} {
		if _, ok := body[section]; !ok {
			t.Errorf("dashboard payload missing %q", section)
		}
	}
}

func TestPublicBillViewBypassesAuth(t *testing.T) {
	db := setupRouterTestDB(t)
	h := newTestRouter(t, db)

	c := models.Customer{Name: "Ravi", Mobile: "9000000002", LastVisit: time.Now()}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	o := models.Order{CustomerID: c.ID, Items: []models.LineItem{{Name: "Kurta", Qty: 1}}, WorkStatus: models.WorkWorking, PaymentStatus: models.PaymentPaid, TotalAmt: 300}
	if err := db.Create(&o).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}

	token := billtoken.New("router-test-secret").Issue(o.ID)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/bills/view?id=%d&token=%s", o.ID, token), nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/bills/view?id=%d&token=bogus", o.ID), nil))
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestMethodMismatchIs405(t *testing.T) {
	db := setupRouterTestDB(t)
	h := newTestRouter(t, db)

	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/orders", nil))
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", resp.Code)
	}
}
