package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/diewo77/tailorledger/internal/audit"
	"github.com/diewo77/tailorledger/internal/auth"
	"github.com/diewo77/tailorledger/internal/models"
)

func TestHistoryListsMutations(t *testing.T) {
	db := setupHandlerTestDB(t)
	eng := newHandlerEngine(db)
	oh := NewOrderHandler(db, eng)
	hh := NewHistoryHandler(audit.NewRecorder(db))
	c := seedHandlerCustomer(t, db, "Asha", "9000000001")
	order := seedHandlerOrder(t, db, c.ID, 500, 500)

	// one edit through the order handler produces one history row
	form := url.Values{}
	form.Set("order_id", strconv.Itoa(int(order.ID)))
	form.Set("total_amt", "500")
	form.Set("advance", "500")
	req := httptest.NewRequest(http.MethodPost, "/orders/update", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(sessionCookie(3))
	resp := httptest.NewRecorder()
	auth.Middleware(http.HandlerFunc(oh.UpdateDetails)).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/history", nil)
	req.AddCookie(sessionCookie(3))
	resp = httptest.NewRecorder()
	auth.Middleware(http.HandlerFunc(hh.Index)).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("history: expected 200 got %d", resp.Code)
	}
	var body struct {
		Items []models.AuditEntry `json:"items"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(body.Items))
	}
	entry := body.Items[0]
	if entry.ActorID != 3 || entry.Action != models.ActionEdit || entry.EntityType != "Order" {
		t.Fatalf("entry = %+v", entry)
	}
	if !strings.Contains(entry.Message, "Paid=500.00/500.00") {
		t.Fatalf("message = %q", entry.Message)
	}
}
