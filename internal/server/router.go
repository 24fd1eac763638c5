package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/diewo77/tailorledger/internal/audit"
	"github.com/diewo77/tailorledger/internal/auth"
	"github.com/diewo77/tailorledger/internal/billtoken"
	"github.com/diewo77/tailorledger/internal/handlers"
	"github.com/diewo77/tailorledger/internal/httpx"
	"github.com/diewo77/tailorledger/internal/i18n"
	"github.com/diewo77/tailorledger/internal/ledger"
	"github.com/diewo77/tailorledger/internal/reporting"
)

// New constructs the root http.Handler with all routes and middlewares
// applied. The bill view route is the only public data route; everything
// else requires an authenticated actor.
func New(db *gorm.DB, shareSecret string, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	recorder := audit.NewRecorder(db)
	eng := ledger.New(db, recorder)
	reports := reporting.New(db)
	tokens := billtoken.New(shareSecret)

	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	protect := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireActor(h))
	}

	bh := handlers.NewBillHandler(db, eng, tokens)
	mux.Handle("GET /bills/view", auth.Middleware(http.HandlerFunc(bh.PublicView)))
	mux.Handle("GET /bills", protect(bh.List))
	mux.Handle("POST /bills/update", protect(bh.Update))
	mux.Handle("GET /bills/share", protect(bh.Share))

	oh := handlers.NewOrderHandler(db, eng)
	mux.Handle("GET /orders", protect(oh.List))
	mux.Handle("POST /orders/update", protect(oh.UpdateDetails))
	mux.Handle("POST /orders/delete", protect(oh.Delete))

	mh := handlers.NewMeasurementHandler(db, eng)
	mux.Handle("GET /measurements", protect(mh.List))
	mux.Handle("POST /measurements", protect(mh.Create))

	ch := handlers.NewCustomerHandler(db, eng)
	mux.Handle("GET /customers", protect(ch.List))
	mux.Handle("POST /customers", protect(ch.Create))
	mux.Handle("GET /customers/detail", protect(ch.Detail))
	mux.Handle("POST /customers/delete", protect(ch.Delete))

	cat := handlers.NewCategoryHandler(db, eng)
	mux.Handle("GET /categories", protect(cat.List))
	mux.Handle("POST /categories", protect(cat.Create))
	mux.Handle("POST /categories/delete", protect(cat.Delete))

	dh := handlers.NewDashboardHandler(reports, i18n.NewCache(nil))
	mux.Handle("GET /dashboard", protect(dh.Index))

	rh := handlers.NewReminderHandler(reports)
	mux.Handle("GET /reminders", protect(rh.Index))

	hh := handlers.NewHistoryHandler(recorder)
	mux.Handle("GET /history", protect(hh.Index))

	return withRecover(withLogging(mux, log), log)
}

func withLogging(next http.Handler, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func withRecover(next http.Handler, log zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
