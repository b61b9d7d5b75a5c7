package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/tradedash/internal/api/handlers"
	"github.com/wonny/tradedash/pkg/logger"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
// Strategies is optional; its routes are skipped when nil.
type Handlers struct {
	Trades     *handlers.TradeHandler
	Analytics  *handlers.AnalyticsHandler
	Strategies *handlers.StrategyHandler
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, limiter *RateLimiter, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Trades
	api.HandleFunc("/trades", h.Trades.List).Methods("GET")

	// Analytics (계산 엔드포인트만 레이트 리밋)
	analytics := api.PathPrefix("/analytics").Subrouter()
	if limiter != nil {
		analytics.Use(limiter.Middleware(log))
	}
	analytics.HandleFunc("/metrics", h.Analytics.GetMetrics).Methods("GET")
	analytics.HandleFunc("/compute", h.Analytics.Compute).Methods("POST")

	// Strategy parameters
	if h.Strategies != nil {
		api.HandleFunc("/strategies", h.Strategies.List).Methods("GET")
		api.HandleFunc("/strategies/{id}", h.Strategies.Get).Methods("GET")
		api.HandleFunc("/strategies/{id}/params", h.Strategies.UpdateParams).Methods("PUT")
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "tradedash-api",
	})
}
