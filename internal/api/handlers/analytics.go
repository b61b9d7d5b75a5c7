package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wonny/tradedash/internal/analytics"
	"github.com/wonny/tradedash/internal/audit"
	"github.com/wonny/tradedash/internal/strategyconfig"
	"github.com/wonny/tradedash/pkg/logger"
)

// maxComputeBody caps POST /api/analytics/compute payloads
const maxComputeBody = 8 << 20

// AnalyticsHandler handles performance analytics endpoints
// ⭐ SSOT: 성과 분석 API 핸들러는 이 구조체에서만
type AnalyticsHandler struct {
	analyzer        *audit.Analyzer
	strategies      *strategyconfig.Store // optional
	startingBalance float64
	location        *time.Location
	logger          *logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
// strategies may be nil when no strategy config is loaded.
func NewAnalyticsHandler(
	analyzer *audit.Analyzer,
	strategies *strategyconfig.Store,
	startingBalance float64,
	loc *time.Location,
	log *logger.Logger,
) *AnalyticsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsHandler{
		analyzer:        analyzer,
		strategies:      strategies,
		startingBalance: startingBalance,
		location:        loc,
		logger:          log,
	}
}

// GetMetrics computes metrics over stored trades
// GET /api/analytics/metrics?account=&starting_balance=&tz=&strategy=&platform=&from=&to=
func (h *AnalyticsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	loc, err := parseLocation(q.Get("tz"), h.location)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter, err := filterFromQuery(r, loc)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// 전략별 조회는 전략 할당 자본을 기본 시작 잔고로 사용
	defaultBalance := h.startingBalance
	if filter.Strategy != "" && h.strategies != nil {
		if st, ok := h.strategies.Strategy(filter.Strategy); ok && st.Allocation > 0 {
			defaultBalance = st.Allocation
		}
	}

	balance, err := parseBalance(q.Get("starting_balance"), defaultBalance)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), audit.Request{
		Filter:          filter,
		StartingBalance: balance,
		Location:        loc,
	})
	if err != nil {
		h.logger.WithError(err).WithField("account", filter.AccountID).Error("Failed to analyze trades")
		respondError(w, http.StatusInternalServerError, "Failed to compute metrics")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// ComputeRequest carries caller-supplied trades
type ComputeRequest struct {
	StartingBalance float64                 `json:"starting_balance"`
	Timezone        string                  `json:"timezone"`
	Trades          []analytics.TradeRecord `json:"trades"`
}

// Compute runs the engine over trades in the request body without touching the store
// POST /api/analytics/compute
func (h *AnalyticsHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var req ComputeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxComputeBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	loc, err := parseLocation(req.Timezone, h.location)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance := req.StartingBalance
	if balance == 0 {
		balance = h.startingBalance
	}
	if !validBalance(balance) {
		respondError(w, http.StatusBadRequest, "starting_balance must be a positive number")
		return
	}

	report, err := h.analyzer.AnalyzeRecords(req.Trades, analytics.Options{
		StartingBalance: balance,
		Location:        loc,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute metrics")
		respondError(w, http.StatusInternalServerError, "Failed to compute metrics")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
