package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/tradedash/internal/audit"
	"github.com/wonny/tradedash/internal/trades"
	"github.com/wonny/tradedash/pkg/logger"
)

// TradeHandler serves raw trade listings
type TradeHandler struct {
	source audit.TradeSource
	logger *logger.Logger
}

// NewTradeHandler creates a new trade handler
func NewTradeHandler(source audit.TradeSource, log *logger.Logger) *TradeHandler {
	return &TradeHandler{
		source: source,
		logger: log,
	}
}

// List returns trades for one account
// GET /api/trades?account=&from=&to=&strategy=&platform=
func (h *TradeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r, time.UTC)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	records, err := h.source.List(r.Context(), filter)
	if err != nil {
		h.logger.WithError(err).WithField("account", filter.AccountID).Error("Failed to list trades")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve trades")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"account": filter.AccountID,
		"count":   len(records),
		"trades":  records,
	})
}

// filterFromQuery reads the shared account/date/label query params
func filterFromQuery(r *http.Request, loc *time.Location) (trades.Filter, error) {
	q := r.URL.Query()

	from, err := parseDate(q.Get("from"), loc)
	if err != nil {
		return trades.Filter{}, err
	}
	to, err := parseDate(q.Get("to"), loc)
	if err != nil {
		return trades.Filter{}, err
	}

	filter := trades.Filter{
		AccountID: q.Get("account"),
		From:      from,
		To:        to,
		Strategy:  q.Get("strategy"),
		Platform:  q.Get("platform"),
	}
	if err := filter.Validate(); err != nil {
		return trades.Filter{}, err
	}
	return filter, nil
}
