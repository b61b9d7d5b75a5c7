package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/tradedash/internal/strategyconfig"
	"github.com/wonny/tradedash/pkg/logger"
)

// StrategyHandler exposes the strategy parameter set
type StrategyHandler struct {
	store  *strategyconfig.Store
	logger *logger.Logger
}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler(store *strategyconfig.Store, log *logger.Logger) *StrategyHandler {
	return &StrategyHandler{
		store:  store,
		logger: log,
	}
}

// List returns every strategy with the config hash
// GET /api/strategies
func (h *StrategyHandler) List(w http.ResponseWriter, r *http.Request) {
	cfg, hash, err := h.store.Snapshot()
	if err != nil {
		h.logger.WithError(err).Error("Failed to snapshot strategy config")
		respondError(w, http.StatusInternalServerError, "Failed to read strategy config")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"version":    cfg.Version,
		"hash":       hash,
		"strategies": cfg.Strategies,
	})
}

// Get returns one strategy
// GET /api/strategies/{id}
func (h *StrategyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	st, ok := h.store.Strategy(id)
	if !ok {
		respondError(w, http.StatusNotFound, "Strategy not found")
		return
	}

	respondJSON(w, http.StatusOK, st)
}

// UpdateParams edits parameter values for one strategy
// PUT /api/strategies/{id}/params  body: {"name": value, ...}
func (h *StrategyHandler) UpdateParams(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, ok := h.store.Strategy(id); !ok {
		respondError(w, http.StatusNotFound, "Strategy not found")
		return
	}

	var values map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil || len(values) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	st, err := h.store.UpdateParams(id, values)
	if err != nil {
		var ve strategyconfig.ValidationError
		if errors.As(err, &ve) {
			respondError(w, http.StatusBadRequest, ve.Error())
			return
		}
		h.logger.WithError(err).WithField("strategy", id).Error("Failed to update strategy params")
		respondError(w, http.StatusInternalServerError, "Failed to update strategy")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"strategy": id,
		"params":   values,
	}).Info("Strategy params updated")

	respondJSON(w, http.StatusOK, st)
}
