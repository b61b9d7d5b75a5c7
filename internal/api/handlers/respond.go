package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// parseDate accepts YYYY-MM-DD or RFC3339; empty returns the zero time
func parseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD or RFC3339)", value)
	}
	return t, nil
}

// parseLocation resolves an IANA zone name, falling back to def when empty
func parseLocation(name string, def *time.Location) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return def, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q", name)
	}
	return loc, nil
}

// validBalance rejects non-positive, NaN and infinite balances
func validBalance(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// parseBalance parses a positive starting balance, falling back to def when empty
func parseBalance(value string, def float64) (float64, error) {
	if strings.TrimSpace(value) == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || !validBalance(v) {
		return 0, fmt.Errorf("starting_balance must be a positive number")
	}
	return v, nil
}
