package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/portfolio-intel/internal/dashboard"
	"github.com/terra-clan/portfolio-intel/internal/models"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondLookupError maps dashboard lookup errors onto HTTP statuses
func respondLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrMarketNotFound):
		respondError(w, http.StatusNotFound, "market_not_found", err.Error())
	case errors.Is(err, dashboard.ErrPillarNotFound):
		respondError(w, http.StatusNotFound, "pillar_not_found", err.Error())
	case errors.Is(err, dashboard.ErrTooManyMarkets), errors.Is(err, dashboard.ErrNoMarkets):
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		slog.Error("dashboard query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "query failed")
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Dataset handlers

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, mustView(r).Dataset().Info)
}

func (s *Server) handleReloadDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.dashboard.Reload(r.Context())
	if err != nil {
		slog.Error("failed to reload dataset", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to reload dataset")
		return
	}

	w.Header().Set(DatasetVersionHeader, ds.Info.Version)
	respondJSON(w, http.StatusOK, ds.Info)
}

// Market handlers

func (s *Server) handleListMarkets(w http.ResponseWriter, r *http.Request) {
	filter := models.MarketFilter{
		Query:  r.URL.Query().Get("q"),
		Region: r.URL.Query().Get("region"),
	}

	markets := mustView(r).Markets(filter)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"markets": markets,
		"total":   len(markets),
	})
}

func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	market, err := mustView(r).Market(id)
	if err != nil {
		respondLookupError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, market)
}

func (s *Server) handleGetPillarDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pillarID := models.PillarID(chi.URLParam(r, "pillarId"))

	detail, err := mustView(r).PillarDetail(id, pillarID)
	if err != nil {
		respondLookupError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// Cross-market handlers

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	view := mustView(r)
	ids := splitIDs(r.URL.Query().Get("ids"))

	if len(ids) == 0 {
		var err error
		ids, err = view.DefaultSelection(r.URL.Query().Get("initial"))
		if err != nil {
			respondLookupError(w, err)
			return
		}
	}

	comparison, err := view.Compare(ids)
	if err != nil {
		respondLookupError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, comparison)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, mustView(r).Heatmap())
}

// splitIDs parses a comma-separated id list, skipping blanks
func splitIDs(value string) []string {
	var ids []string
	for _, id := range strings.Split(value, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
