package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terra-clan/portfolio-intel/internal/models"
)

// Catalog handlers: pillars and products are static for the process lifetime

func (s *Server) handleListPillars(w http.ResponseWriter, r *http.Request) {
	pillars := s.dashboard.Catalog().Pillars()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"pillars": pillars,
		"total":   len(pillars),
	})
}

func (s *Server) handleListPillarProducts(w http.ResponseWriter, r *http.Request) {
	pillarID := models.PillarID(chi.URLParam(r, "pillarId"))

	c := s.dashboard.Catalog()
	if _, ok := c.Pillar(pillarID); !ok {
		respondError(w, http.StatusNotFound, "pillar_not_found", "pillar not found")
		return
	}

	products := c.ProductsByPillar(pillarID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    len(products),
	})
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products := s.dashboard.Catalog().Products()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"total":    len(products),
	})
}
