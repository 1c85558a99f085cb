package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/terra-clan/portfolio-intel/internal/dashboard"
)

// DatasetVersionHeader carries the version of the dataset a response was
// computed from
const DatasetVersionHeader = "X-Dataset-Version"

// datasetMiddleware pins the current dataset for the whole request, so a
// reload in the middle of a request cannot mix two datasets
func (s *Server) datasetMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		view, err := s.dashboard.View()
		if err != nil {
			if errors.Is(err, dashboard.ErrNotLoaded) {
				respondError(w, http.StatusServiceUnavailable, "not_ready", "market data is still loading")
				return
			}
			slog.Error("failed to pin dataset", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to load market data")
			return
		}

		w.Header().Set(DatasetVersionHeader, view.Dataset().Info.Version)

		ctx := ContextWithView(r.Context(), view)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// mustView returns the pinned view; handlers behind datasetMiddleware
// always have one
func mustView(r *http.Request) *dashboard.View {
	view := ViewFromContext(r.Context())
	if view == nil {
		panic("api: handler registered outside datasetMiddleware")
	}
	return view
}
