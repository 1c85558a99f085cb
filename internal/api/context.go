package api

import (
	"context"

	"github.com/terra-clan/portfolio-intel/internal/dashboard"
)

type contextKey string

const viewContextKey contextKey = "dashboard_view"

// ViewFromContext extracts the dataset view pinned for this request
func ViewFromContext(ctx context.Context) *dashboard.View {
	view, ok := ctx.Value(viewContextKey).(*dashboard.View)
	if !ok {
		return nil
	}
	return view
}

// ContextWithView pins a dataset view to the request context
func ContextWithView(ctx context.Context, view *dashboard.View) context.Context {
	return context.WithValue(ctx, viewContextKey, view)
}
