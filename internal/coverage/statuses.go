package coverage

import (
	"errors"
	"fmt"

	"github.com/terra-clan/portfolio-intel/internal/catalog"
	"github.com/terra-clan/portfolio-intel/internal/models"
)

var (
	ErrMissingStatus  = errors.New("product has no status")
	ErrUnknownProduct = errors.New("status for product outside the catalog")
)

// ProductStatuses maps every catalog product to exactly one status.
// The zero value is empty and only valid against an empty catalog.
type ProductStatuses struct {
	byID map[string]models.MarketProductStatus
}

// NewProductStatuses validates that statuses covers the catalog exactly
func NewProductStatuses(c *catalog.Catalog, statuses map[string]models.MarketProductStatus) (ProductStatuses, error) {
	for _, p := range c.Products() {
		if _, ok := statuses[p.ID]; !ok {
			return ProductStatuses{}, fmt.Errorf("%w: %s", ErrMissingStatus, p.ID)
		}
	}
	if len(statuses) != c.Len() {
		for id := range statuses {
			if !c.HasProduct(id) {
				return ProductStatuses{}, fmt.Errorf("%w: %s", ErrUnknownProduct, id)
			}
		}
	}

	byID := make(map[string]models.MarketProductStatus, len(statuses))
	for id, st := range statuses {
		st.ProductID = id
		byID[id] = st
	}
	return ProductStatuses{byID: byID}, nil
}

// FromActivation builds statuses from plain activation flags, attaching the
// standard availability notes
func FromActivation(c *catalog.Catalog, active map[string]bool) (ProductStatuses, error) {
	statuses := make(map[string]models.MarketProductStatus, len(active))
	for id, isActive := range active {
		statuses[id] = newStatus(id, isActive)
	}
	return NewProductStatuses(c, statuses)
}

// IsActive reports the activation of a product
func (s ProductStatuses) IsActive(productID string) bool {
	return s.byID[productID].IsActive
}

// Get returns the status of a product
func (s ProductStatuses) Get(productID string) (models.MarketProductStatus, bool) {
	st, ok := s.byID[productID]
	return st, ok
}

// Map returns a copy of the underlying map
func (s ProductStatuses) Map() map[string]models.MarketProductStatus {
	result := make(map[string]models.MarketProductStatus, len(s.byID))
	for id, st := range s.byID {
		result[id] = st
	}
	return result
}

func newStatus(productID string, active bool) models.MarketProductStatus {
	note := models.NoteApprovalPending
	if active {
		note = models.NoteAvailable
	}
	return models.MarketProductStatus{
		ProductID: productID,
		IsActive:  active,
		Notes:     note,
	}
}
