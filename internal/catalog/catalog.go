package catalog

import (
	"errors"
	"fmt"

	"github.com/terra-clan/portfolio-intel/internal/models"
)

var (
	ErrPillarNotFound  = errors.New("pillar not found")
	ErrProductNotFound = errors.New("product not found")
	ErrMissingPillar   = errors.New("catalog is missing a pillar")
)

// Catalog is the immutable set of pillars and products.
// Safe for concurrent use: nothing is mutated after New returns.
type Catalog struct {
	pillars  []models.Pillar
	products []models.Product

	pillarIndex  map[models.PillarID]int
	productIndex map[string]int
	byPillar     map[models.PillarID][]int
}

// New validates and indexes the given pillars and products.
// Declaration order of both slices is preserved by every accessor.
// Pillars must be known ids but may be a subset; see Parse for the
// complete-catalog check.
func New(pillars []models.Pillar, products []models.Product) (*Catalog, error) {
	c := &Catalog{
		pillars:      make([]models.Pillar, len(pillars)),
		products:     make([]models.Product, len(products)),
		pillarIndex:  make(map[models.PillarID]int, len(pillars)),
		productIndex: make(map[string]int, len(products)),
		byPillar:     make(map[models.PillarID][]int, len(pillars)),
	}
	copy(c.pillars, pillars)
	copy(c.products, products)

	for i, p := range c.pillars {
		if p.ID == "" {
			return nil, fmt.Errorf("pillar #%d: id is required", i)
		}
		if !p.ID.IsValid() {
			return nil, fmt.Errorf("pillar #%d: unknown pillar id %q", i, p.ID)
		}
		if _, dup := c.pillarIndex[p.ID]; dup {
			return nil, fmt.Errorf("duplicate pillar id %q", p.ID)
		}
		c.pillarIndex[p.ID] = i
	}

	for i, p := range c.products {
		if p.ID == "" {
			return nil, fmt.Errorf("product #%d: id is required", i)
		}
		if _, dup := c.productIndex[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		if !p.Range.IsValid() {
			return nil, fmt.Errorf("product %q: invalid range %q", p.ID, p.Range)
		}
		if !p.Importance.IsValid() {
			return nil, fmt.Errorf("product %q: invalid importance %q", p.ID, p.Importance)
		}
		if _, ok := c.pillarIndex[p.PillarID]; !ok {
			return nil, fmt.Errorf("product %q: %w: %q", p.ID, ErrPillarNotFound, p.PillarID)
		}
		c.productIndex[p.ID] = i
		c.byPillar[p.PillarID] = append(c.byPillar[p.PillarID], i)
	}

	return c, nil
}

// Pillars returns all pillars in declaration order
func (c *Catalog) Pillars() []models.Pillar {
	result := make([]models.Pillar, len(c.pillars))
	copy(result, c.pillars)
	return result
}

// Products returns all products in declaration order
func (c *Catalog) Products() []models.Product {
	result := make([]models.Product, len(c.products))
	copy(result, c.products)
	return result
}

// Pillar returns a pillar by ID
func (c *Catalog) Pillar(id models.PillarID) (models.Pillar, bool) {
	i, ok := c.pillarIndex[id]
	if !ok {
		return models.Pillar{}, false
	}
	return c.pillars[i], true
}

// Product returns a product by ID
func (c *Catalog) Product(id string) (models.Product, bool) {
	i, ok := c.productIndex[id]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// HasProduct reports whether id is a catalog product
func (c *Catalog) HasProduct(id string) bool {
	_, ok := c.productIndex[id]
	return ok
}

// ProductsByPillar returns the products of a pillar in catalog order.
// An unknown pillar or a pillar without products yields an empty slice.
func (c *Catalog) ProductsByPillar(id models.PillarID) []models.Product {
	idx := c.byPillar[id]
	result := make([]models.Product, 0, len(idx))
	for _, i := range idx {
		result = append(result, c.products[i])
	}
	return result
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}
