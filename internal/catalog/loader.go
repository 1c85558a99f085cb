package catalog

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/portfolio-intel/internal/models"
)

//go:embed defaults/*.yaml
var defaults embed.FS

// Default returns the built-in catalog of 7 pillars and 17 products
func Default() (*Catalog, error) {
	data, err := defaults.ReadFile("defaults/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded catalog: %w", err)
	}
	return Parse(data)
}

// LoadFromFile loads a catalog from a YAML file.
// An empty path falls back to the built-in catalog.
func LoadFromFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	slog.Info("loading catalog from file", "file", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML bytes. Every known pillar must be
// declared.
func Parse(data []byte) (*Catalog, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(cf.Pillars) == 0 {
		return nil, errors.New("catalog declares no pillars")
	}

	pillars := make([]models.Pillar, 0, len(cf.Pillars))
	for _, p := range cf.Pillars {
		pillars = append(pillars, models.Pillar{
			ID:          models.PillarID(p.ID),
			Label:       p.Label,
			Description: p.Description,
		})
	}

	products := make([]models.Product, 0, len(cf.Products))
	for _, p := range cf.Products {
		products = append(products, models.Product{
			ID:         p.ID,
			Name:       p.Name,
			Range:      models.ProductRange(p.Range),
			Importance: models.ProductImportance(p.Importance),
			PillarID:   models.PillarID(p.Pillar),
		})
	}

	c, err := New(pillars, products)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	// Consumers index pillar stats by every known pillar id
	for _, id := range models.AllPillars {
		if _, ok := c.Pillar(id); !ok {
			return nil, fmt.Errorf("invalid catalog: %w: %s", ErrMissingPillar, id)
		}
	}

	slog.Debug("catalog loaded", "pillars", len(pillars), "products", len(products))
	return c, nil
}

// DefaultMarkets returns the built-in market metadata
func DefaultMarkets(c *Catalog) ([]models.MarketMeta, error) {
	data, err := defaults.ReadFile("defaults/markets.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded markets: %w", err)
	}
	return ParseMarkets(data, c)
}

// LoadMarketsFromFile loads market metadata from a YAML file.
// An empty path falls back to the built-in markets.
func LoadMarketsFromFile(path string, c *Catalog) ([]models.MarketMeta, error) {
	if path == "" {
		return DefaultMarkets(c)
	}

	slog.Info("loading markets from file", "file", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseMarkets(data, c)
}

// ParseMarkets decodes market metadata and validates it against the catalog.
// Overrides naming products outside the catalog are dropped with a warning.
func ParseMarkets(data []byte, c *Catalog) ([]models.MarketMeta, error) {
	var mf marketsFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	seen := make(map[string]bool, len(mf.Markets))
	markets := make([]models.MarketMeta, 0, len(mf.Markets))

	for i, m := range mf.Markets {
		if m.ID == "" {
			return nil, fmt.Errorf("market #%d: id is required", i)
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("duplicate market id %q", m.ID)
		}
		seen[m.ID] = true

		if m.Country == "" {
			return nil, fmt.Errorf("market %q: country is required", m.ID)
		}
		if m.Completeness < 0 || m.Completeness > 100 {
			return nil, fmt.Errorf("market %q: completeness %d out of range 0-100", m.ID, m.Completeness)
		}

		overrides := make(map[string]bool, len(m.Overrides))
		for productID, active := range m.Overrides {
			if !c.HasProduct(productID) {
				slog.Warn("ignoring override for unknown product", "market", m.ID, "product", productID)
				continue
			}
			overrides[productID] = active
		}

		markets = append(markets, models.MarketMeta{
			ID:           m.ID,
			Country:      m.Country,
			Region:       m.Region,
			Completeness: m.Completeness,
			ActionNeeded: m.ActionNeeded,
			Overrides:    overrides,
		})
	}

	return markets, nil
}

// --- YAML file structs ---

// catalogFile represents the YAML structure of a catalog file
type catalogFile struct {
	Pillars  []pillarEntry  `yaml:"pillars"`
	Products []productEntry `yaml:"products"`
}

type pillarEntry struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

type productEntry struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	Range      string `yaml:"range"`
	Importance string `yaml:"importance"`
	Pillar     string `yaml:"pillar"`
}

// marketsFile represents the YAML structure of a markets file
type marketsFile struct {
	Markets []models.MarketMeta `yaml:"markets"`
}
