package coverage

import (
	"github.com/terra-clan/portfolio-intel/internal/catalog"
	"github.com/terra-clan/portfolio-intel/internal/models"
)

// PerturbationRate is the probability that a baseline decision is flipped
const PerturbationRate = 0.10

// flipThreshold: a draw strictly above it flips the baseline
const flipThreshold = 1 - PerturbationRate

// Synthesizer builds market records from market metadata and the catalog
type Synthesizer struct {
	catalog *catalog.Catalog
}

// NewSynthesizer creates a synthesizer over an immutable catalog
func NewSynthesizer(c *catalog.Catalog) *Synthesizer {
	return &Synthesizer{catalog: c}
}

// Catalog returns the catalog the synthesizer works on
func (s *Synthesizer) Catalog() *catalog.Catalog {
	return s.catalog
}

// SynthesizeStatuses decides the activation of every catalog product.
//
// Precedence, later wins: completeness tier baseline, random flip, explicit
// override. src is drawn exactly once per product in catalog order, so a
// seeded source reproduces the same statuses. A nil src disables the flip.
func (s *Synthesizer) SynthesizeStatuses(completeness int, overrides map[string]bool, src Source) ProductStatuses {
	if src == nil {
		src = FixedSource(0)
	}

	products := s.catalog.Products()
	byID := make(map[string]models.MarketProductStatus, len(products))

	for _, p := range products {
		active := baselineActive(p, completeness)

		if src.Float64() > flipThreshold {
			active = !active
		}

		if forced, ok := overrides[p.ID]; ok {
			active = forced
		}

		byID[p.ID] = newStatus(p.ID, active)
	}

	return ProductStatuses{byID: byID}
}

// SynthesizeMarket builds a fully populated market record
func (s *Synthesizer) SynthesizeMarket(meta models.MarketMeta, src Source) *models.Market {
	statuses := s.SynthesizeStatuses(meta.Completeness, meta.Overrides, src)
	return s.Assemble(meta, statuses)
}

// Assemble builds a market record from already decided statuses
func (s *Synthesizer) Assemble(meta models.MarketMeta, statuses ProductStatuses) *models.Market {
	market := &models.Market{
		ID:           meta.ID,
		Country:      meta.Country,
		Region:       meta.Region,
		ActionNeeded: meta.ActionNeeded,
		Completeness: clampPercent(meta.Completeness),
		PillarStats:  ComputePillarStats(statuses, s.catalog),
		Products:     statuses.Map(),
	}
	if meta.ActionNeeded {
		market.ActionNote = models.ActionNoteExpert
	}
	return market
}

// baselineActive applies the completeness tier policy
func baselineActive(p models.Product, completeness int) bool {
	switch {
	case completeness > 80:
		return true
	case completeness > 50:
		return p.IsEssential()
	default:
		return p.IsEssential() && p.IsMustHave()
	}
}

func clampPercent(v int) int {
	return max(0, min(100, v))
}
