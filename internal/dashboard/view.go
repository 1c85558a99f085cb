package dashboard

import (
	"fmt"
	"strings"

	"github.com/terra-clan/portfolio-intel/internal/catalog"
	"github.com/terra-clan/portfolio-intel/internal/models"
)

// View answers dashboard queries against a single dataset
type View struct {
	dataset *Dataset
	catalog *catalog.Catalog
}

// NewView pins a dataset and catalog together
func NewView(ds *Dataset, c *catalog.Catalog) *View {
	return &View{dataset: ds, catalog: c}
}

// Dataset returns the pinned dataset
func (v *View) Dataset() *Dataset {
	return v.dataset
}

// Markets returns the summaries of the markets matching the filter,
// in dataset order
func (v *View) Markets(filter models.MarketFilter) []models.MarketSummary {
	query := strings.ToLower(strings.TrimSpace(filter.Query))
	region := strings.TrimSpace(filter.Region)

	result := make([]models.MarketSummary, 0, len(v.dataset.markets))
	for _, m := range v.dataset.markets {
		if query != "" && !strings.Contains(strings.ToLower(m.Country), query) {
			continue
		}
		if region != "" && !strings.EqualFold(m.Region, region) {
			continue
		}
		result = append(result, m.Summary())
	}
	return result
}

// Market returns a market by ID
func (v *View) Market(id string) (*models.Market, error) {
	m, ok := v.dataset.Market(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMarketNotFound, id)
	}
	return m, nil
}

// PillarDetail drills into one pillar of one market
func (v *View) PillarDetail(marketID string, pillarID models.PillarID) (*models.PillarDetail, error) {
	m, err := v.Market(marketID)
	if err != nil {
		return nil, err
	}

	pillar, ok := v.catalog.Pillar(pillarID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPillarNotFound, pillarID)
	}

	detail := &models.PillarDetail{
		Market:    m.Summary(),
		Pillar:    pillar,
		Stats:     m.PillarStats[pillarID],
		Essential: models.RangeBreakdown{Range: models.RangeEssential, Products: []models.ProductWithStatus{}},
		Expert:    models.RangeBreakdown{Range: models.RangeExpert, Products: []models.ProductWithStatus{}},
	}

	for _, p := range v.catalog.ProductsByPillar(pillarID) {
		status := m.Products[p.ID]
		item := models.ProductWithStatus{
			Product:  p,
			IsActive: status.IsActive,
			Notes:    status.Notes,
		}

		breakdown := &detail.Essential
		if p.IsExpert() {
			breakdown = &detail.Expert
		}
		breakdown.Products = append(breakdown.Products, item)
		breakdown.Total++
		if item.IsActive {
			breakdown.Active++
		}
	}

	return detail, nil
}

// DefaultSelection picks the markets a comparison opens with: the initial
// market plus the first other one, or the first two markets when no initial
// market is given
func (v *View) DefaultSelection(initialID string) ([]string, error) {
	markets := v.dataset.markets

	if initialID == "" {
		ids := make([]string, 0, 2)
		for _, m := range markets[:min(2, len(markets))] {
			ids = append(ids, m.ID)
		}
		return ids, nil
	}

	if _, ok := v.dataset.Market(initialID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrMarketNotFound, initialID)
	}

	ids := []string{initialID}
	for _, m := range markets {
		if m.ID != initialID {
			ids = append(ids, m.ID)
			break
		}
	}
	return ids, nil
}

// Compare lays out up to models.MaxCompareMarkets markets side by side.
// Duplicate IDs count once; columns follow dataset order.
func (v *View) Compare(ids []string) (*models.Comparison, error) {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := v.dataset.Market(id); !ok {
			return nil, fmt.Errorf("%w: %s", ErrMarketNotFound, id)
		}
		selected[id] = true
	}

	if len(selected) == 0 {
		return nil, ErrNoMarkets
	}
	if len(selected) > models.MaxCompareMarkets {
		return nil, fmt.Errorf("%w: %d selected, at most %d allowed", ErrTooManyMarkets, len(selected), models.MaxCompareMarkets)
	}

	var markets []*models.Market
	for _, m := range v.dataset.markets {
		if selected[m.ID] {
			markets = append(markets, m)
			delete(selected, m.ID)
		}
	}

	comparison := &models.Comparison{
		Markets: make([]models.MarketSummary, 0, len(markets)),
	}
	for _, m := range markets {
		comparison.Markets = append(comparison.Markets, m.Summary())
	}

	for _, pillar := range v.catalog.Pillars() {
		row := models.ComparisonRow{
			Pillar: pillar,
			Cells:  make([]models.ComparisonCell, 0, len(markets)),
		}
		for _, m := range markets {
			stat := m.PillarStats[pillar.ID]
			row.Cells = append(row.Cells, models.ComparisonCell{
				MarketID:   m.ID,
				PillarStat: stat,
				Band:       models.BandFor(stat.Completeness),
			})
		}
		comparison.Rows = append(comparison.Rows, row)
	}

	return comparison, nil
}

// Heatmap builds the cross-market grid of pillar coverage
func (v *View) Heatmap() *models.Heatmap {
	pillars := v.catalog.Pillars()

	heatmap := &models.Heatmap{
		Columns: make([]models.HeatmapColumn, 0, len(pillars)),
		Rows:    make([]models.HeatmapRow, 0, len(v.dataset.markets)),
	}

	for _, pillar := range pillars {
		heatmap.Columns = append(heatmap.Columns, models.HeatmapColumn{
			PillarID: pillar.ID,
			Label:    pillar.ShortLabel(),
		})
	}

	for _, m := range v.dataset.markets {
		row := models.HeatmapRow{
			Market: m.Summary(),
			Cells:  make([]models.HeatmapCell, 0, len(pillars)),
		}
		for _, pillar := range pillars {
			stat := m.PillarStats[pillar.ID]
			row.Cells = append(row.Cells, models.HeatmapCell{
				PillarID:     pillar.ID,
				Completeness: stat.Completeness,
				Band:         models.BandFor(stat.Completeness),
				ActionNeeded: stat.ActionNeeded,
			})
		}
		heatmap.Rows = append(heatmap.Rows, row)
	}

	return heatmap
}
