package models

// ProductWithStatus pairs a catalog product with its market status
type ProductWithStatus struct {
	Product
	IsActive bool   `json:"isActive"`
	Notes    string `json:"notes,omitempty"`
}

// RangeBreakdown lists the products of one range within a pillar
type RangeBreakdown struct {
	Range    ProductRange        `json:"range"`
	Active   int                 `json:"active"`
	Total    int                 `json:"total"`
	Products []ProductWithStatus `json:"products"`
}

// PillarDetail is the drill-down of one pillar in one market
type PillarDetail struct {
	Market    MarketSummary  `json:"market"`
	Pillar    Pillar         `json:"pillar"`
	Stats     PillarStat     `json:"stats"`
	Essential RangeBreakdown `json:"essential"`
	Expert    RangeBreakdown `json:"expert"`
}

// ComparisonCell is one market's figures for one pillar
type ComparisonCell struct {
	MarketID string `json:"marketId"`
	PillarStat
	Band CoverageBand `json:"band"`
}

// ComparisonRow holds every compared market's figures for one pillar
type ComparisonRow struct {
	Pillar Pillar           `json:"pillar"`
	Cells  []ComparisonCell `json:"cells"`
}

// Comparison is the side-by-side view of up to MaxCompareMarkets markets
type Comparison struct {
	Markets []MarketSummary `json:"markets"`
	Rows    []ComparisonRow `json:"rows"`
}

// MaxCompareMarkets is the largest selection a comparison accepts
const MaxCompareMarkets = 4

// HeatmapColumn is a pillar column header
type HeatmapColumn struct {
	PillarID PillarID `json:"pillarId"`
	Label    string   `json:"label"`
}

// HeatmapCell is one pillar value in a heatmap row
type HeatmapCell struct {
	PillarID     PillarID     `json:"pillarId"`
	Completeness int          `json:"completeness"`
	Band         CoverageBand `json:"band"`
	ActionNeeded bool         `json:"actionNeeded"`
}

// HeatmapRow is one market in the heatmap
type HeatmapRow struct {
	Market MarketSummary `json:"market"`
	Cells  []HeatmapCell `json:"cells"`
}

// Heatmap is the cross-market pillar coverage grid
type Heatmap struct {
	Columns []HeatmapColumn `json:"columns"`
	Rows    []HeatmapRow    `json:"rows"`
}
