package models

import "time"

// Notes attached to synthesized product statuses
const (
	NoteAvailable       = "Available via distribution"
	NoteApprovalPending = "Regulatory approval pending"
)

// ActionNoteExpert is the action note of markets flagged for action
const ActionNoteExpert = "Introduce selected Expert products"

// MarketProductStatus is the activation state of one product in one market
type MarketProductStatus struct {
	ProductID string `json:"productId"`
	IsActive  bool   `json:"isActive"`
	Notes     string `json:"notes,omitempty"`
}

// PillarStat holds coverage figures derived for one pillar of one market
type PillarStat struct {
	EssentialActive bool `json:"essentialActive"`
	ExpertActive    bool `json:"expertActive"`
	Completeness    int  `json:"completeness"` // 0-100
	ActionNeeded    bool `json:"actionNeeded"`
}

// MarketMeta is the static description a market is synthesized from
type MarketMeta struct {
	ID           string          `json:"id" yaml:"id"`
	Country      string          `json:"country" yaml:"country"`
	Region       string          `json:"region" yaml:"region"`
	Completeness int             `json:"completeness" yaml:"completeness"`
	ActionNeeded bool            `json:"actionNeeded" yaml:"action_needed"`
	Overrides    map[string]bool `json:"overrides,omitempty" yaml:"overrides"`
}

// Market is a fully populated market record. It is read-only once built.
type Market struct {
	ID           string                         `json:"id"`
	Country      string                         `json:"country"`
	Region       string                         `json:"region"`
	ActionNeeded bool                           `json:"actionNeeded"`
	ActionNote   string                         `json:"actionNote,omitempty"`
	Completeness int                            `json:"completeness"` // 0-100
	PillarStats  map[PillarID]PillarStat        `json:"pillarStats"`
	Products     map[string]MarketProductStatus `json:"products"`
}

// IsProductActive returns whether the product is active in the market.
// Unknown products are reported inactive.
func (m *Market) IsProductActive(productID string) bool {
	status, ok := m.Products[productID]
	return ok && status.IsActive
}

// CoverageBand buckets a completeness percentage
type CoverageBand string

const (
	BandHigh   CoverageBand = "high"   // >= 80
	BandMedium CoverageBand = "medium" // >= 50
	BandLow    CoverageBand = "low"
)

// BandFor returns the coverage band of a completeness percentage
func BandFor(completeness int) CoverageBand {
	switch {
	case completeness >= 80:
		return BandHigh
	case completeness >= 50:
		return BandMedium
	default:
		return BandLow
	}
}

// MarketSummary is the list-view projection of a market
type MarketSummary struct {
	ID           string       `json:"id"`
	Country      string       `json:"country"`
	Region       string       `json:"region"`
	Completeness int          `json:"completeness"`
	Band         CoverageBand `json:"band"`
	ActionNeeded bool         `json:"actionNeeded"`
	ActionNote   string       `json:"actionNote,omitempty"`
}

// Summary projects the market into its list view
func (m *Market) Summary() MarketSummary {
	return MarketSummary{
		ID:           m.ID,
		Country:      m.Country,
		Region:       m.Region,
		Completeness: m.Completeness,
		Band:         BandFor(m.Completeness),
		ActionNeeded: m.ActionNeeded,
		ActionNote:   m.ActionNote,
	}
}

// DatasetInfo describes one generation of synthesized market data
type DatasetInfo struct {
	Version     string    `json:"version"`
	Seed        int64     `json:"seed"`
	Generation  int       `json:"generation"`
	GeneratedAt time.Time `json:"generatedAt"`
	Markets     int       `json:"markets"`
}

// MarketFilter narrows the market list
type MarketFilter struct {
	Query  string // case-insensitive substring of the country name
	Region string // exact region match, case-insensitive; empty matches all
}
