package models

import "strings"

// PillarID identifies one of the strategic product pillars
type PillarID string

const (
	PillarHD              PillarID = "HD"
	PillarHV              PillarID = "HV"
	PillarHDF             PillarID = "HDF"
	PillarPersonalization PillarID = "Personalization"
	PillarServices        PillarID = "Services"
	PillarSustainability  PillarID = "Sustainability"
	PillarDigital         PillarID = "Digital"
)

// AllPillars lists every pillar in display order
var AllPillars = []PillarID{
	PillarHD,
	PillarHV,
	PillarHDF,
	PillarPersonalization,
	PillarServices,
	PillarSustainability,
	PillarDigital,
}

// IsValid reports whether id is a known pillar
func (id PillarID) IsValid() bool {
	for _, p := range AllPillars {
		if p == id {
			return true
		}
	}
	return false
}

// ProductRange is the product tier
type ProductRange string

const (
	RangeEssential ProductRange = "Essential"
	RangeExpert    ProductRange = "Expert"
)

// IsValid reports whether r is a known range
func (r ProductRange) IsValid() bool {
	return r == RangeEssential || r == RangeExpert
}

// ProductImportance is the priority tag of a product
type ProductImportance string

const (
	ImportanceMustHave   ProductImportance = "Must-have"
	ImportanceNiceToHave ProductImportance = "Nice-to-have"
)

// IsValid reports whether i is a known importance
func (i ProductImportance) IsValid() bool {
	return i == ImportanceMustHave || i == ImportanceNiceToHave
}

// Product is an immutable catalog entry
type Product struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Range      ProductRange      `json:"range"`
	Importance ProductImportance `json:"importance"`
	PillarID   PillarID          `json:"pillarId"`
}

// IsEssential returns true for Essential-range products
func (p *Product) IsEssential() bool {
	return p.Range == RangeEssential
}

// IsExpert returns true for Expert-range products
func (p *Product) IsExpert() bool {
	return p.Range == RangeExpert
}

// IsMustHave returns true for Must-have products
func (p *Product) IsMustHave() bool {
	return p.Importance == ImportanceMustHave
}

// Pillar is the configuration of a strategic pillar
type Pillar struct {
	ID          PillarID `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
}

// ShortLabel returns the label without its parenthesised abbreviation,
// e.g. "Hemodialysis (HD)" -> "Hemodialysis"
func (p *Pillar) ShortLabel() string {
	label, _, _ := strings.Cut(p.Label, "(")
	return strings.TrimSpace(label)
}
