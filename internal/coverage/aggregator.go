package coverage

import (
	"github.com/terra-clan/portfolio-intel/internal/catalog"
	"github.com/terra-clan/portfolio-intel/internal/models"
)

// ComputePillarStats derives one PillarStat for every catalog pillar and
// every known pillar id. Pillars without products, including known pillars
// the catalog leaves out, are present with all flags false.
func ComputePillarStats(statuses ProductStatuses, c *catalog.Catalog) map[models.PillarID]models.PillarStat {
	pillars := c.Pillars()
	stats := make(map[models.PillarID]models.PillarStat, len(models.AllPillars))
	for _, id := range models.AllPillars {
		stats[id] = models.PillarStat{}
	}
	for _, pillar := range pillars {
		stats[pillar.ID] = computePillarStat(c.ProductsByPillar(pillar.ID), statuses)
	}
	return stats
}

func computePillarStat(products []models.Product, statuses ProductStatuses) models.PillarStat {
	var active, essential, essentialActive, expert, expertActive int

	for _, p := range products {
		isActive := statuses.IsActive(p.ID)
		if isActive {
			active++
		}
		switch p.Range {
		case models.RangeEssential:
			essential++
			if isActive {
				essentialActive++
			}
		case models.RangeExpert:
			expert++
			if isActive {
				expertActive++
			}
		}
	}

	// An empty range never raises the flag
	essentialGap := essential > 0 && essentialActive < essential
	expertGap := expert > 0 && expertActive == 0

	return models.PillarStat{
		EssentialActive: essentialActive > 0,
		ExpertActive:    expertActive > 0,
		Completeness:    Percent(active, len(products)),
		ActionNeeded:    essentialGap || expertGap,
	}
}

// Percent returns round(100*part/whole) with halves rounded up, or 0 when
// whole is 0. Integer arithmetic keeps 1/8 at exactly 13.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}
