package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/terra-clan/portfolio-intel/internal/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	actionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935"))

	bandStyles = map[models.CoverageBand]lipgloss.Style{
		models.BandHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		models.BandMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		models.BandLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")),
	}
)

// table renders rows of pre-styled cells in aligned columns
type table struct {
	title   string
	headers []string
	rows    [][]string
}

func newTable(title string, headers ...string) *table {
	return &table{title: title, headers: headers}
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) String() string {
	var sb strings.Builder

	if t.title != "" {
		sb.WriteString(titleStyle.Render(t.title))
		sb.WriteString("\n")
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	// Width includes padding
	total := 0
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}
	total += len(widths) - 1

	writeRow := func(style lipgloss.Style, cells []string) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			sb.WriteString(style.Width(widths[i]).Render(cell))
			if i < len(cells)-1 {
				sb.WriteString(mutedStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(headerStyle, t.headers)
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")
	for _, row := range t.rows {
		writeRow(cellStyle, row)
	}

	return sb.String()
}

func percent(value int, band models.CoverageBand) string {
	return bandStyles[band].Render(strconv.Itoa(value) + "%")
}

func check(active bool) string {
	if active {
		return bandStyles[models.BandHigh].Render("yes")
	}
	return mutedStyle.Render("no")
}

func actionFlag(needed bool) string {
	if needed {
		return actionStyle.Render("!")
	}
	return ""
}

func renderMarkets(markets []models.MarketSummary) string {
	t := newTable(fmt.Sprintf("Markets (%d)", len(markets)), "ID", "Country", "Region", "Completeness", "Action")
	for _, m := range markets {
		t.addRow(m.ID, m.Country, m.Region, percent(m.Completeness, m.Band), actionFlag(m.ActionNeeded))
	}
	return t.String()
}

func renderMarket(m *models.Market, pillars []models.Pillar) string {
	var sb strings.Builder

	summary := m.Summary()
	fmt.Fprintf(&sb, "%s %s  %s\n",
		titleStyle.Render(m.Country),
		mutedStyle.Render("("+m.Region+")"),
		percent(summary.Completeness, summary.Band),
	)
	if m.ActionNeeded {
		sb.WriteString(actionStyle.Render("Action: " + m.ActionNote))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	t := newTable("", "Pillar", "Completeness", "Essential", "Expert", "Action")
	for _, p := range pillars {
		stat := m.PillarStats[p.ID]
		t.addRow(
			p.ShortLabel(),
			percent(stat.Completeness, models.BandFor(stat.Completeness)),
			check(stat.EssentialActive),
			check(stat.ExpertActive),
			actionFlag(stat.ActionNeeded),
		)
	}
	sb.WriteString(t.String())

	return sb.String()
}

func renderPillarDetail(d *models.PillarDetail) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s  %s\n\n",
		titleStyle.Render(d.Market.Country+" / "+d.Pillar.Label),
		mutedStyle.Render(d.Pillar.Description),
		percent(d.Stats.Completeness, models.BandFor(d.Stats.Completeness)),
	)

	for _, breakdown := range []models.RangeBreakdown{d.Essential, d.Expert} {
		title := fmt.Sprintf("%s (%d/%d active)", breakdown.Range, breakdown.Active, breakdown.Total)
		t := newTable(title, "Product", "Importance", "Active", "Notes")
		for _, p := range breakdown.Products {
			t.addRow(p.Name, string(p.Importance), check(p.IsActive), mutedStyle.Render(p.Notes))
		}
		sb.WriteString(t.String())
		sb.WriteString("\n")
	}

	return sb.String()
}

func renderComparison(c *models.Comparison) string {
	headers := []string{"Pillar"}
	for _, m := range c.Markets {
		headers = append(headers, m.Country)
	}

	t := newTable("Comparison", headers...)

	overall := []string{"Overall"}
	for _, m := range c.Markets {
		overall = append(overall, percent(m.Completeness, m.Band)+" "+actionFlag(m.ActionNeeded))
	}
	t.addRow(overall...)

	for _, row := range c.Rows {
		cells := []string{row.Pillar.ShortLabel()}
		for _, cell := range row.Cells {
			cells = append(cells, percent(cell.Completeness, cell.Band)+" "+actionFlag(cell.ActionNeeded))
		}
		t.addRow(cells...)
	}

	return t.String()
}

func renderHeatmap(h *models.Heatmap) string {
	headers := []string{"Market"}
	for _, col := range h.Columns {
		headers = append(headers, col.Label)
	}

	t := newTable("Coverage heatmap", headers...)
	for _, row := range h.Rows {
		cells := []string{row.Market.Country + " " + actionFlag(row.Market.ActionNeeded)}
		for _, cell := range row.Cells {
			cells = append(cells, percent(cell.Completeness, cell.Band))
		}
		t.addRow(cells...)
	}

	return t.String()
}

func renderPillars(pillars []models.Pillar, products []models.Product) string {
	byPillar := make(map[models.PillarID][]models.Product)
	for _, p := range products {
		byPillar[p.PillarID] = append(byPillar[p.PillarID], p)
	}

	var sb strings.Builder
	for _, pillar := range pillars {
		t := newTable(pillar.Label, "ID", "Product", "Range", "Importance")
		for _, p := range byPillar[pillar.ID] {
			t.addRow(p.ID, p.Name, string(p.Range), string(p.Importance))
		}
		sb.WriteString(t.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderDatasetInfo(info *models.DatasetInfo) string {
	return fmt.Sprintf("dataset %s  generation %d  seed %d  markets %d  generated %s\n",
		titleStyle.Render(info.Version),
		info.Generation,
		info.Seed,
		info.Markets,
		info.GeneratedAt.Format("2006-01-02 15:04:05"),
	)
}
