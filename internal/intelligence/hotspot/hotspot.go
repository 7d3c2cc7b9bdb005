// Package hotspot finds grid cells with unusually many reported issues.
package hotspot

import (
	"fmt"
	"sort"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/geo"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/utils"
)

// Config holds the grid size and the percentile cuts.
//
// A non-empty cell is a hotspot when its count reaches HotspotPercentile of
// all non-empty cell counts. Its risk is low at or below MediumPercentile,
// high at or above HighPercentile and medium in between.
type Config struct {
	CellSizeDegrees   float64
	HotspotPercentile float64
	MediumPercentile  float64
	HighPercentile    float64
	// Limit caps the number of hotspots returned; 0 means no cap.
	Limit int
}

// DefaultConfig uses a 0.001 degree grid (about 111 m) with P90/P50/P95 cuts.
func DefaultConfig() Config {
	return Config{
		CellSizeDegrees:   0.001,
		HotspotPercentile: 90,
		MediumPercentile:  50,
		HighPercentile:    95,
	}
}

// Validate checks cfg.
func (c Config) Validate() error {
	if _, err := geo.NewGrid(c.CellSizeDegrees); err != nil {
		return fmt.Errorf("hotspot: %w", err)
	}
	if !(c.MediumPercentile >= 0 && c.MediumPercentile < c.HighPercentile && c.HighPercentile <= 100) {
		return fmt.Errorf("hotspot: risk percentiles must satisfy 0 <= medium < high <= 100, got %v/%v",
			c.MediumPercentile, c.HighPercentile)
	}
	if !(c.HotspotPercentile >= 0 && c.HotspotPercentile <= 100) {
		return fmt.Errorf("hotspot: hotspot percentile must be in [0,100], got %v", c.HotspotPercentile)
	}
	if c.Limit < 0 {
		return fmt.Errorf("hotspot: negative limit %d", c.Limit)
	}
	return nil
}

// Analyzer computes hotspot reports. It holds no state between calls.
type Analyzer struct {
	cfg  Config
	grid geo.Grid
}

// New returns an analyzer for cfg.
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, _ := geo.NewGrid(cfg.CellSizeDegrees)
	return &Analyzer{cfg: cfg, grid: grid}, nil
}

type cellStats struct {
	cell       geo.Cell
	count      int
	categories map[domain.Category]int
}

// Analyze overlays the grid on issues and returns the hotspots, densest first.
// Fewer than two issues give an empty report.
func (a *Analyzer) Analyze(issues []domain.Issue) domain.HotspotReport {
	report := domain.HotspotReport{
		Hotspots:        []domain.Hotspot{},
		CellSizeDegrees: a.cfg.CellSizeDegrees,
	}

	points := make([]geo.Point, 0, len(issues))
	for _, is := range issues {
		points = append(points, is.Location.Point())
	}
	if extent, ok := geo.Extent(points); ok {
		report.Extent = &extent
	}
	if len(issues) < 2 {
		return report
	}

	cells := make(map[geo.Cell]*cellStats)
	for i, is := range issues {
		c := a.grid.CellOf(points[i])
		st, ok := cells[c]
		if !ok {
			st = &cellStats{cell: c, categories: make(map[domain.Category]int)}
			cells[c] = st
		}
		st.count++
		st.categories[is.Category()]++
	}
	report.CellsAnalyzed = len(cells)

	counts := make([]float64, 0, len(cells))
	for _, st := range cells {
		counts = append(counts, float64(st.count))
	}
	threshold := utils.Percentile(counts, a.cfg.HotspotPercentile)
	medium := utils.Percentile(counts, a.cfg.MediumPercentile)
	high := utils.Percentile(counts, a.cfg.HighPercentile)
	report.Threshold = utils.RoundTo(threshold, 2)

	for _, st := range cells {
		n := float64(st.count)
		if n < threshold {
			continue
		}

		risk := domain.RiskMedium
		switch {
		case n <= medium:
			risk = domain.RiskLow
		case n >= high:
			risk = domain.RiskHigh
		}

		report.Hotspots = append(report.Hotspots, domain.Hotspot{
			CellID:            st.cell.ID(),
			Center:            a.grid.Center(st.cell),
			Bounds:            a.grid.Bounds(st.cell),
			IssueCount:        st.count,
			DominantCategory:  dominant(st.categories),
			RiskLevel:         risk,
			CategoryBreakdown: st.categories,
		})
	}

	sort.Slice(report.Hotspots, func(i, j int) bool {
		hi, hj := report.Hotspots[i], report.Hotspots[j]
		if hi.IssueCount != hj.IssueCount {
			return hi.IssueCount > hj.IssueCount
		}
		return hi.CellID < hj.CellID
	})

	report.TotalHotspots = len(report.Hotspots)
	for _, h := range report.Hotspots {
		if h.RiskLevel == domain.RiskHigh {
			report.HighRiskAreas++
		}
	}
	if a.cfg.Limit > 0 && len(report.Hotspots) > a.cfg.Limit {
		report.Hotspots = report.Hotspots[:a.cfg.Limit]
	}
	return report
}

// dominant returns the modal category, the lexically smallest on ties.
func dominant(counts map[domain.Category]int) domain.Category {
	best, bestN := domain.Category(""), -1
	for c, n := range counts {
		if n > bestN || (n == bestN && c < best) {
			best, bestN = c, n
		}
	}
	return best
}
