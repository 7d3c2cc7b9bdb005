package hotspot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
)

// at returns an issue in the middle of grid cell (row, col) offset from a
// base cell near Gandhinagar.
func at(id int64, row, col int, cat domain.Category) domain.Issue {
	is := domain.Issue{
		ID: id,
		Location: domain.Location{
			Latitude:  23.2105 + float64(row)*0.001,
			Longitude: 72.6305 + float64(col)*0.001,
		},
		Status: domain.StatusPending,
	}
	is.Insights.Classification.Category = cat
	return is
}

func newDefault(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(DefaultConfig())
	require.NoError(t, err)
	return a
}

func TestAnalyze_Empty(t *testing.T) {
	a := newDefault(t)

	got := a.Analyze(nil)
	assert.Empty(t, got.Hotspots)
	assert.NotNil(t, got.Hotspots)
	assert.Equal(t, 0, got.TotalHotspots)
	assert.Nil(t, got.Extent)

	got = a.Analyze([]domain.Issue{at(1, 0, 0, domain.CategoryElectricity)})
	assert.Empty(t, got.Hotspots)
	assert.NotNil(t, got.Extent)
}

func TestAnalyze_SingleDominantCellIsHighRisk(t *testing.T) {
	a := newDefault(t)

	issues := make([]domain.Issue, 0, 51)
	for i := 0; i < 50; i++ {
		cat := domain.CategoryRoadInfrastructure
		if i%5 == 0 {
			cat = domain.CategoryWaterSupply
		}
		issues = append(issues, at(int64(i+1), 0, 0, cat))
	}
	issues = append(issues, at(51, 30, 30, domain.CategoryElectricity))

	got := a.Analyze(issues)
	require.Len(t, got.Hotspots, 1)

	h := got.Hotspots[0]
	assert.Equal(t, 50, h.IssueCount)
	assert.Equal(t, domain.RiskHigh, h.RiskLevel)
	assert.Equal(t, domain.CategoryRoadInfrastructure, h.DominantCategory)
	assert.Equal(t, 40, h.CategoryBreakdown[domain.CategoryRoadInfrastructure])
	assert.Equal(t, 10, h.CategoryBreakdown[domain.CategoryWaterSupply])
	assert.True(t, h.Bounds.Contains(issues[0].Location.Point()))
	assert.True(t, h.Bounds.Contains(h.Center))

	assert.Equal(t, 2, got.CellsAnalyzed)
	assert.Equal(t, 1, got.TotalHotspots)
	assert.Equal(t, 1, got.HighRiskAreas)
	assert.InDelta(t, 45.1, got.Threshold, 1e-9)
}

func TestAnalyze_RiskBuckets(t *testing.T) {
	a := newDefault(t)

	// Cell k (1..20) holds k issues.
	var issues []domain.Issue
	id := int64(0)
	for k := 1; k <= 20; k++ {
		for j := 0; j < k; j++ {
			id++
			issues = append(issues, at(id, k, 0, domain.CategoryGarbageSanitation))
		}
	}

	got := a.Analyze(issues)
	// P90 of 1..20 is 18.1, P95 is 19.05.
	require.Len(t, got.Hotspots, 2)
	assert.Equal(t, 20, got.Hotspots[0].IssueCount)
	assert.Equal(t, domain.RiskHigh, got.Hotspots[0].RiskLevel)
	assert.Equal(t, 19, got.Hotspots[1].IssueCount)
	assert.Equal(t, domain.RiskMedium, got.Hotspots[1].RiskLevel)
	assert.Equal(t, 20, got.CellsAnalyzed)
}

func TestAnalyze_UniformCellsAreLowRisk(t *testing.T) {
	a := newDefault(t)

	issues := []domain.Issue{
		at(1, 0, 0, domain.CategoryElectricity),
		at(2, 0, 0, domain.CategoryElectricity),
		at(3, 5, 5, domain.CategoryElectricity),
		at(4, 5, 5, domain.CategoryElectricity),
	}
	got := a.Analyze(issues)
	require.Len(t, got.Hotspots, 2)
	for _, h := range got.Hotspots {
		assert.Equal(t, domain.RiskLow, h.RiskLevel)
	}
	assert.Less(t, got.Hotspots[0].CellID, got.Hotspots[1].CellID)
}

func TestAnalyze_DominantCategoryTieBreak(t *testing.T) {
	a := newDefault(t)

	issues := []domain.Issue{
		at(1, 0, 0, domain.CategoryWaterSupply),
		at(2, 0, 0, domain.CategoryElectricity),
		at(3, 0, 0, domain.CategoryWaterSupply),
		at(4, 0, 0, domain.CategoryElectricity),
	}
	got := a.Analyze(issues)
	require.Len(t, got.Hotspots, 1)
	assert.Equal(t, domain.CategoryElectricity, got.Hotspots[0].DominantCategory)
}

func TestAnalyze_Idempotent(t *testing.T) {
	a := newDefault(t)

	var issues []domain.Issue
	for i := 0; i < 120; i++ {
		cats := domain.Categories()
		issues = append(issues, at(int64(i), i%7, i%3, cats[i%len(cats)]))
	}

	first := a.Analyze(issues)
	second := a.Analyze(issues)
	assert.Equal(t, first, second)
}

func TestAnalyze_Limit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HotspotPercentile = 0
	cfg.Limit = 2
	a, err := New(cfg)
	require.NoError(t, err)

	issues := []domain.Issue{
		at(1, 0, 0, domain.CategoryElectricity),
		at(2, 1, 0, domain.CategoryElectricity),
		at(3, 2, 0, domain.CategoryElectricity),
	}
	got := a.Analyze(issues)
	assert.Len(t, got.Hotspots, 2)
	assert.Equal(t, 3, got.TotalHotspots)
}

func TestConfig_Validate(t *testing.T) {
	bad := []Config{
		{CellSizeDegrees: 0, HotspotPercentile: 90, MediumPercentile: 50, HighPercentile: 95},
		{CellSizeDegrees: 0.001, HotspotPercentile: 190, MediumPercentile: 50, HighPercentile: 95},
		{CellSizeDegrees: 0.001, HotspotPercentile: 90, MediumPercentile: 95, HighPercentile: 50},
		{CellSizeDegrees: 0.001, HotspotPercentile: 90, MediumPercentile: 50, HighPercentile: 95, Limit: -1},
	}
	for _, c := range bad {
		_, err := New(c)
		assert.Error(t, err)
	}
}
