package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/model"
)

func newDefault(t *testing.T) *Classifier {
	t.Helper()
	cfg := DefaultConfig()
	h, err := NewHeuristic(DefaultProfiles(), cfg.ImageWeight)
	require.NoError(t, err)
	c, err := New(h, cfg.MinScore)
	require.NoError(t, err)
	return c
}

func TestClassify_Keywords(t *testing.T) {
	c := newDefault(t)

	tests := []struct {
		text string
		want domain.Category
		sub  string
	}{
		{"Large pothole on Sector 5 main road", domain.CategoryRoadInfrastructure, "pothole"},
		{"Pipe burst, leakage flooding the lane", domain.CategoryWaterSupply, "pipe_leak"},
		{"Streetlights not working for a week", domain.CategoryElectricity, "streetlight_failure"},
		{"Garbage dump overflowing near market", domain.CategoryGarbageSanitation, "garbage_overflow"},
		{"Theft and harassment reported at night", domain.CategoryPublicSafety, "crime"},
		{"Fallen tree blocking the park entrance", domain.CategoryParksEnvironment, "park_maintenance"},
		{"Bus stop shelter broken at metro station", domain.CategoryPublicTransport, "bus_service"},
		{"Illegal construction and encroachment", domain.CategoryBuildingsHousing, "encroachment"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(Input{Text: tt.text})
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.sub, got.Subcategory)
			assert.Greater(t, got.Confidence, 0.0)
			assert.LessOrEqual(t, got.Confidence, 1.0)
			assert.Equal(t, "keyword-heuristic", got.Model)
		})
	}
}

func TestClassify_Uncategorized(t *testing.T) {
	c := newDefault(t)

	got := c.Classify(Input{Text: "Something happened somewhere"})
	assert.Equal(t, domain.CategoryUncategorized, got.Category)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Len(t, got.Scores, domain.NumCategories)

	got = c.Classify(Input{})
	assert.Equal(t, domain.CategoryUncategorized, got.Category)
}

func TestClassify_TieBreakLexical(t *testing.T) {
	c := newDefault(t)

	// "bin" (garbage, 1) vs "lamp" (electricity, 1): equal scores.
	got := c.Classify(Input{Text: "lamp bin"})
	assert.Equal(t, domain.CategoryElectricity, got.Category)
	assert.Equal(t, 0.0, got.Confidence)
}

func TestClassify_ImageFeatures(t *testing.T) {
	c := newDefault(t)

	img := make([]float64, domain.NumCategories)
	img[domain.CategoryWaterSupply.Index()] = 0.9
	got := c.Classify(Input{Text: "see attached photo", ImageFeatures: img})
	assert.Equal(t, domain.CategoryWaterSupply, got.Category)
	assert.InDelta(t, 1.8, got.Scores[domain.CategoryWaterSupply], 1e-9)

	// Out-of-range affinities are clamped rather than dominating.
	img[domain.CategoryWaterSupply.Index()] = 50
	got = c.Classify(Input{Text: "pothole road", ImageFeatures: img})
	assert.Equal(t, domain.CategoryRoadInfrastructure, got.Category)
}

func TestClassify_Deterministic(t *testing.T) {
	c := newDefault(t)
	in := Input{Text: "Broken streetlight and garbage near bus stop", ImageFeatures: []float64{0.1, 0.2, 0.3}}
	first := c.Classify(in)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, c.Classify(in))
	}
}

func TestNewHeuristic_InvalidProfiles(t *testing.T) {
	_, err := NewHeuristic(Profiles{"weather": {kw("rain", 1, "")}}, 1)
	assert.Error(t, err)

	_, err = NewHeuristic(Profiles{domain.CategoryElectricity: {kw("power", 0, "")}}, 1)
	assert.Error(t, err)

	_, err = NewHeuristic(Profiles{domain.CategoryElectricity: {kw("power cut", 1, "")}}, 1)
	assert.Error(t, err)

	_, err = NewHeuristic(DefaultProfiles(), -1)
	assert.Error(t, err)
}

func TestLoadProfiles_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	body := `{"electricity":[{"term":"Blackouts","weight":3,"subcategory":"blackout"}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	p, err := LoadProfiles(path)
	require.NoError(t, err)
	assert.Len(t, p[domain.CategoryElectricity], 1)
	assert.NotEmpty(t, p[domain.CategoryRoadInfrastructure])

	h, err := NewHeuristic(p, 0)
	require.NoError(t, err)
	c, err := New(h, 1)
	require.NoError(t, err)

	got := c.Classify(Input{Text: "blackout in sector 7"})
	assert.Equal(t, domain.CategoryElectricity, got.Category)
	assert.Equal(t, "blackout", got.Subcategory)
}

func TestLearned(t *testing.T) {
	f, err := model.Parse([]byte(`{
		"name": "linear-v1",
		"outputs": {
			"water_supply": {"intercept": 0.2, "weights": {"tok:pipe": 2, "img:water_supply": 1}},
			"road_infrastructure": {"intercept": 0.1, "weights": {"tok:pothole": 2}}
		}
	}`))
	require.NoError(t, err)

	tagger, err := NewHeuristic(DefaultProfiles(), 0)
	require.NoError(t, err)
	l, err := NewLearned(f, tagger)
	require.NoError(t, err)

	c, err := New(l, 1)
	require.NoError(t, err)
	assert.Equal(t, "linear-v1", c.ScorerName())

	got := c.Classify(Input{Text: "pipe burst"})
	assert.Equal(t, domain.CategoryWaterSupply, got.Category)
	assert.Equal(t, "pipe_leak", got.Subcategory)
	assert.Equal(t, "linear-v1", got.Model)

	bad, err := model.Parse([]byte(`{"name":"x","outputs":{"weather":{}}}`))
	require.NoError(t, err)
	_, err = NewLearned(bad, nil)
	assert.Error(t, err)
}

func TestLearned_LogisticThreshold(t *testing.T) {
	f, err := model.Parse([]byte(`{
		"name": "logistic-v1",
		"outputs": {
			"electricity": {"intercept": -4, "weights": {"tok:dark": 6, "tok:lane": 3}, "link": "logistic"}
		}
	}`))
	require.NoError(t, err)
	l, err := NewLearned(f, nil)
	require.NoError(t, err)

	c, err := New(l, DefaultConfig().MinScore)
	require.NoError(t, err)
	assert.Equal(t, 0.5, c.MinScore())

	got := c.Classify(Input{Text: "Whole lane dark"})
	assert.Equal(t, domain.CategoryElectricity, got.Category)
	assert.Greater(t, got.Confidence, 0.0)

	// sigmoid(-4) is well under the threshold.
	assert.Equal(t, domain.CategoryUncategorized, c.Classify(Input{Text: "graffiti"}).Category)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(nil, 1)
	assert.Error(t, err)
}
