// Package trend projects next week's issue load from weekly history.
//
// The projection is a linearly weighted moving average over the trailing
// buckets (weights 1..w, most recent heaviest). With fewer buckets than the
// configured window the window shrinks to what is available.
package trend

import (
	"fmt"
	"sort"
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/utils"
)

const (
	// Granularity is the bucket size label.
	Granularity = "week"
	// Method names the projection.
	Method = "weighted_moving_average"

	week = 7 * 24 * time.Hour
)

// Config tunes the projection and the growth alarm.
type Config struct {
	Window          int
	GrowthThreshold float64
	MinRecentCount  int
}

// DefaultConfig returns a 4 week window, 25% growth and at least 2 recent
// issues for a category to count as high-risk.
func DefaultConfig() Config {
	return Config{
		Window:          4,
		GrowthThreshold: 0.25,
		MinRecentCount:  2,
	}
}

// Validate checks cfg.
func (c Config) Validate() error {
	if c.Window < 1 {
		return fmt.Errorf("trend: window must be at least 1, got %d", c.Window)
	}
	if c.GrowthThreshold < 0 {
		return fmt.Errorf("trend: negative growth threshold %v", c.GrowthThreshold)
	}
	if c.MinRecentCount < 0 {
		return fmt.Errorf("trend: negative minimum recent count %d", c.MinRecentCount)
	}
	return nil
}

// Forecaster computes trend predictions. It holds no state between calls.
type Forecaster struct {
	cfg Config
}

// New returns a forecaster for cfg.
func New(cfg Config) (*Forecaster, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Forecaster{cfg: cfg}, nil
}

// WeekStart returns Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Forecast projects the issue count of the week containing asOf from the
// complete weeks before it. Issues reported in that week or later are not
// history and are ignored.
func (f *Forecaster) Forecast(issues []domain.Issue, asOf time.Time) domain.TrendPrediction {
	target := WeekStart(asOf)
	pred := domain.TrendPrediction{
		TimeBucket:         target,
		Granularity:        Granularity,
		HighRiskCategories: []domain.Category{},
		History:            []domain.BucketCount{},
		Method:             Method,
	}

	// Issues without a report time carry no history.
	var first time.Time
	found := false
	for _, is := range issues {
		if is.CreatedAt.IsZero() || !is.CreatedAt.Before(target) {
			continue
		}
		if !found || is.CreatedAt.Before(first) {
			first = is.CreatedAt
			found = true
		}
	}
	if !found {
		return pred
	}

	start := WeekStart(first)
	n := int(target.Sub(start) / week)
	history := make([]domain.BucketCount, n)
	for i := range history {
		history[i] = domain.BucketCount{
			Start:      start.Add(time.Duration(i) * week),
			ByCategory: make(map[domain.Category]int),
		}
	}

	seen := make(map[domain.Category]struct{})
	for _, is := range issues {
		if is.CreatedAt.IsZero() || !is.CreatedAt.Before(target) || is.CreatedAt.Before(start) {
			continue
		}
		i := int(WeekStart(is.CreatedAt).Sub(start) / week)
		cat := is.Category()
		history[i].Total++
		history[i].ByCategory[cat]++
		seen[cat] = struct{}{}
	}

	w := f.cfg.Window
	if w > n {
		w = n
	}
	pred.History = history
	pred.WindowUsed = w

	tail := history[n-w:]
	totals := make([]float64, w)
	for i, b := range tail {
		totals[i] = float64(b.Total)
	}
	pred.ExpectedIssueCount = utils.RoundTo(wma(totals), 2)

	cats := make([]domain.Category, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	for _, cat := range cats {
		series := make([]float64, w)
		for i, b := range tail {
			series[i] = float64(b.ByCategory[cat])
		}
		ct := domain.CategoryTrend{
			Category:    cat,
			Expected:    utils.RoundTo(wma(series), 2),
			RecentCount: int(series[w-1]),
			GrowthRate:  utils.RoundTo(growth(series), 4),
		}
		ct.HighRisk = w >= 2 &&
			ct.GrowthRate >= f.cfg.GrowthThreshold &&
			ct.RecentCount >= f.cfg.MinRecentCount
		pred.Categories = append(pred.Categories, ct)
	}

	risky := make([]domain.CategoryTrend, 0)
	for _, ct := range pred.Categories {
		if ct.HighRisk {
			risky = append(risky, ct)
		}
	}
	sort.SliceStable(risky, func(i, j int) bool {
		if risky[i].GrowthRate != risky[j].GrowthRate {
			return risky[i].GrowthRate > risky[j].GrowthRate
		}
		return risky[i].Category < risky[j].Category
	})
	for _, ct := range risky {
		pred.HighRiskCategories = append(pred.HighRiskCategories, ct.Category)
	}
	return pred
}

// wma is the linearly weighted mean of series, the last element weighing most.
func wma(series []float64) float64 {
	weights := make([]float64, len(series))
	for i := range weights {
		weights[i] = float64(i + 1)
	}
	return utils.WeightedMean(series, weights)
}

// growth compares the last bucket with the mean of the ones before it. A
// single bucket has nothing to compare against and grows by 0.
func growth(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	last := series[len(series)-1]
	prev := utils.Mean(series[:len(series)-1])
	denom := prev
	if denom < 1 {
		denom = 1
	}
	return (last - prev) / denom
}
