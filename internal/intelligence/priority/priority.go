// Package priority scores how urgently an issue needs attention.
//
// The score is a weighted sum of four factors in [0,1]: category base
// urgency, textual severity, density of open issues nearby and recency.
// Given the same input (including the reference time) the result is always
// the same.
package priority

import (
	"fmt"
	"math"
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/textsim"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/utils"
)

// Factor names, also used as learned-model feature names.
const (
	FactorCategory = "category_urgency"
	FactorSeverity = "severity"
	FactorDensity  = "density"
	FactorRecency  = "recency"
)

// Input is everything the predictor may look at.
type Input struct {
	Category   domain.Category
	Text       string
	ReportedAt time.Time
	// Now is the reference time for recency.
	Now time.Time
	// NearbyOpen is the number of open issues around the location.
	NearbyOpen int
}

// Factors are the normalised signals combined into the score.
type Factors struct {
	CategoryUrgency float64
	Severity        float64
	Density         float64
	Recency         float64

	SeverityTier string
}

// Map returns the factors keyed by name.
func (f Factors) Map() map[string]float64 {
	return map[string]float64{
		FactorCategory: f.CategoryUrgency,
		FactorSeverity: f.Severity,
		FactorDensity:  f.Density,
		FactorRecency:  f.Recency,
	}
}

// Scorer maps factors onto a 0-100 score.
type Scorer interface {
	Name() string
	Score(f Factors) float64
}

// Weights of the heuristic scorer. They must be non-negative and sum to 1.
type Weights struct {
	Category float64
	Severity float64
	Density  float64
	Recency  float64
}

// DefaultWeights returns the fixed factor weights.
func DefaultWeights() Weights {
	return Weights{Category: 0.30, Severity: 0.35, Density: 0.20, Recency: 0.15}
}

func (w Weights) validate() error {
	for _, v := range []float64{w.Category, w.Severity, w.Density, w.Recency} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("priority: negative weight %v", v)
		}
	}
	sum := w.Category + w.Severity + w.Density + w.Recency
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("priority: weights sum to %v, want 1", sum)
	}
	return nil
}

// Heuristic is the fixed weighted-sum scorer.
type Heuristic struct {
	w Weights
}

// NewHeuristic validates w and returns the scorer.
func NewHeuristic(w Weights) (*Heuristic, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	return &Heuristic{w: w}, nil
}

func (h *Heuristic) Name() string { return "weighted-factors" }

func (h *Heuristic) Score(f Factors) float64 {
	s := h.w.Category*f.CategoryUrgency +
		h.w.Severity*f.Severity +
		h.w.Density*f.Density +
		h.w.Recency*f.Recency
	return s * 100
}

// Breakpoints are the minimum scores of each level. They must be strictly
// decreasing from Critical to Medium.
type Breakpoints struct {
	Critical float64
	High     float64
	Medium   float64
}

// DefaultBreakpoints returns 75/50/25.
func DefaultBreakpoints() Breakpoints {
	return Breakpoints{Critical: 75, High: 50, Medium: 25}
}

// Validate checks ordering and range.
func (b Breakpoints) Validate() error {
	if !(b.Critical <= 100 && b.Critical > b.High && b.High > b.Medium && b.Medium > 0) {
		return fmt.Errorf("priority: breakpoints must satisfy 100 >= critical > high > medium > 0, got %v/%v/%v",
			b.Critical, b.High, b.Medium)
	}
	return nil
}

// Level maps a score to its tier. It is non-decreasing in score.
func (b Breakpoints) Level(score float64) domain.PriorityLevel {
	switch {
	case score >= b.Critical:
		return domain.PriorityCritical
	case score >= b.High:
		return domain.PriorityHigh
	case score >= b.Medium:
		return domain.PriorityMedium
	}
	return domain.PriorityLow
}

var responseTimes = map[domain.PriorityLevel]string{
	domain.PriorityCritical: "4-8 hours",
	domain.PriorityHigh:     "24-48 hours",
	domain.PriorityMedium:   "3-5 days",
	domain.PriorityLow:      "1-2 weeks",
}

var urgencies = map[domain.PriorityLevel]string{
	domain.PriorityCritical: "immediate",
	domain.PriorityHigh:     "high",
	domain.PriorityMedium:   "moderate",
	domain.PriorityLow:      "low",
}

// ResponseTime returns the expected response window for level.
func ResponseTime(level domain.PriorityLevel) string {
	return responseTimes[level]
}

// Config tunes factor extraction and level mapping.
type Config struct {
	Breakpoints Breakpoints
	// DensitySaturation is the nearby open count at which density reaches 1.
	DensitySaturation int
	// HalfLife is the age at which recency drops to 0.5.
	HalfLife time.Duration
}

// DefaultConfig returns the defaults used by the service.
func DefaultConfig() Config {
	return Config{
		Breakpoints:       DefaultBreakpoints(),
		DensitySaturation: 10,
		HalfLife:          72 * time.Hour,
	}
}

// Validate checks cfg.
func (c Config) Validate() error {
	if err := c.Breakpoints.Validate(); err != nil {
		return err
	}
	if c.DensitySaturation <= 0 {
		return fmt.Errorf("priority: density saturation must be positive, got %d", c.DensitySaturation)
	}
	if c.HalfLife <= 0 {
		return fmt.Errorf("priority: half-life must be positive, got %s", c.HalfLife)
	}
	return nil
}

// Predictor computes PriorityResults.
type Predictor struct {
	scorer Scorer
	cfg    Config
}

// New returns a predictor using scorer.
func New(scorer Scorer, cfg Config) (*Predictor, error) {
	if scorer == nil {
		return nil, fmt.Errorf("priority: nil scorer")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Predictor{scorer: scorer, cfg: cfg}, nil
}

// ScorerName returns the name of the underlying scorer.
func (p *Predictor) ScorerName() string {
	return p.scorer.Name()
}

// Breakpoints returns the configured level cut-offs.
func (p *Predictor) Breakpoints() Breakpoints {
	return p.cfg.Breakpoints
}

// Factors extracts the normalised factors of in.
func (p *Predictor) Factors(in Input) Factors {
	tier, severity := Severity(in.Text)

	density := 0.0
	if in.NearbyOpen > 0 {
		density = math.Min(1, float64(in.NearbyOpen)/float64(p.cfg.DensitySaturation))
	}

	recency := 1.0
	if !in.ReportedAt.IsZero() && !in.Now.IsZero() {
		age := in.Now.Sub(in.ReportedAt)
		if age > 0 {
			recency = math.Pow(0.5, age.Hours()/p.cfg.HalfLife.Hours())
		}
	}

	return Factors{
		CategoryUrgency: CategoryUrgency(in.Category),
		Severity:        severity,
		Density:         density,
		Recency:         recency,
		SeverityTier:    tier,
	}
}

// Predict scores in and maps it to a level. The level is derived from the
// rounded score that is returned, so the two always agree.
func (p *Predictor) Predict(in Input) domain.PriorityResult {
	f := p.Factors(in)

	score := p.scorer.Score(f)
	if math.IsNaN(score) {
		score = 0
	}
	score = utils.RoundTo(utils.Clamp(score, 0, 100), 1)
	level := p.cfg.Breakpoints.Level(score)

	factors := f.Map()
	for k, v := range factors {
		factors[k] = utils.RoundTo(v, 3)
	}

	return domain.PriorityResult{
		Score:                 score,
		Level:                 level,
		Urgency:               urgencies[level],
		EstimatedResponseTime: responseTimes[level],
		Factors:               factors,
		Explanation: map[string]string{
			FactorCategory: fmt.Sprintf("%s base urgency", in.Category.DisplayName()),
			FactorSeverity: fmt.Sprintf("%s severity cues", f.SeverityTier),
			FactorDensity:  fmt.Sprintf("%d open issues nearby", in.NearbyOpen),
			FactorRecency:  fmt.Sprintf("half-life %s", p.cfg.HalfLife),
		},
		Model: p.scorer.Name(),
	}
}

var categoryUrgency = map[domain.Category]float64{
	domain.CategoryPublicSafety:       0.90,
	domain.CategoryWaterSupply:        0.80,
	domain.CategoryRoadInfrastructure: 0.80,
	domain.CategoryElectricity:        0.75,
	domain.CategoryGarbageSanitation:  0.60,
	domain.CategoryPublicTransport:    0.60,
	domain.CategoryBuildingsHousing:   0.55,
	domain.CategoryParksEnvironment:   0.50,
}

// CategoryUrgency returns the base urgency of cat; uncategorized and unknown
// values get 0.5.
func CategoryUrgency(cat domain.Category) float64 {
	if u, ok := categoryUrgency[cat]; ok {
		return u
	}
	return 0.5
}

type severityTier struct {
	name  string
	value float64
	terms map[string]struct{}
}

// Ordered from most to least severe; the first tier with a match wins.
var severityTiers = buildTiers([]struct {
	name  string
	value float64
	words []string
}{
	{"critical", 1.0, []string{"urgent", "emergency", "dangerous", "danger", "accident", "death", "injury", "injured", "collapsed", "collapse", "fire", "flood", "flooded", "flooding", "electrocution", "sparking"}},
	{"high", 0.75, []string{"broken", "burst", "overflow", "overflowing", "blocked", "major", "severe", "damaged", "exposed", "large"}},
	{"medium", 0.5, []string{"poor", "bad", "issue", "problem", "needs", "requires", "repair"}},
	{"low", 0.25, []string{"minor", "small", "slight", "little", "maintenance", "request", "cosmetic"}},
})

func buildTiers(in []struct {
	name  string
	value float64
	words []string
}) []severityTier {
	out := make([]severityTier, 0, len(in))
	for _, t := range in {
		terms := make(map[string]struct{}, len(t.words))
		for _, w := range t.words {
			for _, tok := range textsim.Tokenize(w) {
				terms[tok] = struct{}{}
			}
		}
		out = append(out, severityTier{name: t.name, value: t.value, terms: terms})
	}
	return out
}

// Severity returns the most severe keyword tier found in text. Text without
// any cue is treated as medium.
func Severity(text string) (tier string, value float64) {
	tokens := textsim.Tokenize(text)
	for _, t := range severityTiers {
		for _, tok := range tokens {
			if _, ok := t.terms[tok]; ok {
				return t.name, t.value
			}
		}
	}
	return "default", 0.5
}
