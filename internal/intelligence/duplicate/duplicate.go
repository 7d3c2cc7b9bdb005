// Package duplicate links a new report to existing issues that describe the
// same problem at the same place.
//
// Candidates are first gated by great-circle distance; only the survivors are
// compared by text, over a TF-IDF vocabulary built from the report and those
// survivors.
package duplicate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/textsim"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/geo"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/utils"
)

const (
	RecommendDuplicate = "This appears to be a duplicate report. Consider updating the existing issue."
	RecommendUnique    = "This is a new unique issue."
)

// Config holds the gate radius and the blend of text and proximity.
type Config struct {
	RadiusMeters float64
	Threshold    float64
	TextWeight   float64
	GeoWeight    float64
}

// DefaultConfig returns 100 m, 0.65 and a 0.6/0.4 text/geo blend.
func DefaultConfig() Config {
	return Config{
		RadiusMeters: 100,
		Threshold:    0.65,
		TextWeight:   0.6,
		GeoWeight:    0.4,
	}
}

// Validate checks cfg.
func (c Config) Validate() error {
	if !(c.RadiusMeters > 0) || math.IsInf(c.RadiusMeters, 0) {
		return fmt.Errorf("duplicate: radius must be positive, got %v", c.RadiusMeters)
	}
	if !(c.Threshold > 0 && c.Threshold <= 1) {
		return fmt.Errorf("duplicate: threshold must be in (0,1], got %v", c.Threshold)
	}
	if c.TextWeight < 0 || c.GeoWeight < 0 || math.Abs(c.TextWeight+c.GeoWeight-1) > 1e-9 {
		return fmt.Errorf("duplicate: text and geo weights must be non-negative and sum to 1, got %v/%v",
			c.TextWeight, c.GeoWeight)
	}
	return nil
}

// Query is the report being checked. ID is zero for a report not yet stored.
type Query struct {
	ID       int64
	Text     string
	Location geo.Point
}

// Detector scores candidates against a query.
type Detector struct {
	cfg Config
}

// New returns a detector for cfg.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{cfg: cfg}, nil
}

// RadiusMeters is the geographic gate, for callers that prefetch candidates.
func (d *Detector) RadiusMeters() float64 {
	return d.cfg.RadiusMeters
}

type gated struct {
	issue    domain.Issue
	distance float64
}

// Check compares q against candidates. The query itself and closed
// (resolved or rejected) candidates are skipped, as is anything farther than
// the radius.
func (d *Detector) Check(q Query, candidates []domain.Issue) domain.DuplicateCheckResult {
	result := domain.DuplicateCheckResult{
		SimilarIssues:  []domain.SimilarIssue{},
		Recommendation: RecommendUnique,
	}

	near := make([]gated, 0, len(candidates))
	for _, c := range candidates {
		if q.ID != 0 && c.ID == q.ID {
			continue
		}
		if !c.Status.Open() && c.Status != "" {
			continue
		}
		dist := geo.Distance(q.Location, c.Location.Point())
		if dist > d.cfg.RadiusMeters {
			continue
		}
		near = append(near, gated{issue: c, distance: dist})
	}
	if len(near) == 0 {
		return result
	}

	corpus := make([]string, 0, len(near)+1)
	corpus = append(corpus, q.Text)
	for _, g := range near {
		corpus = append(corpus, g.issue.Text())
	}
	vz := textsim.NewVectorizer(corpus)
	qv := vz.Vectorize(q.Text)

	for _, g := range near {
		text := textsim.Cosine(qv, vz.Vectorize(g.issue.Text()))
		proximity := utils.Clamp01(1 - g.distance/d.cfg.RadiusMeters)
		score := utils.Clamp01(d.cfg.TextWeight*text + d.cfg.GeoWeight*proximity)

		if score > result.MaxSimilarity {
			result.MaxSimilarity = score
		}
		if score < d.cfg.Threshold {
			continue
		}
		result.SimilarIssues = append(result.SimilarIssues, domain.SimilarIssue{
			IssueID:         g.issue.ID,
			SimilarityScore: utils.RoundTo(score, 4),
			DistanceMeters:  utils.RoundTo(g.distance, 1),
			TextSimilarity:  utils.RoundTo(text, 4),
			ReportedAt:      g.issue.CreatedAt.UTC().Truncate(time.Second),
		})
	}

	sort.SliceStable(result.SimilarIssues, func(i, j int) bool {
		a, b := result.SimilarIssues[i], result.SimilarIssues[j]
		if a.SimilarityScore != b.SimilarityScore {
			return a.SimilarityScore > b.SimilarityScore
		}
		if a.DistanceMeters != b.DistanceMeters {
			return a.DistanceMeters < b.DistanceMeters
		}
		return a.IssueID < b.IssueID
	})

	result.MaxSimilarity = utils.RoundTo(result.MaxSimilarity, 4)
	if len(result.SimilarIssues) > 0 {
		result.IsDuplicate = true
		result.Recommendation = RecommendDuplicate
	}
	return result
}
