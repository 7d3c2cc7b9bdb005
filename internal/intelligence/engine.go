// Package intelligence wires the classifier, priority predictor, duplicate
// detector and the two analytics passes behind a single Engine handle.
//
// An Engine is built once at startup and is safe for concurrent use: its
// profiles and weights never change after New returns, and every call works
// only on the inputs it is given.
package intelligence

import (
	"errors"
	"fmt"
	"time"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/classifier"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/duplicate"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/hotspot"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/model"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/priority"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/solution"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/trend"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/geo"
)

// ErrInvalidConfig is returned by New when any part of Config is unusable.
var ErrInvalidConfig = errors.New("intelligence: invalid config")

// Config gathers every tunable of the pipeline.
type Config struct {
	Classifier          classifier.Config
	ProfilesPath        string
	ClassifierModelPath string

	Priority          priority.Config
	PriorityWeights   priority.Weights
	PriorityModelPath string

	// DensityRadiusMeters is the area counted for the priority density factor.
	DensityRadiusMeters float64

	Duplicate duplicate.Config
	Hotspot   hotspot.Config
	Trend     trend.Config
}

// DefaultConfig returns the compiled-in defaults.
func DefaultConfig() Config {
	return Config{
		Classifier:          classifier.DefaultConfig(),
		Priority:            priority.DefaultConfig(),
		PriorityWeights:     priority.DefaultWeights(),
		DensityRadiusMeters: 500,
		Duplicate:           duplicate.DefaultConfig(),
		Hotspot:             hotspot.DefaultConfig(),
		Trend:               trend.DefaultConfig(),
	}
}

// Engine is the explicit pipeline handle passed to services.
type Engine struct {
	classifier    *classifier.Classifier
	tagger        *classifier.Heuristic
	priority      *priority.Predictor
	duplicates    *duplicate.Detector
	hotspots      *hotspot.Analyzer
	trends        *trend.Forecaster
	densityRadius float64
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
}

// New builds an Engine, loading profile and model files named in cfg.
func New(cfg Config) (*Engine, error) {
	if !(cfg.DensityRadiusMeters > 0) {
		return nil, invalid(fmt.Errorf("density radius must be positive, got %v", cfg.DensityRadiusMeters))
	}

	profiles := classifier.DefaultProfiles()
	if cfg.ProfilesPath != "" {
		p, err := classifier.LoadProfiles(cfg.ProfilesPath)
		if err != nil {
			return nil, invalid(err)
		}
		profiles = p
	}
	heuristic, err := classifier.NewHeuristic(profiles, cfg.Classifier.ImageWeight)
	if err != nil {
		return nil, invalid(err)
	}

	var catScorer classifier.Scorer = heuristic
	if cfg.ClassifierModelPath != "" {
		f, err := model.Load(cfg.ClassifierModelPath)
		if err != nil {
			return nil, invalid(err)
		}
		if catScorer, err = classifier.NewLearned(f, heuristic); err != nil {
			return nil, invalid(err)
		}
	}
	cls, err := classifier.New(catScorer, cfg.Classifier.MinScore)
	if err != nil {
		return nil, invalid(err)
	}

	var prioScorer priority.Scorer
	if cfg.PriorityModelPath != "" {
		f, err := model.Load(cfg.PriorityModelPath)
		if err != nil {
			return nil, invalid(err)
		}
		if prioScorer, err = priority.NewLearned(f); err != nil {
			return nil, invalid(err)
		}
	} else {
		if prioScorer, err = priority.NewHeuristic(cfg.PriorityWeights); err != nil {
			return nil, invalid(err)
		}
	}
	pred, err := priority.New(prioScorer, cfg.Priority)
	if err != nil {
		return nil, invalid(err)
	}

	dup, err := duplicate.New(cfg.Duplicate)
	if err != nil {
		return nil, invalid(err)
	}
	hs, err := hotspot.New(cfg.Hotspot)
	if err != nil {
		return nil, invalid(err)
	}
	tr, err := trend.New(cfg.Trend)
	if err != nil {
		return nil, invalid(err)
	}

	return &Engine{
		classifier:    cls,
		tagger:        heuristic,
		priority:      pred,
		duplicates:    dup,
		hotspots:      hs,
		trends:        tr,
		densityRadius: cfg.DensityRadiusMeters,
	}, nil
}

// CandidateRadius is the radius callers should prefetch nearby issues with
// before calling Assess: it covers both the duplicate gate and the density
// area.
func (e *Engine) CandidateRadius() float64 {
	if r := e.duplicates.RadiusMeters(); r > e.densityRadius {
		return r
	}
	return e.densityRadius
}

// Models names the active classifier and priority scorers.
func (e *Engine) Models() (classifierName, priorityName string) {
	return e.classifier.ScorerName(), e.priority.ScorerName()
}

// Classify runs the category classifier alone.
func (e *Engine) Classify(text string, imageFeatures []float64) domain.Classification {
	return e.classifier.Classify(classifier.Input{Text: text, ImageFeatures: imageFeatures})
}

// Subcategory tags text with the heaviest matching keyword of cat.
func (e *Engine) Subcategory(cat domain.Category, text string) string {
	return e.tagger.Subcategory(cat, text)
}

// Prioritize scores an issue of category cat. nearby is used for the density
// factor; only open issues within the density radius count.
func (e *Engine) Prioritize(cat domain.Category, text string, at geo.Point, reportedAt time.Time, nearby []domain.Issue, now time.Time) domain.PriorityResult {
	return e.priority.Predict(priority.Input{
		Category:   cat,
		Text:       text,
		ReportedAt: reportedAt,
		Now:        now,
		NearbyOpen: e.countOpenNear(at, nearby, 0),
	})
}

// CheckDuplicates runs the duplicate detector. selfID is skipped; pass 0 for
// a report that is not stored yet.
func (e *Engine) CheckDuplicates(selfID int64, text string, at geo.Point, candidates []domain.Issue) domain.DuplicateCheckResult {
	return e.duplicates.Check(duplicate.Query{ID: selfID, Text: text, Location: at}, candidates)
}

// Assess runs classification, priority, duplicate detection and the solution
// lookup for a new report against its prefetched neighbours.
func (e *Engine) Assess(report domain.IssueReport, nearby []domain.Issue, now time.Time) domain.Insights {
	return e.assess(0, report.Text(), report.ImageFeatures, report.Location.Point(), report.CreatedAt, nearby, now)
}

// Reassess recomputes the insights of a stored issue.
func (e *Engine) Reassess(issue domain.Issue, nearby []domain.Issue, now time.Time) domain.Insights {
	return e.assess(issue.ID, issue.Text(), issue.Images, issue.Location.Point(), issue.CreatedAt, nearby, now)
}

func (e *Engine) assess(id int64, text string, images []float64, at geo.Point, reportedAt time.Time, nearby []domain.Issue, now time.Time) domain.Insights {
	cls := e.Classify(text, images)

	prio := e.priority.Predict(priority.Input{
		Category:   cls.Category,
		Text:       text,
		ReportedAt: reportedAt,
		Now:        now,
		NearbyOpen: e.countOpenNear(at, nearby, id),
	})

	return domain.Insights{
		Classification: cls,
		Priority:       prio,
		Duplicate:      e.CheckDuplicates(id, text, at, nearby),
		Solution: solution.Recommend(solution.Input{
			Category:    cls.Category,
			Subcategory: cls.Subcategory,
			Level:       prio.Level,
			Self:        id,
			Nearby:      nearby,
		}),
	}
}

func (e *Engine) countOpenNear(at geo.Point, issues []domain.Issue, self int64) int {
	n := 0
	for _, is := range issues {
		if self != 0 && is.ID == self {
			continue
		}
		if !is.Status.Open() {
			continue
		}
		if geo.Distance(at, is.Location.Point()) <= e.densityRadius {
			n++
		}
	}
	return n
}

// Hotspots runs the hotspot analysis over a snapshot.
func (e *Engine) Hotspots(issues []domain.Issue) domain.HotspotReport {
	return e.hotspots.Analyze(issues)
}

// Trends forecasts the week containing asOf from a snapshot.
func (e *Engine) Trends(issues []domain.Issue, asOf time.Time) domain.TrendPrediction {
	return e.trends.Forecast(issues, asOf)
}
