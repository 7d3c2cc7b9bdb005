// Package classifier assigns one of the fixed issue categories to a report.
package classifier

import (
	"fmt"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/textsim"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/utils"
)

// Input is what the classifier looks at.
type Input struct {
	Text          string
	ImageFeatures []float64
}

// Score is a scorer's raw evidence for one category.
type Score struct {
	Category    domain.Category
	Value       float64
	Subcategory string
}

// Scorer produces one Score per category, in domain.Categories() order.
type Scorer interface {
	Name() string
	Score(in Input) []Score
}

// Thresholder is implemented by scorers whose outputs carry their own scale,
// such as probabilities, and so need their own decision threshold.
type Thresholder interface {
	Threshold() (float64, bool)
}

// Config tunes the heuristic scorer and the decision rule.
type Config struct {
	// MinScore is the best raw score below which the result is uncategorized.
	// A scorer implementing Thresholder overrides it.
	MinScore float64
	// ImageWeight scales each image feature affinity.
	ImageWeight float64
}

// DefaultConfig returns the defaults used by the service.
func DefaultConfig() Config {
	return Config{
		MinScore:    1.0,
		ImageWeight: 2.0,
	}
}

// Classifier turns scorer output into a Classification.
type Classifier struct {
	scorer   Scorer
	minScore float64
}

// New returns a classifier deciding over scorer's output.
func New(scorer Scorer, minScore float64) (*Classifier, error) {
	if scorer == nil {
		return nil, fmt.Errorf("classifier: nil scorer")
	}
	if minScore < 0 {
		return nil, fmt.Errorf("classifier: negative minimum score %v", minScore)
	}
	if t, ok := scorer.(Thresholder); ok {
		if v, ok := t.Threshold(); ok {
			minScore = v
		}
	}
	return &Classifier{scorer: scorer, minScore: minScore}, nil
}

// MinScore is the threshold in effect.
func (c *Classifier) MinScore() float64 {
	return c.minScore
}

// ScorerName returns the name of the underlying scorer.
func (c *Classifier) ScorerName() string {
	return c.scorer.Name()
}

// Classify picks the best-scoring category. Exact ties go to the category
// that sorts first. A best score under the minimum yields uncategorized with
// zero confidence.
func (c *Classifier) Classify(in Input) domain.Classification {
	scores := c.scorer.Score(in)

	result := domain.Classification{
		Category: domain.CategoryUncategorized,
		Scores:   make(map[domain.Category]float64, len(scores)),
		Model:    c.scorer.Name(),
	}

	bestIdx, secondVal := -1, 0.0
	for i, s := range scores {
		result.Scores[s.Category] = utils.RoundTo(s.Value, 4)
		switch {
		case bestIdx < 0 || s.Value > scores[bestIdx].Value ||
			(s.Value == scores[bestIdx].Value && s.Category < scores[bestIdx].Category):
			if bestIdx >= 0 {
				secondVal = scores[bestIdx].Value
			}
			bestIdx = i
		case s.Value > secondVal:
			secondVal = s.Value
		}
	}
	if bestIdx < 0 {
		return result
	}

	best := scores[bestIdx]
	if best.Value < c.minScore || best.Value <= 0 {
		return result
	}

	result.Category = best.Category
	result.Subcategory = best.Subcategory
	result.Confidence = utils.RoundTo(utils.Clamp01((best.Value-secondVal)/(best.Value+1)), 4)
	return result
}

// Heuristic scores categories by weighted keyword overlap plus image
// feature affinity.
type Heuristic struct {
	profiles    Profiles
	imageWeight float64
}

// NewHeuristic validates profiles and returns a keyword scorer.
func NewHeuristic(profiles Profiles, imageWeight float64) (*Heuristic, error) {
	if imageWeight < 0 {
		return nil, fmt.Errorf("classifier: negative image weight %v", imageWeight)
	}
	p, err := profiles.normalise()
	if err != nil {
		return nil, err
	}
	return &Heuristic{profiles: p, imageWeight: imageWeight}, nil
}

func (h *Heuristic) Name() string { return "keyword-heuristic" }

// Score sums the weight of every profile keyword present in the text (each
// keyword counts once) and adds ImageWeight times the clamped image affinity.
func (h *Heuristic) Score(in Input) []Score {
	present := make(map[string]struct{})
	for _, tok := range textsim.Tokenize(in.Text) {
		present[tok] = struct{}{}
	}

	cats := domain.Categories()
	out := make([]Score, len(cats))
	for i, cat := range cats {
		s := Score{Category: cat}
		topWeight := 0.0
		for _, k := range h.profiles[cat] {
			if _, ok := present[k.Term]; !ok {
				continue
			}
			s.Value += k.Weight
			if k.Weight > topWeight {
				topWeight = k.Weight
				s.Subcategory = k.Subcategory
			}
		}
		if i < len(in.ImageFeatures) {
			s.Value += h.imageWeight * utils.Clamp01(in.ImageFeatures[i])
		}
		out[i] = s
	}
	return out
}

// Subcategory returns the tag of the heaviest keyword of cat found in text.
func (h *Heuristic) Subcategory(cat domain.Category, text string) string {
	for _, s := range h.Score(Input{Text: text}) {
		if s.Category == cat {
			return s.Subcategory
		}
	}
	return ""
}
