package classifier

import (
	"fmt"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/domain"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/model"
	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/textsim"
	"github.com/devrana9696-ux/civic-issue-reporter/pkg/utils"
)

// Learned scores categories with one linear model per category. Features are
// "tok:<term>" token counts and "img:<category>" image affinities. Subcategory
// tags are borrowed from the keyword profiles when a tagger is set.
type Learned struct {
	file   *model.File
	tagger *Heuristic
}

// NewLearned wraps a loaded model file. Every output key must be a category
// identifier; categories without an output score 0.
func NewLearned(f *model.File, tagger *Heuristic) (*Learned, error) {
	if f == nil {
		return nil, fmt.Errorf("classifier: nil model")
	}
	for key := range f.Outputs {
		if domain.Category(key).Index() < 0 {
			return nil, fmt.Errorf("classifier: model %s has output for unknown category %q", f.Name, key)
		}
	}
	return &Learned{file: f, tagger: tagger}, nil
}

func (l *Learned) Name() string { return l.file.Name }

// Threshold is the decision threshold the model file calls for, if any.
func (l *Learned) Threshold() (float64, bool) {
	return l.file.Threshold()
}

// Features builds the model input for in.
func Features(in Input) map[string]float64 {
	features := make(map[string]float64)
	for _, tok := range textsim.Tokenize(in.Text) {
		features["tok:"+tok]++
	}
	for i, cat := range domain.Categories() {
		if i < len(in.ImageFeatures) {
			features["img:"+string(cat)] = utils.Clamp01(in.ImageFeatures[i])
		}
	}
	return features
}

func (l *Learned) Score(in Input) []Score {
	features := Features(in)

	var tags []Score
	if l.tagger != nil {
		tags = l.tagger.Score(Input{Text: in.Text})
	}

	cats := domain.Categories()
	out := make([]Score, len(cats))
	for i, cat := range cats {
		out[i] = Score{Category: cat}
		if m, ok := l.file.Output(string(cat)); ok {
			out[i].Value = m.Predict(features)
		}
		if tags != nil {
			out[i].Subcategory = tags[i].Subcategory
		}
	}
	return out
}
