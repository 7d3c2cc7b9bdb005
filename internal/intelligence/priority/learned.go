package priority

import (
	"fmt"

	"github.com/devrana9696-ux/civic-issue-reporter/internal/intelligence/model"
)

// OutputScore is the model output key used by Learned.
const OutputScore = "score"

// Learned scores factors with a linear model trained offline. With the
// logistic link the output is read as a probability and scaled to 0-100;
// with the identity link it is taken as the score itself.
type Learned struct {
	name string
	m    model.Linear
}

// NewLearned wraps f, which must have a "score" output.
func NewLearned(f *model.File) (*Learned, error) {
	if f == nil {
		return nil, fmt.Errorf("priority: nil model")
	}
	m, ok := f.Output(OutputScore)
	if !ok {
		return nil, fmt.Errorf("priority: model %s has no %q output", f.Name, OutputScore)
	}
	return &Learned{name: f.Name, m: m}, nil
}

func (l *Learned) Name() string { return l.name }

func (l *Learned) Score(f Factors) float64 {
	v := l.m.Predict(f.Map())
	if l.m.Link == model.LinkLogistic {
		return v * 100
	}
	return v
}
