// Package model holds the learned scorers that can replace the heuristic
// classifier and priority predictor. Coefficients are trained offline and
// loaded from JSON at startup; nothing is fitted at request time.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// Link maps the linear predictor onto the output scale.
type Link string

const (
	LinkIdentity Link = "identity"
	LinkLogistic Link = "logistic"
)

// Linear is a sparse linear model over named features.
type Linear struct {
	Intercept float64            `json:"intercept"`
	Weights   map[string]float64 `json:"weights"`
	Link      Link               `json:"link,omitempty"`
}

// Predict evaluates the model. Features without a weight are ignored.
// Terms are summed in key order so the result does not depend on map
// iteration.
func (m Linear) Predict(features map[string]float64) float64 {
	keys := make([]string, 0, len(features))
	for k := range features {
		if _, ok := m.Weights[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	z := m.Intercept
	for _, k := range keys {
		z += m.Weights[k] * features[k]
	}

	if m.Link == LinkLogistic {
		return 1 / (1 + math.Exp(-z))
	}
	return z
}

func (m Linear) validate() error {
	switch m.Link {
	case "", LinkIdentity, LinkLogistic:
	default:
		return fmt.Errorf("unknown link %q", m.Link)
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("intercept is not finite")
	}
	for k, w := range m.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("weight %q is not finite", k)
		}
	}
	return nil
}

// File is the on-disk format: one named set of linear models, keyed by
// output (a category identifier, or "score" for the priority model).
type File struct {
	Name    string            `json:"name"`
	Version string            `json:"version,omitempty"`
	Outputs map[string]Linear `json:"outputs"`
	// MinScore, when set, is the decision threshold the model was calibrated
	// for.
	MinScore *float64 `json:"min_score,omitempty"`
}

// probabilityThreshold is the decision threshold for models whose outputs
// are all probabilities and that do not declare one.
const probabilityThreshold = 0.5

// Threshold returns the decision threshold for this model's outputs. ok is
// false when the caller's own threshold should apply.
func (f *File) Threshold() (threshold float64, ok bool) {
	if f.MinScore != nil {
		return *f.MinScore, true
	}
	for _, m := range f.Outputs {
		if m.Link != LinkLogistic {
			return 0, false
		}
	}
	return probabilityThreshold, true
}

// Output returns the model for key.
func (f *File) Output(key string) (Linear, bool) {
	m, ok := f.Outputs[key]
	return m, ok
}

// Load reads and validates a model file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a model file body.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("model: failed to decode: %w", err)
	}
	if f.Name == "" {
		return nil, fmt.Errorf("model: missing name")
	}
	if len(f.Outputs) == 0 {
		return nil, fmt.Errorf("model: %s has no outputs", f.Name)
	}
	if ms := f.MinScore; ms != nil && (math.IsNaN(*ms) || math.IsInf(*ms, 0) || *ms < 0) {
		return nil, fmt.Errorf("model: %s min_score must be a finite non-negative number", f.Name)
	}
	for key, m := range f.Outputs {
		if err := m.validate(); err != nil {
			return nil, fmt.Errorf("model: %s output %q: %w", f.Name, key, err)
		}
	}
	return &f, nil
}
