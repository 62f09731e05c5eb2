// Package explain produces feature attributions for forest predictions:
// per-feature signed contributions plus a baseline expected value, so
// that baseline + sum(contributions) reconstructs the predicted
// positive-class probability exactly.
package explain

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/clinsight/reop/pkg/model"
)

// FieldWeight pairs a field name with an attribution weight.
type FieldWeight struct {
	Field  string  `json:"field" yaml:"field"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Attribution is the explanation of a single prediction.
type Attribution struct {
	// Baseline is the expected positive-class probability before any
	// feature is observed (mean root value across trees).
	Baseline float64
	// Contributions holds the signed per-feature contribution in
	// artifact feature order.
	Contributions []float64

	features []string
}

// TreeExplainer attributes forest predictions by walking each decision
// path: every split moves the running node value, and that movement is
// credited to the split feature. Read-only over the forest, safe for
// concurrent use.
type TreeExplainer struct {
	forest *model.Forest
}

// New constructs an explainer over a loaded forest.
func New(f *model.Forest) *TreeExplainer {
	return &TreeExplainer{forest: f}
}

// Baseline returns the expected positive-class probability of the
// forest: the mean root value across trees, the zero-point every
// attribution starts from.
func (e *TreeExplainer) Baseline() float64 {
	pos := e.forest.PositiveIndex()
	var b float64
	for ti := range e.forest.Trees {
		b += e.forest.Trees[ti].Value[0][pos]
	}
	return b / float64(len(e.forest.Trees))
}

// Explain computes the attribution for a single feature vector in
// artifact order.
func (e *TreeExplainer) Explain(x []float64) (*Attribution, error) {
	f := e.forest
	if len(x) != f.NumFeatures() {
		return nil, errors.Errorf("feature vector has %d values, expected %d", len(x), f.NumFeatures())
	}

	pos := f.PositiveIndex()
	a := &Attribution{
		Contributions: make([]float64, f.NumFeatures()),
		features:      f.Features,
	}

	for ti := range f.Trees {
		t := &f.Trees[ti]
		a.Baseline += t.Value[0][pos]

		i := 0
		for t.Feature[i] != model.Leaf {
			next := t.Right[i]
			if x[t.Feature[i]] <= t.Threshold[i] {
				next = t.Left[i]
			}
			a.Contributions[t.Feature[i]] += t.Value[next][pos] - t.Value[i][pos]
			i = next
		}
	}

	n := float64(len(f.Trees))
	a.Baseline /= n
	for j := range a.Contributions {
		a.Contributions[j] /= n
	}
	return a, nil
}

// Local returns the signed per-feature contributions paired with field
// names, in artifact order.
func (a *Attribution) Local() []FieldWeight {
	out := make([]FieldWeight, len(a.Contributions))
	for i, c := range a.Contributions {
		out[i] = FieldWeight{Field: a.features[i], Weight: c}
	}
	return out
}

// Ranked returns per-feature contribution magnitudes sorted descending.
// Ties keep artifact order so the ranking is deterministic.
func (a *Attribution) Ranked() []FieldWeight {
	out := make([]FieldWeight, len(a.Contributions))
	for i, c := range a.Contributions {
		out[i] = FieldWeight{Field: a.features[i], Weight: math.Abs(c)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out
}

// Sum returns baseline plus all contributions, which equals the
// predicted positive-class probability.
func (a *Attribution) Sum() float64 {
	s := a.Baseline
	for _, c := range a.Contributions {
		s += c
	}
	return s
}
