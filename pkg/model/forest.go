// Package model loads a serialized tree ensemble classifier and scores
// single-row feature vectors against it. The artifact is read once at
// startup and never mutated, so a loaded Forest is safe for concurrent use.
package model

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

const (
	artifactFormat  = "reop.forest"
	artifactVersion = 1

	positiveClass = 1

	// Leaf marks a node with no split in a tree's Feature array.
	Leaf = -1
)

// ErrModelUnavailable indicates the classifier artifact could not be
// loaded. Fatal at startup, never retried.
var ErrModelUnavailable = errors.New("model unavailable")

// Tree is one estimator stored as flat node arrays indexed by node id.
// Node 0 is the root. Feature[i] == Leaf means node i is terminal;
// otherwise a sample goes left when x[Feature[i]] <= Threshold[i].
// Value[i] holds the per-class probability distribution at node i
// (internal nodes included, the explainer walks them).
type Tree struct {
	Feature   []int       `json:"feature"`
	Threshold []float64   `json:"threshold"`
	Left      []int       `json:"left"`
	Right     []int       `json:"right"`
	Value     [][]float64 `json:"value"`
}

// Forest is a loaded classification ensemble. Probabilities are the
// average of per-tree leaf distributions.
type Forest struct {
	Format   string   `json:"format"`
	Version  int      `json:"version"`
	Features []string `json:"features"`
	Classes  []int    `json:"classes"`
	Trees    []Tree   `json:"trees"`

	posIdx int
}

// New validates a forest against the expected feature list and prepares
// it for scoring. The feature names must match in both content and order.
func New(features []string, classes []int, trees []Tree) (*Forest, error) {
	f := &Forest{
		Format:   artifactFormat,
		Version:  artifactVersion,
		Features: features,
		Classes:  classes,
		Trees:    trees,
	}
	if err := f.check(features); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads a forest artifact from disk and validates it against the
// expected feature list. Any failure wraps ErrModelUnavailable.
func Load(path string, features []string) (*Forest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrModelUnavailable, "reading artifact %s: %v", path, err)
	}
	return parse(b, features)
}

func parse(b []byte, features []string) (*Forest, error) {
	var f Forest
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrapf(ErrModelUnavailable, "parsing artifact: %v", err)
	}
	if f.Format != artifactFormat || f.Version != artifactVersion {
		return nil, errors.Wrapf(ErrModelUnavailable,
			"unsupported artifact format %q version %d", f.Format, f.Version)
	}
	if err := f.check(features); err != nil {
		return nil, err
	}
	return &f, nil
}

// check verifies structural integrity and the feature-order contract,
// and resolves the positive class column.
func (f *Forest) check(features []string) error {
	if len(f.Features) != len(features) {
		return errors.Wrapf(ErrModelUnavailable,
			"artifact has %d features, expected %d", len(f.Features), len(features))
	}
	for i, name := range features {
		if f.Features[i] != name {
			return errors.Wrapf(ErrModelUnavailable,
				"artifact feature %d is %q, expected %q", i, f.Features[i], name)
		}
	}

	f.posIdx = -1
	for i, c := range f.Classes {
		if c == positiveClass {
			f.posIdx = i
		}
	}
	if len(f.Classes) != 2 || f.posIdx < 0 {
		return errors.Wrapf(ErrModelUnavailable,
			"artifact classes %v are not a binary {0,1} problem", f.Classes)
	}

	if len(f.Trees) == 0 {
		return errors.Wrap(ErrModelUnavailable, "artifact has no trees")
	}
	for ti := range f.Trees {
		if err := f.Trees[ti].check(len(features), len(f.Classes)); err != nil {
			return errors.Wrapf(err, "tree %d", ti)
		}
	}
	return nil
}

func (t *Tree) check(nFeatures, nClasses int) error {
	n := len(t.Feature)
	if n == 0 {
		return errors.Wrap(ErrModelUnavailable, "empty tree")
	}
	if len(t.Threshold) != n || len(t.Left) != n || len(t.Right) != n || len(t.Value) != n {
		return errors.Wrap(ErrModelUnavailable, "inconsistent node array lengths")
	}
	for i := 0; i < n; i++ {
		if len(t.Value[i]) != nClasses {
			return errors.Wrapf(ErrModelUnavailable, "node %d value width != classes", i)
		}
		if t.Feature[i] == Leaf {
			continue
		}
		if t.Feature[i] < 0 || t.Feature[i] >= nFeatures {
			return errors.Wrapf(ErrModelUnavailable, "node %d split feature %d out of range", i, t.Feature[i])
		}
		if t.Left[i] <= i || t.Left[i] >= n || t.Right[i] <= i || t.Right[i] >= n {
			return errors.Wrapf(ErrModelUnavailable, "node %d children out of range", i)
		}
	}
	return nil
}

// NumFeatures returns the width of the feature vector the forest expects.
func (f *Forest) NumFeatures() int {
	return len(f.Features)
}

// PositiveIndex returns the class column holding the positive
// ("reoperation") probability.
func (f *Forest) PositiveIndex() int {
	return f.posIdx
}

// leaf walks a tree for x and returns the terminal node id.
func (t *Tree) leaf(x []float64) int {
	i := 0
	for t.Feature[i] != Leaf {
		if x[t.Feature[i]] <= t.Threshold[i] {
			i = t.Left[i]
		} else {
			i = t.Right[i]
		}
	}
	return i
}

// PredictProba returns the per-class probabilities for a single feature
// vector in artifact order.
func (f *Forest) PredictProba(x []float64) ([]float64, error) {
	if len(x) != len(f.Features) {
		return nil, errors.Errorf("feature vector has %d values, expected %d", len(x), len(f.Features))
	}
	probs := make([]float64, len(f.Classes))
	for ti := range f.Trees {
		t := &f.Trees[ti]
		v := t.Value[t.leaf(x)]
		for c := range probs {
			probs[c] += v[c]
		}
	}
	for c := range probs {
		probs[c] /= float64(len(f.Trees))
	}
	return probs, nil
}

// PredictPositive returns the probability of the positive class.
func (f *Forest) PredictPositive(x []float64) (float64, error) {
	probs, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	return probs[f.posIdx], nil
}
