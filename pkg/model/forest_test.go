package model

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsight/reop/pkg/schema"
)

func testForest(t *testing.T) *Forest {
	t.Helper()
	f, err := Load(filepath.Join("testdata", "forest.json"), schema.Names())
	require.NoError(t, err)
	return f
}

func TestLoad(t *testing.T) {
	f := testForest(t)
	assert.Equal(t, schema.Count, f.NumFeatures())
	assert.Equal(t, 1, f.PositiveIndex())
	assert.Len(t, f.Trees, 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.json"), schema.Names())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestLoadFeatureMismatch(t *testing.T) {
	want := schema.Names()
	want[0], want[1] = want[1], want[0]
	_, err := Load(filepath.Join("testdata", "forest.json"), want)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestLoadTruncatedArtifact(t *testing.T) {
	_, err := parse([]byte(`{"format":"reop.forest","version":1,"features":[`), schema.Names())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestLoadWrongFormat(t *testing.T) {
	_, err := parse([]byte(`{"format":"other","version":9}`), schema.Names())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestNewRejectsBadStructure(t *testing.T) {
	names := schema.Names()

	tests := map[string]Tree{
		"empty tree": {},
		"ragged arrays": {
			Feature:   []int{Leaf},
			Threshold: []float64{0},
			Left:      []int{Leaf},
			Right:     []int{Leaf},
			Value:     [][]float64{},
		},
		"split feature out of range": {
			Feature:   []int{99, Leaf, Leaf},
			Threshold: []float64{0.5, 0, 0},
			Left:      []int{1, Leaf, Leaf},
			Right:     []int{2, Leaf, Leaf},
			Value:     [][]float64{{0.5, 0.5}, {1, 0}, {0, 1}},
		},
		"child points backwards": {
			Feature:   []int{0, Leaf, Leaf},
			Threshold: []float64{0.5, 0, 0},
			Left:      []int{0, Leaf, Leaf},
			Right:     []int{2, Leaf, Leaf},
			Value:     [][]float64{{0.5, 0.5}, {1, 0}, {0, 1}},
		},
	}

	for name, tree := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New(names, []int{0, 1}, []Tree{tree})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrModelUnavailable))
		})
	}
}

func TestNewRejectsNonBinaryClasses(t *testing.T) {
	leaf := Tree{
		Feature:   []int{Leaf},
		Threshold: []float64{0},
		Left:      []int{Leaf},
		Right:     []int{Leaf},
		Value:     [][]float64{{0.2, 0.3, 0.5}},
	}
	_, err := New(schema.Names(), []int{0, 1, 2}, []Tree{leaf})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestPredictProba(t *testing.T) {
	f := testForest(t)

	x := make([]float64, schema.Count)
	x[0] = 1 // Sex=1 routes tree one to its positive leaf
	p, err := f.PredictPositive(x)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, p, 1e-12)

	x[0] = 0
	p, err = f.PredictPositive(x)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, p, 1e-12)
}

func TestPredictProbaSumsToOne(t *testing.T) {
	f := testForest(t)

	x := make([]float64, schema.Count)
	probs, err := f.PredictProba(x)
	require.NoError(t, err)
	require.Len(t, probs, 2)

	sum := 0.0
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestPredictProbaWrongWidth(t *testing.T) {
	f := testForest(t)
	_, err := f.PredictProba([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestDefaultArtifact(t *testing.T) {
	f, err := Default(schema.Names())
	require.NoError(t, err)

	// every field at its minimum, the form's default state
	x := make([]float64, schema.Count)
	for i, s := range schema.Specs() {
		x[i] = float64(s.Min)
	}
	p, err := f.PredictPositive(x)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(p))
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}
