// Package pipeline turns a validated input record into a risk
// prediction with feature attributions. Each Predict call is stateless
// and synchronous; the shared model and explainer are read-only, so a
// single Predictor is safe for concurrent callers.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/clinsight/reop/pkg/explain"
	"github.com/clinsight/reop/pkg/model"
	"github.com/clinsight/reop/pkg/schema"
)

// riskThreshold binarizes the predicted probability. Strictly greater
// maps to High, so exactly 0.5 stays Low.
const riskThreshold = 0.5

// RiskLabel is the binarized decision.
type RiskLabel string

const (
	RiskLow  RiskLabel = "Low"
	RiskHigh RiskLabel = "High"
)

// FieldWeight aliases the explainer pairing so API consumers only deal
// with pipeline types.
type FieldWeight = explain.FieldWeight

// Result is the full outcome of one prediction request. Derived per
// call, never persisted.
type Result struct {
	Probability float64   `json:"probability" yaml:"probability"`
	RiskLabel   RiskLabel `json:"risk_label" yaml:"risk_label"`
	Baseline    float64   `json:"baseline" yaml:"baseline"`
	// GlobalImportance ranks fields by contribution magnitude, descending.
	GlobalImportance []FieldWeight `json:"global_importance" yaml:"global_importance"`
	// LocalContribution holds signed contributions in registry order.
	LocalContribution []FieldWeight `json:"local_contribution" yaml:"local_contribution"`
}

// Predictor binds the field registry to the loaded classifier and its
// explainer. Build once at startup, share by reference.
type Predictor struct {
	forest    *model.Forest
	explainer *explain.TreeExplainer
	fields    []schema.FieldSpec
}

// New builds a predictor over a loaded forest.
func New(f *model.Forest) *Predictor {
	return &Predictor{
		forest:    f,
		explainer: explain.New(f),
		fields:    schema.Specs(),
	}
}

// Baseline returns the model's expected positive-class probability.
func (p *Predictor) Baseline() float64 {
	return p.explainer.Baseline()
}

// vectorize validates the record and assembles the feature vector in
// registry order. All validation happens here, before any inference.
func (p *Predictor) vectorize(record map[string]int) ([]float64, error) {
	for name := range record {
		if _, ok := schema.Lookup(name); !ok {
			return nil, &Error{
				Kind:  KindUnknownField,
				Field: name,
				Msg:   fmt.Sprintf("unknown field: %q", name),
			}
		}
	}

	x := make([]float64, len(p.fields))
	for i, s := range p.fields {
		v, ok := record[s.Name]
		if !ok {
			return nil, &Error{
				Kind:  KindIncompleteInput,
				Field: s.Name,
				Msg:   fmt.Sprintf("missing field: %q", s.Name),
			}
		}
		if err := schema.Validate(s.Name, v); err != nil {
			var oor *schema.OutOfRangeError
			if errors.As(err, &oor) {
				return nil, &Error{
					Kind:  KindOutOfRange,
					Field: s.Name,
					Msg:   oor.Error(),
					cause: err,
				}
			}
			return nil, &Error{Kind: KindUnknownField, Field: s.Name, cause: err}
		}
		x[i] = float64(v)
	}
	return x, nil
}

// Predict runs the full inference and explanation pipeline on a single
// input record.
func (p *Predictor) Predict(record map[string]int) (*Result, error) {
	x, err := p.vectorize(record)
	if err != nil {
		return nil, err
	}

	prob, err := p.forest.PredictPositive(x)
	if err != nil {
		return nil, &Error{Kind: KindInferenceFailure, cause: err}
	}

	attr, err := p.explainer.Explain(x)
	if err != nil {
		return nil, &Error{Kind: KindInferenceFailure, cause: err}
	}

	label := RiskLow
	if prob > riskThreshold {
		label = RiskHigh
	}

	return &Result{
		Probability:       prob,
		RiskLabel:         label,
		Baseline:          attr.Baseline,
		GlobalImportance:  attr.Ranked(),
		LocalContribution: attr.Local(),
	}, nil
}
