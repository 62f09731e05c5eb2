package pipeline

import (
	"context"
	"math"
	"runtime"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// CohortStats summarizes the model over a reference cohort: the average
// predicted probability (the population analog of the attribution
// baseline) and the mean contribution magnitude per feature.
type CohortStats struct {
	Size            int           `json:"size" yaml:"size"`
	MeanProbability float64       `json:"mean_probability" yaml:"mean_probability"`
	Importance      []FieldWeight `json:"importance" yaml:"importance"`
}

// ScoreCohort scores and explains every cohort row. Rows are
// independent, so the work fans out across CPUs.
func (p *Predictor) ScoreCohort(ctx context.Context, rows [][]float64) (*CohortStats, error) {
	if len(rows) == 0 {
		return nil, errors.New("empty cohort")
	}

	probs := make([]float64, len(rows))
	contribs := make([][]float64, len(rows))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, row := range rows {
		g.Go(func() error {
			prob, err := p.forest.PredictPositive(row)
			if err != nil {
				return errors.Wrapf(err, "cohort row %d", i)
			}
			attr, err := p.explainer.Explain(row)
			if err != nil {
				return errors.Wrapf(err, "cohort row %d", i)
			}
			probs[i] = prob
			contribs[i] = attr.Contributions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &CohortStats{Size: len(rows)}
	mean := make([]float64, len(p.fields))
	for i := range rows {
		stats.MeanProbability += probs[i]
		for j, c := range contribs[i] {
			mean[j] += math.Abs(c)
		}
	}
	stats.MeanProbability /= float64(len(rows))

	stats.Importance = make([]FieldWeight, len(p.fields))
	for j, s := range p.fields {
		stats.Importance[j] = FieldWeight{Field: s.Name, Weight: mean[j] / float64(len(rows))}
	}
	sort.SliceStable(stats.Importance, func(a, b int) bool {
		return stats.Importance[a].Weight > stats.Importance[b].Weight
	})
	return stats, nil
}
