// Package driver runs a FinancialModel through one of its three evaluation
// modes: a single deterministic pass, a Monte Carlo simulation, or a
// sensitivity/breakeven scan built on repeated deterministic passes with a
// fixed override.
package driver

import (
	"github.com/areumfire/dcf-engine/internal/cashflow"
	"github.com/areumfire/dcf-engine/internal/model"
	"github.com/areumfire/dcf-engine/internal/rng"
)

// Evaluation is one pass's result: every stream's cashflow vector, keyed by
// id, plus the element-wise sum across all streams.
type Evaluation struct {
	PerStream map[string][]float64
	Aggregate []float64
}

// evaluate walks the model in topological order, so each child stream is
// built against its parent's vector from this same pass, never a cached or
// earlier one.
func evaluate(m *model.FinancialModel, policy cashflow.SamplingPolicy, src *rng.Source) (Evaluation, error) {
	n := m.Settings.ForecastMonths
	perStream := make(map[string][]float64, len(m.Streams()))
	aggregate := make([]float64, n)

	for _, id := range m.GetExecutionOrder() {
		s, ok := m.Get(id)
		if !ok {
			continue
		}
		var parentCF []float64
		if s.ParentStreamID != nil {
			parentCF = perStream[*s.ParentStreamID]
		}
		cf, err := cashflow.Build(s, policy, parentCF, m.Settings, src)
		if err != nil {
			return Evaluation{}, err
		}
		perStream[id] = cf
		for t, v := range cf {
			aggregate[t] += v
		}
	}
	return Evaluation{PerStream: perStream, Aggregate: aggregate}, nil
}
