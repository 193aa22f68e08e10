package driver

import (
	"github.com/areumfire/dcf-engine/internal/cashflow"
	"github.com/areumfire/dcf-engine/internal/distribution"
	"github.com/areumfire/dcf-engine/internal/model"
	"github.com/areumfire/dcf-engine/internal/paramref"
	"github.com/areumfire/dcf-engine/internal/rng"
	"github.com/areumfire/dcf-engine/internal/valuation"
)

const defaultSimulations = 10000

// MonteCarloConfig configures a simulation run. NSimulations defaults to
// 10,000 when zero or negative. Seed makes the run reproducible end to
// end; each simulation derives its own independent RNG stream from it, so
// no iteration ever depends on another's draws.
type MonteCarloConfig struct {
	NSimulations int
	Seed         int64
}

// MonteCarloResult aggregates a run. NPV/NPVSamples and MonthlyCashflow
// are populated in NPV mode; IRR/IRRSamples/IRRFailedCount are populated in
// IRR mode. PaybackSamples only holds the simulations that actually reached
// payback.
type MonteCarloResult struct {
	NSimulations int `json:"n_simulations"`

	NPV        *Summary  `json:"npv,omitempty"`
	NPVSamples []float64 `json:"npv_samples,omitempty"`

	IRR            *Summary  `json:"irr,omitempty"`
	IRRSamples     []float64 `json:"irr_samples,omitempty"`
	IRRFailedCount int       `json:"irr_failed_count"`

	PaybackSamples []float64 `json:"payback_samples,omitempty"`

	MonthlyCashflow []MonthSummary `json:"monthly_cashflow,omitempty"`

	// DiscountRateClampedCount counts simulations where a sampled discount
	// rate at or below terminal_growth_rate was clamped to
	// terminal_growth_rate + 0.001. The clamp guards against divergent
	// terminal values; the count makes it visible to the caller.
	DiscountRateClampedCount int `json:"discount_rate_clamped_count"`
}

// MonteCarlo runs config.NSimulations independent stochastic passes.
func MonteCarlo(m *model.FinancialModel, config MonteCarloConfig) (*MonteCarloResult, error) {
	n := config.NSimulations
	if n <= 0 {
		n = defaultSimulations
	}

	result := &MonteCarloResult{NSimulations: n}
	forecastMonths := m.Settings.ForecastMonths
	var monthSamples [][]float64
	if m.Settings.CalculationMode == model.ModeNPV {
		monthSamples = make([][]float64, forecastMonths)
	}

	for i := 0; i < n; i++ {
		src := rng.New(config.Seed + int64(i)*2654435761)

		policy := cashflow.Stochastic()
		if m.Settings.EscalationRate != nil {
			escalation, err := m.Settings.EscalationRate.Draw(distribution.PolicyStochastic, 0, src)
			if err != nil {
				return nil, err
			}
			policy = policy.WithOverride(paramref.EscalationRate, escalation)
		}

		eval, err := evaluate(m, policy, src)
		if err != nil {
			return nil, err
		}

		if m.Settings.CalculationMode == model.ModeIRR {
			irrRes := valuation.IRR(eval.Aggregate)
			if irrRes.Err != nil {
				result.IRRFailedCount++
				continue
			}
			result.IRRSamples = append(result.IRRSamples, *irrRes.Value)
			continue
		}

		discountRate, err := m.Settings.DiscountRate.Draw(distribution.PolicyStochastic, 0, src)
		if err != nil {
			return nil, err
		}
		if discountRate <= m.Settings.TerminalGrowthRate {
			discountRate = m.Settings.TerminalGrowthRate + 0.001
			result.DiscountRateClampedCount++
		}

		npv := valuation.NPV(eval.Aggregate, discountRate)
		for _, id := range m.GetExecutionOrder() {
			s, ok := m.Get(id)
			if !ok || !s.IsPerpetual(forecastMonths) {
				continue
			}
			cf := eval.PerStream[id]
			npv += valuation.TerminalValue(cf[forecastMonths-1], discountRate, m.Settings.TerminalGrowthRate, forecastMonths)
		}
		result.NPVSamples = append(result.NPVSamples, npv)

		for t, v := range eval.Aggregate {
			monthSamples[t] = append(monthSamples[t], v)
		}

		if p := valuation.Payback(eval.Aggregate); p != nil {
			result.PaybackSamples = append(result.PaybackSamples, *p)
		}
	}

	if m.Settings.CalculationMode == model.ModeNPV {
		npvSummary := summarize(result.NPVSamples)
		result.NPV = &npvSummary
		result.MonthlyCashflow = make([]MonthSummary, forecastMonths)
		for t, samples := range monthSamples {
			result.MonthlyCashflow[t] = monthSummarize(samples)
		}
	} else if len(result.IRRSamples) > 0 {
		irrSummary := summarize(result.IRRSamples)
		result.IRR = &irrSummary
	}
	return result, nil
}
