package driver

import (
	"github.com/areumfire/dcf-engine/internal/cashflow"
	"github.com/areumfire/dcf-engine/internal/model"
	"github.com/areumfire/dcf-engine/internal/paramref"
	"github.com/areumfire/dcf-engine/internal/valuation"
)

// DeterministicResult is the record produced by one deterministic pass. In
// NPV mode, NPV/TerminalValue/DiscountRate/Payback are populated and
// Cashflows is nil. In IRR mode, NPV is 0, TerminalValue/DiscountRate are
// nil, and Cashflows carries the aggregate vector the IRR was solved on.
type DeterministicResult struct {
	PerStream map[string][]float64 `json:"per_stream"`
	Aggregate []float64            `json:"aggregate"`

	NPV           float64  `json:"npv"`
	TerminalValue *float64 `json:"terminal_value,omitempty"`
	DiscountRate  *float64 `json:"discount_rate,omitempty"`
	Payback       *float64 `json:"payback,omitempty"`

	IRR      *float64 `json:"irr,omitempty"`
	IRRError string   `json:"irr_error,omitempty"`

	Cashflows []float64 `json:"cashflows,omitempty"`
}

// Deterministic runs one pass with every distribution resolved to its
// expected value.
func Deterministic(m *model.FinancialModel) (*DeterministicResult, error) {
	return deterministicWithPolicy(m, cashflow.Deterministic())
}

// deterministicWithPolicy is Deterministic parameterized by an explicit
// policy, so the sensitivity/breakeven scans in sensitivity.go can reuse it
// with a fixed-override policy without duplicating the valuation assembly.
func deterministicWithPolicy(m *model.FinancialModel, policy cashflow.SamplingPolicy) (*DeterministicResult, error) {
	eval, err := evaluate(m, policy, nil)
	if err != nil {
		return nil, err
	}

	result := &DeterministicResult{PerStream: eval.PerStream, Aggregate: eval.Aggregate}
	irrRes := valuation.IRR(eval.Aggregate)
	result.IRR = irrRes.Value
	if irrRes.Err != nil {
		result.IRRError = irrRes.Err.Error()
	}

	if m.Settings.CalculationMode == model.ModeIRR {
		result.Cashflows = eval.Aggregate
		return result, nil
	}

	discountRate, err := resolvedDiscountRate(m, policy)
	if err != nil {
		return nil, err
	}
	result.DiscountRate = &discountRate

	npv := valuation.NPV(eval.Aggregate, discountRate)
	tv := 0.0
	n := m.Settings.ForecastMonths
	for _, id := range m.GetExecutionOrder() {
		s, ok := m.Get(id)
		if !ok || !s.IsPerpetual(n) {
			continue
		}
		cf := eval.PerStream[id]
		tv += valuation.TerminalValue(cf[n-1], discountRate, m.Settings.TerminalGrowthRate, n)
	}
	npv += tv
	result.NPV = npv
	result.TerminalValue = &tv
	result.Payback = valuation.Payback(eval.Aggregate)
	return result, nil
}

// resolvedDiscountRate returns the discount rate for this pass: the
// policy's override for paramref.DiscountRate when present (a breakeven or
// tornado leg targeting the discount rate itself), otherwise the model's
// own expected discount rate.
func resolvedDiscountRate(m *model.FinancialModel, policy cashflow.SamplingPolicy) (float64, error) {
	if v, ok := policy.Overrides[paramref.DiscountRate]; ok {
		return v, nil
	}
	return m.Settings.DiscountRate.Deterministic()
}

// npvValue computes NPV the way tornado/breakeven need it: always in NPV
// terms (discounted cashflows plus perpetual terminal value), independent
// of the model's declared CalculationMode. A sensitivity scan is phrased
// entirely around NPV swings regardless of the model's own mode.
func npvValue(m *model.FinancialModel, policy cashflow.SamplingPolicy) (float64, error) {
	eval, err := evaluate(m, policy, nil)
	if err != nil {
		return 0, err
	}
	discountRate, err := resolvedDiscountRate(m, policy)
	if err != nil {
		return 0, err
	}
	npv := valuation.NPV(eval.Aggregate, discountRate)
	n := m.Settings.ForecastMonths
	for _, id := range m.GetExecutionOrder() {
		s, ok := m.Get(id)
		if !ok || !s.IsPerpetual(n) {
			continue
		}
		cf := eval.PerStream[id]
		npv += valuation.TerminalValue(cf[n-1], discountRate, m.Settings.TerminalGrowthRate, n)
	}
	return npv, nil
}
