package driver

import (
	"fmt"
	"math"
	"sort"

	"github.com/areumfire/dcf-engine/internal/cashflow"
	"github.com/areumfire/dcf-engine/internal/distribution"
	"github.com/areumfire/dcf-engine/internal/model"
	"github.com/areumfire/dcf-engine/internal/paramref"
	"github.com/khezen/rootfinding"
)

// tornadoTopN caps how many parameter swings a tornado scan reports.
const tornadoTopN = 15

// breakevenPrecision is the decimal-digit tolerance Brent refines a
// breakeven solution to.
const breakevenPrecision = 12

// UncertainParameter names one distribution a sensitivity or breakeven scan
// can target, along with its current P10/P50/P90 under the model as it
// stands. StreamID is nil for model-level parameters (discount rate,
// escalation rate).
type UncertainParameter struct {
	ParameterName string  `json:"parameter_name"`
	StreamID      *string `json:"stream_id,omitempty"`
	P10           float64 `json:"p10"`
	P50           float64 `json:"p50"`
	P90           float64 `json:"p90"`
}

// EnumerateUncertainParameters lists every non-FIXED distribution in the
// model: the discount rate, the escalation rate (if configured), and each
// stream's amount/unit_value/market_units/adoption_curve.
func EnumerateUncertainParameters(m *model.FinancialModel) ([]UncertainParameter, error) {
	var out []UncertainParameter
	add := func(name string, streamID *string, d distribution.Distribution) error {
		if d.Kind == distribution.Fixed {
			return nil
		}
		p10, err := d.Percentile(0.10)
		if err != nil {
			return err
		}
		p50, err := d.Percentile(0.50)
		if err != nil {
			return err
		}
		p90, err := d.Percentile(0.90)
		if err != nil {
			return err
		}
		out = append(out, UncertainParameter{ParameterName: name, StreamID: streamID, P10: p10, P50: p50, P90: p90})
		return nil
	}

	if err := add(paramref.DiscountRate, nil, m.Settings.DiscountRate); err != nil {
		return nil, err
	}
	if m.Settings.EscalationRate != nil {
		if err := add(paramref.EscalationRate, nil, *m.Settings.EscalationRate); err != nil {
			return nil, err
		}
	}

	for _, s := range m.Streams() {
		id := s.ID
		dists := []struct {
			name string
			d    *distribution.Distribution
		}{
			{paramref.Amount(s.ID), s.Amount},
			{paramref.UnitValue(s.ID), s.UnitValue},
			{paramref.MarketUnits(s.ID), s.MarketUnits},
			{paramref.AdoptionCurve(s.ID), s.AdoptionCurve},
		}
		for _, entry := range dists {
			if entry.d == nil {
				continue
			}
			if err := add(entry.name, &id, *entry.d); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// TornadoEntry is one parameter's NPV swing: the NPV with the parameter
// pinned at its P10 versus pinned at its P90.
type TornadoEntry struct {
	ParameterName string  `json:"parameter_name"`
	StreamID      *string `json:"stream_id,omitempty"`
	NPVLow        float64 `json:"npv_low"`
	NPVHigh       float64 `json:"npv_high"`
	Swing         float64 `json:"swing"`
}

// Tornado computes the NPV swing of every uncertain parameter (P10 versus
// P90, holding everything else at its deterministic value) and returns the
// top 15 by absolute swing, descending. Each override is purely local to
// its own pass: npvValue never mutates m, so the model is unchanged before
// and after the scan.
func Tornado(m *model.FinancialModel) ([]TornadoEntry, error) {
	params, err := EnumerateUncertainParameters(m)
	if err != nil {
		return nil, err
	}

	entries := make([]TornadoEntry, 0, len(params))
	for _, p := range params {
		npvLow, err := npvValue(m, cashflow.Deterministic().WithOverride(p.ParameterName, p.P10))
		if err != nil {
			return nil, err
		}
		npvHigh, err := npvValue(m, cashflow.Deterministic().WithOverride(p.ParameterName, p.P90))
		if err != nil {
			return nil, err
		}
		entries = append(entries, TornadoEntry{
			ParameterName: p.ParameterName,
			StreamID:      p.StreamID,
			NPVLow:        npvLow,
			NPVHigh:       npvHigh,
			Swing:         math.Abs(npvHigh - npvLow),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Swing > entries[j].Swing })
	if len(entries) > tornadoTopN {
		entries = entries[:tornadoTopN]
	}
	return entries, nil
}

// BreakevenRequest targets one parameter and a target NPV to solve for.
type BreakevenRequest struct {
	ParameterName string
	TargetNPV     float64
}

// BreakevenResult reports either a solved value or a "not found" outcome
// naming the bracket that was attempted.
type BreakevenResult struct {
	Found      bool     `json:"found"`
	Value      *float64 `json:"value,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	BracketLow float64  `json:"bracket_low"`
	BracketHi  float64  `json:"bracket_high"`
}

// Breakeven finds the scalar value of req.ParameterName at which NPV equals
// req.TargetNPV, bracketing a sensible range from the parameter's current
// order of magnitude and refining with Brent's method.
func Breakeven(m *model.FinancialModel, req BreakevenRequest) (*BreakevenResult, error) {
	params, err := EnumerateUncertainParameters(m)
	if err != nil {
		return nil, err
	}
	var target *UncertainParameter
	for i := range params {
		if params[i].ParameterName == req.ParameterName {
			target = &params[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("breakeven: unknown or FIXED parameter %q", req.ParameterName)
	}

	lo, hi := breakevenBracket(*target)
	f := func(v float64) float64 {
		npv, err := npvValue(m, cashflow.Deterministic().WithOverride(req.ParameterName, v))
		if err != nil {
			return math.NaN()
		}
		return npv - req.TargetNPV
	}

	fLo, fHi := f(lo), f(hi)
	if math.IsNaN(fLo) || math.IsNaN(fHi) {
		return nil, fmt.Errorf("breakeven: evaluation failed within bracket [%v, %v]", lo, hi)
	}
	if fLo*fHi > 0 {
		return &BreakevenResult{Found: false, Reason: "no sign change in attempted bracket", BracketLow: lo, BracketHi: hi}, nil
	}

	root, err := rootfinding.Brent(f, lo, hi, breakevenPrecision)
	if err != nil {
		return &BreakevenResult{Found: false, Reason: err.Error(), BracketLow: lo, BracketHi: hi}, nil
	}
	return &BreakevenResult{Found: true, Value: &root, BracketLow: lo, BracketHi: hi}, nil
}

// breakevenBracket derives the search range: [0,1] for a rate-valued
// parameter (discount rate, escalation rate), otherwise 10x below to 10x
// above the parameter's current (P50) value, with a symmetric fallback
// around 0 when that value itself is 0.
func breakevenBracket(p UncertainParameter) (float64, float64) {
	switch p.ParameterName {
	case paramref.DiscountRate, paramref.EscalationRate:
		return 0, 1
	}
	v := p.P50
	switch {
	case v > 0:
		return v / 10, v * 10
	case v < 0:
		return v * 10, v / 10
	default:
		return -1, 1
	}
}
