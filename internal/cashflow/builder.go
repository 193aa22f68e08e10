// Package cashflow builds the monthly cashflow vector for one stream: the
// root-stream algorithm (base * escalation * adoption, sign-corrected) and
// the child-stream algorithm (a sparse, delayed, optionally-periodic echo of
// the parent's non-zero months).
package cashflow

import (
	"math"

	"github.com/areumfire/dcf-engine/internal/model"
	"github.com/areumfire/dcf-engine/internal/paramref"
	"github.com/areumfire/dcf-engine/internal/rng"
)

// Build returns stream's cashflow vector, length settings.ForecastMonths.
// parentCashflows is the vector already built for stream's parent in this
// same evaluation pass; it is ignored (and may be nil) for a root stream.
func Build(stream model.Stream, policy SamplingPolicy, parentCashflows []float64, settings model.ModelSettings, src *rng.Source) ([]float64, error) {
	if stream.IsRoot() {
		return buildRoot(stream, policy, settings, src)
	}
	return buildChild(stream, policy, parentCashflows, settings, src)
}

func buildRoot(s model.Stream, policy SamplingPolicy, settings model.ModelSettings, src *rng.Source) ([]float64, error) {
	n := settings.ForecastMonths
	out := make([]float64, n)

	escalation, err := drawEscalation(s, policy, settings, src)
	if err != nil {
		return nil, err
	}

	end := s.ActiveEndMonth(n)
	for m := s.StartMonth; m <= end && m < n; m++ {
		base, err := rootBase(s, policy, m, src)
		if err != nil {
			return nil, err
		}

		if settings.EscalationRate != nil {
			base *= math.Pow(1+escalation/12, float64(m-s.StartMonth))
		}

		if s.AdoptionCurve != nil {
			adoption, err := policy.resolve(s.AdoptionCurve, paramref.AdoptionCurve(s.ID), m, src)
			if err != nil {
				return nil, err
			}
			base *= adoption
		}

		if s.Kind == model.Cost {
			base = -math.Abs(base)
		}
		out[m] = base
	}
	return out, nil
}

// rootBase resolves step 1 of the root algorithm: unit_value*market_units
// when both are configured, otherwise amount alone.
func rootBase(s model.Stream, policy SamplingPolicy, m int, src *rng.Source) (float64, error) {
	if s.HasUnitPricing() {
		unitValue, err := policy.resolve(s.UnitValue, paramref.UnitValue(s.ID), m, src)
		if err != nil {
			return 0, err
		}
		marketUnits, err := policy.resolve(s.MarketUnits, paramref.MarketUnits(s.ID), m, src)
		if err != nil {
			return 0, err
		}
		return unitValue * marketUnits, nil
	}
	return policy.resolve(s.Amount, paramref.Amount(s.ID), m, src)
}

// buildChild implements the child algorithm. Periodicity filters which
// parent months re-trigger the echo (only those whose offset from the
// child's own start_month is an exact multiple of periodicity_months),
// rather than fanning each parent month out into its own independent
// repeating train; the latter double-counts overlapping trains whenever
// the parent pays out in consecutive months.
func buildChild(s model.Stream, policy SamplingPolicy, parentCashflows []float64, settings model.ModelSettings, src *rng.Source) ([]float64, error) {
	n := settings.ForecastMonths
	out := make([]float64, n)

	amount, err := policy.resolve(s.Amount, paramref.Amount(s.ID), 0, src)
	if err != nil {
		return nil, err
	}
	escalation, err := drawEscalation(s, policy, settings, src)
	if err != nil {
		return nil, err
	}

	end := s.ActiveEndMonth(n)
	for pm, parentValue := range parentCashflows {
		if parentValue == 0 {
			continue
		}
		if s.PeriodicityMonths != nil && (pm-s.StartMonth)%*s.PeriodicityMonths != 0 {
			continue
		}

		eventValue := amount * s.ConversionRate
		if s.AmountIsRatio {
			eventValue = math.Abs(parentValue) * amount * s.ConversionRate
		}

		eventMonth := pm + s.TriggerDelayMonths
		if eventMonth < s.StartMonth || eventMonth > end || eventMonth >= n {
			continue
		}
		if settings.EscalationRate != nil {
			eventValue *= math.Pow(1+escalation/12, float64(eventMonth-s.StartMonth))
		}
		out[eventMonth] += eventValue
	}

	if s.Kind == model.Cost {
		for i := range out {
			out[i] = -out[i]
		}
	}
	return out, nil
}

// drawEscalation draws the shared annual escalation rate once per build
// (step 2 of the root algorithm, step 3 of the child algorithm). It returns
// 0 when no escalation_rate is configured.
func drawEscalation(s model.Stream, policy SamplingPolicy, settings model.ModelSettings, src *rng.Source) (float64, error) {
	if settings.EscalationRate == nil {
		return 0, nil
	}
	return policy.resolve(settings.EscalationRate, paramref.EscalationRate, 0, src)
}
