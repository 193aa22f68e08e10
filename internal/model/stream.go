package model

import "github.com/areumfire/dcf-engine/internal/distribution"

// StreamKind distinguishes revenue items from cost items. Cost streams'
// cashflows are always negated by the builder.
type StreamKind string

const (
	Revenue StreamKind = "REVENUE"
	Cost    StreamKind = "COST"
)

// CalculationMode selects which valuation the deterministic driver reports:
// discounted NPV (with terminal value) or an internal rate of return.
type CalculationMode string

const (
	ModeNPV CalculationMode = "NPV"
	ModeIRR CalculationMode = "IRR"
)

// Stream is one revenue or cost item in the model graph.
type Stream struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Kind StreamKind `json:"kind"`

	StartMonth int  `json:"start_month"`
	EndMonth   *int `json:"end_month,omitempty"`

	// Base amount (root streams): either Amount alone, or UnitValue *
	// MarketUnits when both are present (the pair wins over Amount).
	Amount      *distribution.Distribution `json:"amount,omitempty"`
	UnitValue   *distribution.Distribution `json:"unit_value,omitempty"`
	MarketUnits *distribution.Distribution `json:"market_units,omitempty"`

	// Adoption (root streams).
	AdoptionCurve *distribution.Distribution `json:"adoption_curve,omitempty"`

	// Parent linkage (child streams).
	ParentStreamID     *string `json:"parent_stream_id,omitempty"`
	ConversionRate     float64 `json:"conversion_rate,omitempty"`
	TriggerDelayMonths int     `json:"trigger_delay_months,omitempty"`
	PeriodicityMonths  *int    `json:"periodicity_months,omitempty"`
	AmountIsRatio      bool    `json:"amount_is_ratio,omitempty"`
}

// IsRoot reports whether the stream has no parent.
func (s Stream) IsRoot() bool {
	return s.ParentStreamID == nil
}

// HasUnitPricing reports whether the stream derives its base amount from
// unit_value * market_units rather than a single amount distribution.
func (s Stream) HasUnitPricing() bool {
	return s.UnitValue != nil && s.MarketUnits != nil
}

// IsPerpetual reports whether the stream has no end (or an end beyond the
// forecast horizon) and therefore contributes a terminal value in NPV mode.
func (s Stream) IsPerpetual(forecastMonths int) bool {
	return s.EndMonth == nil || *s.EndMonth >= forecastMonths
}

// ActiveEndMonth returns the last month (inclusive) the stream is active
// within a forecast of forecastMonths months.
func (s Stream) ActiveEndMonth(forecastMonths int) int {
	last := forecastMonths - 1
	if s.EndMonth != nil && *s.EndMonth < last {
		return *s.EndMonth
	}
	return last
}
