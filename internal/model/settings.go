package model

import "github.com/areumfire/dcf-engine/internal/distribution"

// ModelSettings holds the forecast horizon and valuation assumptions shared
// by every stream in a model.
type ModelSettings struct {
	ForecastMonths     int                        `json:"forecast_months"`
	DiscountRate       distribution.Distribution  `json:"discount_rate"`
	TerminalGrowthRate float64                    `json:"terminal_growth_rate"`
	EscalationRate     *distribution.Distribution `json:"escalation_rate,omitempty"`
	CalculationMode    CalculationMode            `json:"calculation_mode"`
}

// DefaultModelSettings returns a 60-month NPV model with a fixed 10%
// discount rate and no escalation, a reasonable starting point for a new
// model.
func DefaultModelSettings() ModelSettings {
	return ModelSettings{
		ForecastMonths:     60,
		DiscountRate:       distribution.Distribution{Kind: distribution.Fixed, Params: map[string]float64{"value": 0.10}},
		TerminalGrowthRate: 0.02,
		CalculationMode:    ModeNPV,
	}
}
