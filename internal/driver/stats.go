package driver

import (
	"math"
	"sort"
)

// Summary is the aggregate Monte Carlo reports for one sample array: the
// central tendency, spread, and the percentile spread of the outcome.
type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
}

// summarize computes Summary over values using linear-interpolated
// percentiles read off a sorted copy of the sample array.
func summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	percentile := func(p float64) float64 {
		idx := p * float64(len(sorted)-1)
		lower, upper := int(math.Floor(idx)), int(math.Ceil(idx))
		if lower == upper {
			return sorted[lower]
		}
		weight := idx - float64(lower)
		return sorted[lower]*(1-weight) + sorted[upper]*weight
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	return Summary{
		Mean:   mean,
		Median: percentile(0.50),
		Std:    math.Sqrt(variance),
		P10:    percentile(0.10),
		P25:    percentile(0.25),
		P75:    percentile(0.75),
		P90:    percentile(0.90),
	}
}

// MonthSummary is the narrower per-month cashflow distribution summary:
// only mean/median/p10/p90, not the full Summary shape.
type MonthSummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P10    float64 `json:"p10"`
	P90    float64 `json:"p90"`
}

func monthSummarize(values []float64) MonthSummary {
	s := summarize(values)
	return MonthSummary{Mean: s.Mean, Median: s.Median, P10: s.P10, P90: s.P90}
}
