package distribution

import (
	"sort"

	"github.com/areumfire/dcf-engine/internal/rng"
)

// PreviewPoint is one month of a Preview series. Deterministic kinds (and
// months outside the active window) populate Value; stochastic kinds
// populate Mean/P10/P90 from repeated draws.
type PreviewPoint struct {
	Month int      `json:"month"`
	Value *float64 `json:"value,omitempty"`
	Mean  *float64 `json:"mean,omitempty"`
	P10   *float64 `json:"p10,omitempty"`
	P90   *float64 `json:"p90,omitempty"`
}

// PreviewSeries is a finite, restartable cursor over PreviewPoints.
type PreviewSeries struct {
	points []PreviewPoint
	pos    int
}

// Points returns the full underlying slice (for JSON serialization).
func (s *PreviewSeries) Points() []PreviewPoint {
	return s.points
}

// Next returns the next point, or ok=false when exhausted.
func (s *PreviewSeries) Next() (PreviewPoint, bool) {
	if s.pos >= len(s.points) {
		return PreviewPoint{}, false
	}
	p := s.points[s.pos]
	s.pos++
	return p, true
}

// Restart rewinds the cursor to the first point.
func (s *PreviewSeries) Restart() {
	s.pos = 0
}

const previewDrawsPerMonth = 500

// Preview produces a lazy (fully-computed up front, then cursor-consumed),
// finite, restartable sequence covering months [0, horizon). Months outside
// [startMonth, endMonth] yield a zero value.
func (d Distribution) Preview(startMonth int, endMonth *int, horizon int, src *rng.Source) (*PreviewSeries, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	stochastic := d.Kind == Normal || d.Kind == LogNormal || d.Kind == Uniform || d.Kind == Triangular

	points := make([]PreviewPoint, 0, horizon)
	for m := 0; m < horizon; m++ {
		active := m >= startMonth && (endMonth == nil || m <= *endMonth)
		if !active {
			zero := 0.0
			points = append(points, PreviewPoint{Month: m, Value: &zero})
			continue
		}
		month := m
		if !stochastic {
			v, err := d.Sample(&month, nil)
			if err != nil {
				return nil, err
			}
			points = append(points, PreviewPoint{Month: m, Value: &v})
			continue
		}

		samples := make([]float64, previewDrawsPerMonth)
		var sum float64
		for i := range samples {
			v, err := d.Sample(&month, src)
			if err != nil {
				return nil, err
			}
			samples[i] = v
			sum += v
		}
		sort.Float64s(samples)
		mean := sum / float64(len(samples))
		p10 := empiricalPercentile(samples, 0.10)
		p90 := empiricalPercentile(samples, 0.90)
		points = append(points, PreviewPoint{Month: m, Mean: &mean, P10: &p10, P90: &p90})
	}
	return &PreviewSeries{points: points}, nil
}

// empiricalPercentile reads the p-quantile off an already-sorted sample.
func empiricalPercentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := p * float64(len(sorted)-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
