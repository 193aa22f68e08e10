package cashflow

import (
	"github.com/areumfire/dcf-engine/internal/distribution"
	"github.com/areumfire/dcf-engine/internal/rng"
)

// SamplingPolicy selects how build resolves every distribution touch: a
// base Mode (deterministic or stochastic) plus an optional set of fixed
// overrides keyed by paramref name. An override always wins over Mode for
// the parameter it names, regardless of Mode: a caller-supplied scalar
// replaces one specific distribution in the evaluation while every other
// distribution still resolves under Mode. Sensitivity and breakeven scans
// use a single-entry Overrides map; Monte Carlo uses a single-entry map
// pinning its per-simulation escalation draw when an escalation rate is
// configured (nil otherwise); the deterministic driver uses a nil one.
type SamplingPolicy struct {
	Mode      distribution.Policy
	Overrides map[string]float64
}

// Deterministic returns the policy used by the deterministic driver: every
// distribution resolves to its expected value, no overrides.
func Deterministic() SamplingPolicy {
	return SamplingPolicy{Mode: distribution.PolicyDeterministic}
}

// Stochastic returns the policy used by one Monte Carlo simulation pass.
func Stochastic() SamplingPolicy {
	return SamplingPolicy{Mode: distribution.PolicyStochastic}
}

// WithOverride returns a copy of p with key fixed to value for this build.
func (p SamplingPolicy) WithOverride(key string, value float64) SamplingPolicy {
	overrides := make(map[string]float64, len(p.Overrides)+1)
	for k, v := range p.Overrides {
		overrides[k] = v
	}
	overrides[key] = value
	return SamplingPolicy{Mode: p.Mode, Overrides: overrides}
}

// resolve draws the distribution named key at month m, honoring an override
// if one is present for key. d may be nil, in which case resolve returns 0
// (the caller is responsible for treating a nil distribution as "absent"
// rather than calling resolve at all when that distinction matters).
func (p SamplingPolicy) resolve(d *distribution.Distribution, key string, m int, src *rng.Source) (float64, error) {
	if d == nil {
		return 0, nil
	}
	if v, ok := p.Overrides[key]; ok {
		return v, nil
	}
	return d.Draw(p.Mode, m, src)
}
