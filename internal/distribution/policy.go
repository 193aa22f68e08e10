package distribution

import "github.com/areumfire/dcf-engine/internal/rng"

// Policy selects how the cashflow builder resolves a distribution draw. It
// is always passed explicitly, never read from global/ambient state, so
// that Monte Carlo iterations stay independent and sensitivity's
// override/restore scans stay local to one pass.
type Policy int

const (
	PolicyDeterministic Policy = iota
	PolicyStochastic
)

// Draw resolves one distribution touch at month m under policy. Time-
// dependent kinds (LOGISTIC, LINEAR) ignore the policy entirely; they have
// no randomness to select between.
func (d Distribution) Draw(policy Policy, month int, src *rng.Source) (float64, error) {
	if d.IsTimeDependent() {
		return d.Sample(&month, nil)
	}
	switch policy {
	case PolicyDeterministic:
		return d.Deterministic()
	case PolicyStochastic:
		return d.Sample(&month, src)
	default:
		return 0, configErr(d.Kind, "unknown sampling policy %d", policy)
	}
}
