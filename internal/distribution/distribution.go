// Package distribution implements the tagged probability distributions that
// drive every stream's base amount, adoption curve, escalation rate, and
// discount rate: FIXED, NORMAL, LOGNORMAL, UNIFORM, TRIANGULAR, LOGISTIC,
// and LINEAR.
package distribution

import (
	"fmt"
	"math"

	"github.com/areumfire/dcf-engine/internal/rng"
	"gonum.org/v1/gonum/stat/distuv"
)

// Kind is the closed set of recognized distribution kinds. The string
// values are part of the document-persistence contract: documents written
// by one implementation must load in another, so they are never renamed.
type Kind string

const (
	Fixed      Kind = "FIXED"
	Normal     Kind = "NORMAL"
	LogNormal  Kind = "LOGNORMAL"
	Uniform    Kind = "UNIFORM"
	Triangular Kind = "TRIANGULAR"
	Logistic   Kind = "LOGISTIC"
	Linear     Kind = "LINEAR"
)

// Distribution is a tagged value: a Kind plus the params it recognizes.
// Unrecognized params are ignored; missing required params are a
// ConfigError raised at Validate/Sample/Deterministic/Percentile time, never
// silently defaulted.
type Distribution struct {
	Kind   Kind               `json:"kind"`
	Params map[string]float64 `json:"params"`
}

// ConfigError reports an invalid distribution: unknown kind, a missing or
// out-of-range parameter, or a percentile request outside [0,1].
type ConfigError struct {
	Kind   Kind
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("distribution %s: %s", e.Kind, e.Reason)
}

func configErr(kind Kind, format string, args ...interface{}) error {
	return &ConfigError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

func (d Distribution) param(name string) (float64, bool) {
	v, ok := d.Params[name]
	return v, ok
}

func (d Distribution) require(name string) (float64, error) {
	v, ok := d.param(name)
	if !ok {
		return 0, configErr(d.Kind, "missing required parameter %q", name)
	}
	return v, nil
}

// IsTimeDependent reports whether this kind is a deterministic,
// month-indexed function rather than a random variable (LOGISTIC, LINEAR).
func (d Distribution) IsTimeDependent() bool {
	return d.Kind == Logistic || d.Kind == Linear
}

// Validate checks that required params are present and internally
// consistent for the declared Kind.
func (d Distribution) Validate() error {
	switch d.Kind {
	case Fixed:
		v, err := d.require("value")
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return configErr(d.Kind, "value must be finite, got %v", v)
		}
	case Normal:
		if _, err := d.require("mean"); err != nil {
			return err
		}
		std, err := d.require("std")
		if err != nil {
			return err
		}
		if std < 0 {
			return configErr(d.Kind, "std must be >= 0, got %v", std)
		}
	case LogNormal:
		if _, err := d.require("mean"); err != nil {
			return err
		}
		std, err := d.require("std")
		if err != nil {
			return err
		}
		if std < 0 {
			return configErr(d.Kind, "std must be >= 0, got %v", std)
		}
	case Uniform:
		min, err := d.require("min")
		if err != nil {
			return err
		}
		max, err := d.require("max")
		if err != nil {
			return err
		}
		if min > max {
			return configErr(d.Kind, "min (%v) must be <= max (%v)", min, max)
		}
	case Triangular:
		min, err := d.require("min")
		if err != nil {
			return err
		}
		likely, err := d.require("likely")
		if err != nil {
			return err
		}
		max, err := d.require("max")
		if err != nil {
			return err
		}
		if !(min <= likely && likely <= max) {
			return configErr(d.Kind, "require min (%v) <= likely (%v) <= max (%v)", min, likely, max)
		}
	case Logistic:
		if _, err := d.require("midpoint"); err != nil {
			return err
		}
		if _, err := d.require("steepness"); err != nil {
			return err
		}
		if _, err := d.require("amplitude"); err != nil {
			return err
		}
	case Linear:
		if _, err := d.require("rate"); err != nil {
			return err
		}
		if _, err := d.require("amplitude"); err != nil {
			return err
		}
	default:
		return configErr(d.Kind, "unknown distribution kind")
	}
	return nil
}

// Sample draws a value. For stochastic kinds it draws from src (month is
// ignored). For time-dependent kinds (LOGISTIC, LINEAR) it returns the
// per-month deterministic value, using month if provided; when month is nil
// it returns 0 for LOGISTIC and the constant amplitude*rate for LINEAR.
// src may be nil for time-dependent kinds, and for stochastic kinds it
// yields the distribution's center (equivalent to Deterministic).
func (d Distribution) Sample(month *int, src *rng.Source) (float64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	switch d.Kind {
	case Fixed:
		return d.Params["value"], nil
	case Normal:
		mean, std := d.Params["mean"], d.Params["std"]
		if src == nil {
			return mean, nil
		}
		return mean + std*src.NormFloat64(), nil
	case LogNormal:
		mean, std := d.Params["mean"], d.Params["std"]
		if src == nil {
			return math.Exp(mean + std*std/2), nil
		}
		return math.Exp(mean + std*src.NormFloat64()), nil
	case Uniform:
		lo, hi := d.Params["min"], d.Params["max"]
		if src == nil {
			return (lo + hi) / 2, nil
		}
		return src.Uniform(lo, hi), nil
	case Triangular:
		lo, likely, hi := d.Params["min"], d.Params["likely"], d.Params["max"]
		if src == nil {
			return (lo + likely + hi) / 3, nil
		}
		return triangularQuantile(lo, likely, hi, src.Float64()), nil
	case Logistic:
		m := 0.0
		if month != nil {
			m = float64(*month)
		} else {
			return 0, nil
		}
		return logisticIncrement(d.Params, m), nil
	case Linear:
		return d.Params["amplitude"] * d.Params["rate"], nil
	default:
		return 0, configErr(d.Kind, "unknown distribution kind")
	}
}

// Deterministic returns the distribution's expected value. For
// LOGISTIC/LINEAR this is the month-0 value of the same formula Sample uses.
func (d Distribution) Deterministic() (float64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	switch d.Kind {
	case Fixed:
		return d.Params["value"], nil
	case Normal:
		return d.Params["mean"], nil
	case LogNormal:
		mean, std := d.Params["mean"], d.Params["std"]
		return math.Exp(mean + std*std/2), nil
	case Uniform:
		lo, hi := d.Params["min"], d.Params["max"]
		return (lo + hi) / 2, nil
	case Triangular:
		lo, likely, hi := d.Params["min"], d.Params["likely"], d.Params["max"]
		return (lo + likely + hi) / 3, nil
	case Logistic:
		return logisticIncrement(d.Params, 0), nil
	case Linear:
		return d.Params["amplitude"] * d.Params["rate"], nil
	default:
		return 0, configErr(d.Kind, "unknown distribution kind")
	}
}

// Percentile returns the p-quantile (p in [0,1]). Closed forms are used
// where the kind has one; the result is equivalent to taking 10,000 samples
// and reading off the p-quantile.
func (d Distribution) Percentile(p float64) (float64, error) {
	if p < 0 || p > 1 {
		return 0, configErr(d.Kind, "percentile p=%v out of range [0,1]", p)
	}
	if err := d.Validate(); err != nil {
		return 0, err
	}
	switch d.Kind {
	case Fixed, Logistic, Linear:
		return d.Deterministic()
	case Normal:
		nd := distuv.Normal{Mu: d.Params["mean"], Sigma: d.Params["std"]}
		return nd.Quantile(p), nil
	case LogNormal:
		ln := distuv.LogNormal{Mu: d.Params["mean"], Sigma: d.Params["std"]}
		return ln.Quantile(p), nil
	case Uniform:
		lo, hi := d.Params["min"], d.Params["max"]
		return lo + p*(hi-lo), nil
	case Triangular:
		lo, likely, hi := d.Params["min"], d.Params["likely"], d.Params["max"]
		return triangularQuantile(lo, likely, hi, p), nil
	default:
		return 0, configErr(d.Kind, "unknown distribution kind")
	}
}

// logisticIncrement is the derivative of the logistic S-curve: the
// incremental per-month adoption, not the cumulative level.
func logisticIncrement(params map[string]float64, m float64) float64 {
	midpoint, k, amplitude := params["midpoint"], params["steepness"], params["amplitude"]
	s := 1 / (1 + math.Exp(-k*(m-midpoint)))
	return amplitude * k * s * (1 - s)
}

// triangularQuantile is the closed-form inverse CDF of a triangular
// distribution, used both for Percentile and for Sample's inverse-transform
// draw.
func triangularQuantile(min, likely, max, p float64) float64 {
	if max == min {
		return min
	}
	fc := (likely - min) / (max - min)
	if p < fc {
		return min + math.Sqrt(p*(max-min)*(likely-min))
	}
	return max - math.Sqrt((1-p)*(max-min)*(max-likely))
}
