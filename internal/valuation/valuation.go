// Package valuation turns a built cashflow vector into the scalar metrics a
// driver reports: net present value, Gordon Growth Model terminal value,
// internal rate of return, and payback period.
package valuation

import (
	"math"

	"github.com/khezen/rootfinding"
)

// NPV discounts c at the given annual rate, compounded monthly.
func NPV(c []float64, annualDiscountRate float64) float64 {
	monthly := annualDiscountRate / 12
	npv := 0.0
	for t, v := range c {
		npv += v / math.Pow(1+monthly, float64(t))
	}
	return npv
}

// TerminalValue computes the present value of a Gordon Growth Model
// perpetuity anchored on a stream's final-month cashflow. It contributes 0
// when d <= g, where the perpetuity diverges; callers that want a nonzero
// contribution instead must clamp d away from g first (the Monte Carlo
// driver does).
func TerminalValue(cFinal, annualDiscountRate, terminalGrowthRate float64, forecastMonths int) float64 {
	d, g := annualDiscountRate, terminalGrowthRate
	if d <= g {
		return 0
	}
	tv := cFinal * (1 + g) / (d - g)
	monthly := d / 12
	return tv / math.Pow(1+monthly, float64(forecastMonths))
}

// IRRResult is the outcome of an IRR solve: exactly one of Value or Err is
// set. A nil Value with a non-nil Err is not a crash: it is the normal
// outcome for a cashflow vector with no sign change or one Brent fails to
// converge on, reported as a null IRR with a human-readable reason.
type IRRResult struct {
	Value *float64
	Err   error
}

// irrBracketLow and irrBracketHigh bound the monthly-rate search. The
// bracket is fixed rather than expanded on failure: a cashflow vector with
// no root in it gets a named outcome, not a wider search. irrPrecision is
// the decimal-digit tolerance Brent refines to (1e-10 on the monthly rate).
const (
	irrBracketLow  = -0.5
	irrBracketHigh = 10.0
	irrPrecision   = 10
)

// IRR solves for the monthly rate at which NPV(c; rate) = 0 within the
// fixed bracket, then reports it annualized (12 * monthly).
func IRR(c []float64) IRRResult {
	npvAtMonthly := func(monthly float64) float64 {
		npv := 0.0
		for t, v := range c {
			npv += v / math.Pow(1+monthly, float64(t))
		}
		return npv
	}

	lo, hi := npvAtMonthly(irrBracketLow), npvAtMonthly(irrBracketHigh)
	if lo*hi > 0 {
		return IRRResult{Err: &NoSignChangeError{}}
	}

	root, err := rootfinding.Brent(npvAtMonthly, irrBracketLow, irrBracketHigh, irrPrecision)
	if err != nil {
		return IRRResult{Err: &SolverFailureError{Reason: err.Error()}}
	}
	annual := 12 * root
	return IRRResult{Value: &annual}
}

// NoSignChangeError reports that every cashflow shares the same sign, so no
// discount rate in the bracket can zero the NPV.
type NoSignChangeError struct{}

func (e *NoSignChangeError) Error() string {
	return "IRR: no sign change across the search bracket (cashflows never cross zero NPV)"
}

// SolverFailureError reports that Brent's method did not converge on a
// root inside the bracket.
type SolverFailureError struct {
	Reason string
}

func (e *SolverFailureError) Error() string {
	return "IRR: solver failed to converge: " + e.Reason
}

// Payback returns the fractional month at which cumulative cashflow first
// reaches zero, linearly interpolated within the crossing month, or nil if
// the cumulative sum never reaches zero.
func Payback(c []float64) *float64 {
	cumulative := 0.0
	for t, v := range c {
		prev := cumulative
		cumulative += v
		if cumulative >= 0 {
			if v == 0 {
				month := float64(t)
				return &month
			}
			// Linear interpolation within month t: prev was negative (or
			// this is month 0 and prev is 0, already non-negative).
			frac := -prev / v
			month := float64(t-1) + frac
			if t == 0 {
				month = 0
			}
			return &month
		}
	}
	return nil
}
