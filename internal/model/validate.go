package model

import "github.com/areumfire/dcf-engine/internal/distribution"

// validateStreamFields checks the per-stream invariants that don't depend
// on the rest of the graph: window ordering, conversion_rate range, and
// every distribution the stream carries.
func validateStreamFields(s Stream) error {
	if s.StartMonth < 0 {
		return validationErr("stream %q: start_month must be >= 0, got %d", s.ID, s.StartMonth)
	}
	if s.EndMonth != nil && *s.EndMonth < s.StartMonth {
		return validationErr("stream %q: end_month (%d) must be >= start_month (%d)", s.ID, *s.EndMonth, s.StartMonth)
	}
	if s.ParentStreamID != nil {
		if s.ConversionRate < 0 || s.ConversionRate > 1 {
			return validationErr("stream %q: conversion_rate must be in [0,1], got %v", s.ID, s.ConversionRate)
		}
		if s.TriggerDelayMonths < 0 {
			return validationErr("stream %q: trigger_delay_months must be >= 0, got %d", s.ID, s.TriggerDelayMonths)
		}
		if s.PeriodicityMonths != nil && *s.PeriodicityMonths < 1 {
			return validationErr("stream %q: periodicity_months must be >= 1, got %d", s.ID, *s.PeriodicityMonths)
		}
	}

	dists := []*distribution.Distribution{s.Amount, s.UnitValue, s.MarketUnits, s.AdoptionCurve}
	for _, d := range dists {
		if d == nil {
			continue
		}
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate succeeds iff: every parent_stream_id resolves, every
// conversion_rate is in [0,1], the graph is cycle-free, every distribution
// is well-formed, and (NPV mode only) E[discount_rate] > terminal_growth_rate.
func (m *FinancialModel) Validate() error {
	if m.Settings.ForecastMonths <= 0 {
		return validationErr("forecast_months must be positive, got %d", m.Settings.ForecastMonths)
	}
	if err := m.Settings.DiscountRate.Validate(); err != nil {
		return err
	}
	if m.Settings.EscalationRate != nil {
		if err := m.Settings.EscalationRate.Validate(); err != nil {
			return err
		}
	}

	for _, s := range m.Streams() {
		if err := validateStreamFields(s); err != nil {
			return err
		}
		if err := m.checkParentage(s); err != nil {
			return err
		}
	}
	for _, id := range m.order {
		if m.hasCycleFrom(id) {
			return graphErr("cycle detected at stream %q", id)
		}
	}

	if m.Settings.CalculationMode == ModeNPV {
		expected, err := m.Settings.DiscountRate.Deterministic()
		if err != nil {
			return err
		}
		if expected <= m.Settings.TerminalGrowthRate {
			return validationErr(
				"NPV mode requires E[discount_rate] (%v) > terminal_growth_rate (%v)",
				expected, m.Settings.TerminalGrowthRate,
			)
		}
	}
	return nil
}
