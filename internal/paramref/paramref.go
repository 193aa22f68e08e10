// Package paramref names the scalar parameters a sensitivity or breakeven
// scan can target. Both the cashflow builder (which resolves an override by
// name) and the driver package (which enumerates names and builds brackets)
// import this package so the two sides never drift apart.
package paramref

// Model-level parameter names. These key into ModelSettings, not a stream.
const (
	DiscountRate   = "Discount Rate"
	EscalationRate = "Escalation Rate"
)

// Amount names a root or child stream's base amount distribution.
func Amount(streamID string) string { return streamID + ".amount" }

// UnitValue names a root stream's per-unit price distribution.
func UnitValue(streamID string) string { return streamID + ".unit_value" }

// MarketUnits names a root stream's market-size distribution.
func MarketUnits(streamID string) string { return streamID + ".market_units" }

// AdoptionCurve names a root stream's adoption-curve distribution.
func AdoptionCurve(streamID string) string { return streamID + ".adoption_curve" }
