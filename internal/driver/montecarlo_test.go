package driver

import (
	"testing"

	"github.com/areumfire/dcf-engine/internal/distribution"
	"github.com/areumfire/dcf-engine/internal/model"
)

func TestMonteCarloDefaultSimulations(t *testing.T) {
	end := 11
	m := model.New("mc-default", npvSettings(12, 0.12, 0))
	if err := m.AddStream(model.Stream{ID: "rev", Kind: model.Revenue, EndMonth: &end, Amount: fixed(1000)}); err != nil {
		t.Fatal(err)
	}
	res, err := MonteCarlo(m, MonteCarloConfig{Seed: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NSimulations != defaultSimulations {
		t.Errorf("expected default %d simulations, got %d", defaultSimulations, res.NSimulations)
	}
}

func TestMonteCarloNPVModeAggregates(t *testing.T) {
	end := 11
	settings := npvSettings(12, 0.12, 0)
	m := model.New("mc-npv", settings)
	stochasticAmount := &distribution.Distribution{Kind: distribution.Normal, Params: map[string]float64{"mean": 1000, "std": 50}}
	if err := m.AddStream(model.Stream{ID: "rev", Kind: model.Revenue, EndMonth: &end, Amount: stochasticAmount}); err != nil {
		t.Fatal(err)
	}
	res, err := MonteCarlo(m, MonteCarloConfig{NSimulations: 200, Seed: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NPV == nil {
		t.Fatal("expected NPV summary in NPV mode")
	}
	if len(res.NPVSamples) != 200 {
		t.Errorf("expected 200 NPV samples, got %d", len(res.NPVSamples))
	}
	if len(res.MonthlyCashflow) != 12 {
		t.Errorf("expected 12 monthly cashflow summaries, got %d", len(res.MonthlyCashflow))
	}
	if !(res.NPV.P10 <= res.NPV.Median && res.NPV.Median <= res.NPV.P90) {
		t.Errorf("percentiles not ordered: P10=%v Median=%v P90=%v", res.NPV.P10, res.NPV.Median, res.NPV.P90)
	}
}

func TestMonteCarloIRRModeTracksFailures(t *testing.T) {
	settings := npvSettings(6, 0.12, 0)
	settings.CalculationMode = model.ModeIRR
	m := model.New("mc-irr", settings)
	// An all-positive stream never has a sign change, so every simulation
	// should fail to find an IRR.
	if err := m.AddStream(model.Stream{ID: "rev", Kind: model.Revenue, Amount: fixed(100)}); err != nil {
		t.Fatal(err)
	}
	res, err := MonteCarlo(m, MonteCarloConfig{NSimulations: 50, Seed: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IRRFailedCount != 50 {
		t.Errorf("expected all 50 simulations to fail to find an IRR, got %d failures", res.IRRFailedCount)
	}
	if res.NPV != nil {
		t.Error("IRR mode should not populate an NPV summary")
	}
}

func TestMonteCarloClampsDiscountRateBelowGrowth(t *testing.T) {
	end := 5
	settings := npvSettings(6, 0.001, 0.05)
	settings.DiscountRate = distribution.Distribution{Kind: distribution.Uniform, Params: map[string]float64{"min": -0.01, "max": 0.01}}
	m := model.New("mc-clamp", settings)
	if err := m.AddStream(model.Stream{ID: "rev", Kind: model.Revenue, EndMonth: &end, Amount: fixed(100)}); err != nil {
		t.Fatal(err)
	}
	res, err := MonteCarlo(m, MonteCarloConfig{NSimulations: 20, Seed: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.DiscountRateClampedCount == 0 {
		t.Error("expected at least one clamped discount-rate draw")
	}
}
