package cashflow

import (
	"math"
	"testing"

	"github.com/areumfire/dcf-engine/internal/distribution"
	"github.com/areumfire/dcf-engine/internal/model"
	"github.com/areumfire/dcf-engine/internal/rng"
)

func fixed(v float64) *distribution.Distribution {
	return &distribution.Distribution{Kind: distribution.Fixed, Params: map[string]float64{"value": v}}
}

func settingsN(forecastMonths int) model.ModelSettings {
	return model.ModelSettings{
		ForecastMonths:  forecastMonths,
		DiscountRate:    distribution.Distribution{Kind: distribution.Fixed, Params: map[string]float64{"value": 0.12}},
		CalculationMode: model.ModeNPV,
	}
}

// Flat revenue, 12 months, no escalation/adoption.
func TestBuildRootFlatRevenue(t *testing.T) {
	end := 11
	s := model.Stream{ID: "rev", Kind: model.Revenue, StartMonth: 0, EndMonth: &end, Amount: fixed(1000)}
	got, err := Build(s, Deterministic(), nil, settingsN(12), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for m, v := range got {
		if v != 1000 {
			t.Errorf("month %d: got %v, want 1000", m, v)
		}
	}
}

// A positive cost amount still produces negative cashflow.
func TestBuildRootCostSign(t *testing.T) {
	end := 5
	s := model.Stream{ID: "cost", Kind: model.Cost, StartMonth: 0, EndMonth: &end, Amount: fixed(500)}
	got, err := Build(s, Deterministic(), nil, settingsN(12), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{-500, -500, -500, -500, -500, -500, 0, 0, 0, 0, 0, 0}
	for m := range want {
		if got[m] != want[m] {
			t.Errorf("month %d: got %v, want %v", m, got[m], want[m])
		}
	}
}

// Ratio child with a one-month trigger delay, no periodicity.
func TestBuildChildRatioWithDelay(t *testing.T) {
	parentEnd := 11
	parent := model.Stream{ID: "parent", Kind: model.Revenue, StartMonth: 0, EndMonth: &parentEnd, Amount: fixed(1000)}
	settings := settingsN(13)
	parentCF, err := Build(parent, Deterministic(), nil, settings, nil)
	if err != nil {
		t.Fatalf("parent build: %v", err)
	}

	parentID := "parent"
	child := model.Stream{
		ID: "child", Kind: model.Cost, ParentStreamID: &parentID,
		Amount: fixed(0.2), AmountIsRatio: true, ConversionRate: 1, TriggerDelayMonths: 1,
	}
	got, err := Build(child, Deterministic(), parentCF, settings, nil)
	if err != nil {
		t.Fatalf("child build: %v", err)
	}

	if got[0] != 0 {
		t.Errorf("month 0: got %v, want 0", got[0])
	}
	for m := 1; m <= 12; m++ {
		if got[m] != -200 {
			t.Errorf("month %d: got %v, want -200", m, got[m])
		}
	}
}

// Periodic child: one event every third parent month.
func TestBuildChildPeriodic(t *testing.T) {
	parentEnd := 11
	parent := model.Stream{ID: "parent", Kind: model.Revenue, StartMonth: 0, EndMonth: &parentEnd, Amount: fixed(1000)}
	settings := settingsN(13)
	parentCF, err := Build(parent, Deterministic(), nil, settings, nil)
	if err != nil {
		t.Fatalf("parent build: %v", err)
	}

	parentID := "parent"
	periodicity := 3
	child := model.Stream{
		ID: "child", Kind: model.Revenue, ParentStreamID: &parentID,
		Amount: fixed(100), ConversionRate: 0.5, PeriodicityMonths: &periodicity,
	}
	got, err := Build(child, Deterministic(), parentCF, settings, nil)
	if err != nil {
		t.Fatalf("child build: %v", err)
	}

	for m, v := range got {
		want := 0.0
		if m <= 11 && m%3 == 0 {
			want = 50
		}
		if v != want {
			t.Errorf("month %d: got %v, want %v", m, v, want)
		}
	}
}

// Property: a root stream's cashflow is 0 outside its active window.
func TestBuildRootWindowIsZeroOutside(t *testing.T) {
	start, end := 3, 6
	s := model.Stream{ID: "s", Kind: model.Revenue, StartMonth: start, EndMonth: &end, Amount: fixed(10)}
	got, err := Build(s, Deterministic(), nil, settingsN(12), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for m, v := range got {
		if m < start || m > end {
			if v != 0 {
				t.Errorf("month %d outside [%d,%d]: got %v, want 0", m, start, end, v)
			}
		} else if v == 0 {
			t.Errorf("month %d inside window: got 0, want nonzero", m)
		}
	}
}

// Property: child cashflow is no less sparse than the parent's non-zero set
// (every child event traces back to a non-zero parent month).
func TestBuildChildSparsity(t *testing.T) {
	parentEnd := 11
	parent := model.Stream{ID: "parent", Kind: model.Revenue, StartMonth: 6, EndMonth: &parentEnd, Amount: fixed(1000)}
	settings := settingsN(12)
	parentCF, err := Build(parent, Deterministic(), nil, settings, nil)
	if err != nil {
		t.Fatalf("parent build: %v", err)
	}
	parentID := "parent"
	child := model.Stream{
		ID: "child", Kind: model.Revenue, ParentStreamID: &parentID,
		Amount: fixed(1), ConversionRate: 1,
	}
	got, err := Build(child, Deterministic(), parentCF, settings, nil)
	if err != nil {
		t.Fatalf("child build: %v", err)
	}
	for m := 0; m < 6; m++ {
		if got[m] != 0 {
			t.Errorf("month %d: parent inactive, child should be 0, got %v", m, got[m])
		}
	}
}

// Property: increasing conversion_rate never decreases the magnitude of a
// child's cashflow at any month (monotonicity).
func TestBuildChildConversionRateMonotone(t *testing.T) {
	parentEnd := 5
	parent := model.Stream{ID: "parent", Kind: model.Revenue, StartMonth: 0, EndMonth: &parentEnd, Amount: fixed(1000)}
	settings := settingsN(12)
	parentCF, err := Build(parent, Deterministic(), nil, settings, nil)
	if err != nil {
		t.Fatalf("parent build: %v", err)
	}
	parentID := "parent"
	low := model.Stream{ID: "low", Kind: model.Revenue, ParentStreamID: &parentID, Amount: fixed(1), ConversionRate: 0.2}
	high := model.Stream{ID: "high", Kind: model.Revenue, ParentStreamID: &parentID, Amount: fixed(1), ConversionRate: 0.8}

	lowCF, err := Build(low, Deterministic(), parentCF, settings, nil)
	if err != nil {
		t.Fatalf("low build: %v", err)
	}
	highCF, err := Build(high, Deterministic(), parentCF, settings, nil)
	if err != nil {
		t.Fatalf("high build: %v", err)
	}
	for m := range lowCF {
		if math.Abs(highCF[m]) < math.Abs(lowCF[m]) {
			t.Errorf("month %d: higher conversion_rate produced smaller magnitude (%v < %v)", m, highCF[m], lowCF[m])
		}
	}
}

// A fixed override replaces the named distribution's draw regardless of
// Mode, leaving every other distribution on the stream untouched.
func TestSamplingPolicyOverrideWins(t *testing.T) {
	s := model.Stream{ID: "rev", Kind: model.Revenue, Amount: fixed(1000)}
	end := 5
	s.EndMonth = &end
	policy := Deterministic().WithOverride("rev.amount", 42)
	got, err := Build(s, policy, nil, settingsN(12), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 42 {
		t.Errorf("override ignored: got %v, want 42", got[0])
	}
}

func TestBuildChildEscalation(t *testing.T) {
	parentEnd := 3
	parent := model.Stream{ID: "parent", Kind: model.Revenue, StartMonth: 0, EndMonth: &parentEnd, Amount: fixed(100)}
	settings := settingsN(6)
	escalation := fixed(0.12)
	settings.EscalationRate = escalation
	parentCF, err := Build(parent, Deterministic(), nil, settings, nil)
	if err != nil {
		t.Fatalf("parent build: %v", err)
	}
	parentID := "parent"
	child := model.Stream{ID: "child", Kind: model.Revenue, ParentStreamID: &parentID, Amount: fixed(10), ConversionRate: 1}
	got, err := Build(child, Deterministic(), parentCF, settings, nil)
	if err != nil {
		t.Fatalf("child build: %v", err)
	}
	want := 10 * math.Pow(1+0.12/12, 2)
	if math.Abs(got[2]-want) > 1e-9 {
		t.Errorf("escalated event at month 2: got %v, want %v", got[2], want)
	}
}

func TestBuildStochasticRuns(t *testing.T) {
	s := model.Stream{
		ID: "rev", Kind: model.Revenue,
		Amount: &distribution.Distribution{Kind: distribution.Normal, Params: map[string]float64{"mean": 100, "std": 10}},
	}
	end := 11
	s.EndMonth = &end
	src := rng.New(7)
	got, err := Build(s, Stochastic(), nil, settingsN(12), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 12 {
		t.Fatalf("expected 12 months, got %d", len(got))
	}
}
