package calculation

import (
	"errors"
	"math"
	"testing"
)

func TestWithdrawalStrategies(t *testing.T) {
	inflated := NewInflationState().Advance(0.03).Advance(0.02)
	ctx := WithdrawalContext{
		Year:          12,
		Age:           77,
		StartingValue: 1_000_000,
		CurrentValue:  800_000,
		Inflation:     inflated,
		QOLFactor:     1.1,
	}
	factor := 1.03 * 1.02

	testCases := []struct {
		name     string
		strategy WithdrawalStrategy
		expected float64
	}{
		{name: "fixed real", strategy: FixedReal{Rate: 0.04}, expected: 40000 * factor},
		{name: "fixed nominal", strategy: FixedNominal{Rate: 0.04}, expected: 40000},
		{name: "percent of current", strategy: PercentOfCurrent{Rate: 0.04}, expected: 32000},
		{name: "qol phase 2", strategy: DefaultQOLPhased(), expected: 45000 * factor * 1.1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.strategy.Withdrawal(ctx)
			if math.Abs(got-tc.expected) > 1e-6 {
				t.Errorf("Withdrawal = %.6f, want %.6f", got, tc.expected)
			}
		})
	}
}

func TestQOLPhased_Phases(t *testing.T) {
	s := DefaultQOLPhased()

	testCases := []struct {
		year       int
		phase      QOLPhase
		multiplier float64
	}{
		{year: 0, phase: Phase1, multiplier: 1.35},
		{year: 9, phase: Phase1, multiplier: 1.35},
		{year: 10, phase: Phase2, multiplier: 1.125},
		{year: 19, phase: Phase2, multiplier: 1.125},
		{year: 20, phase: Phase3, multiplier: 0.875},
		{year: 40, phase: Phase3, multiplier: 0.875},
	}

	for _, tc := range testCases {
		if got := s.Phase(tc.year); got != tc.phase {
			t.Errorf("year %d: phase = %v, want %v", tc.year, got, tc.phase)
		}
		if got := s.Multiplier(tc.year); math.Abs(got-tc.multiplier) > 1e-12 {
			t.Errorf("year %d: multiplier = %v, want %v", tc.year, got, tc.multiplier)
		}
	}
	if Phase3.String() != "phase3" {
		t.Errorf("Phase3.String() = %q", Phase3.String())
	}
}

func TestStrategyValidate(t *testing.T) {
	valid := []WithdrawalStrategy{
		FixedReal{Rate: 0.04},
		FixedNominal{Rate: 0},
		PercentOfCurrent{Rate: 1},
		DefaultQOLPhased(),
	}
	for _, s := range valid {
		if err := s.Validate(); err != nil {
			t.Errorf("%s: unexpected error %v", s.Kind(), err)
		}
	}

	invalid := []WithdrawalStrategy{
		FixedReal{Rate: -0.01},
		PercentOfCurrent{Rate: 1.5},
		QOLPhased{BaseRate: 0, PhaseRates: [3]float64{0.05, 0.04, 0.03}, Phase1End: 10, Phase2End: 20},
		QOLPhased{BaseRate: 0.04, PhaseRates: [3]float64{0.05, 1.2, 0.03}, Phase1End: 10, Phase2End: 20},
		QOLPhased{BaseRate: 0.04, PhaseRates: [3]float64{0.05, 0.04, 0.03}, Phase1End: 20, Phase2End: 10},
	}
	for i, s := range invalid {
		if err := s.Validate(); !errors.Is(err, ErrConfiguration) {
			t.Errorf("case %d (%s): expected configuration error, got %v", i, s.Kind(), err)
		}
	}
}

func TestCapWithdrawal(t *testing.T) {
	testCases := []struct {
		name      string
		requested float64
		value     float64
		expected  float64
	}{
		{name: "under cap", requested: 40000, value: 1_000_000, expected: 40000},
		{name: "over cap", requested: 200000, value: 100000, expected: 95000},
		{name: "depleted", requested: 40000, value: 0, expected: 0},
		{name: "negative request", requested: -5, value: 1000, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CapWithdrawal(tc.requested, tc.value); math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("CapWithdrawal(%v, %v) = %v, want %v", tc.requested, tc.value, got, tc.expected)
			}
		})
	}
}

func TestInflationState_Advance(t *testing.T) {
	s := NewInflationState()
	next := s.Advance(0.05)
	if s.Factor() != 1 {
		t.Errorf("Advance mutated the original state: %v", s.Factor())
	}
	if math.Abs(next.Factor()-1.05) > 1e-12 {
		t.Errorf("factor = %v, want 1.05", next.Factor())
	}
}

func TestParseStrategyKind(t *testing.T) {
	testCases := map[string]StrategyKind{
		"fixed_real":         KindFixedReal,
		"trinity_4pct":       KindFixedReal,
		"qol_phased":         KindQOLPhased,
		"hauenstein":         KindQOLPhased,
		"custom":             KindQOLPhased,
		"percent_of_current": KindPercentOfCurrent,
		"dynamic_4pct":       KindPercentOfCurrent,
		"fixed_4pct":         KindFixedNominal,
	}
	for input, want := range testCases {
		got, err := ParseStrategyKind(input)
		if err != nil || got != want {
			t.Errorf("ParseStrategyKind(%q) = %q, %v; want %q", input, got, err, want)
		}
	}

	if _, err := ParseStrategyKind("guardrails"); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected configuration error for unknown kind, got %v", err)
	}
}
