package calculation

import "fmt"

// StrategyKind identifies a withdrawal strategy variant.
type StrategyKind string

const (
	KindFixedReal        StrategyKind = "fixed_real"
	KindQOLPhased        StrategyKind = "qol_phased"
	KindPercentOfCurrent StrategyKind = "percent_of_current"
	KindFixedNominal     StrategyKind = "fixed_nominal"
)

// MaxWithdrawalShare caps a single year's withdrawal as a share of the pre-withdrawal value.
const MaxWithdrawalShare = 0.95

// InflationState carries the cumulative inflation factor between years.
// It is a value: Advance returns the next state and never mutates the receiver,
// so a withdrawal computed from a state always sees the pre-update factor.
type InflationState struct {
	factor float64
}

// NewInflationState returns the year-0 state (factor 1).
func NewInflationState() InflationState { return InflationState{factor: 1} }

// Factor is the cumulative price level relative to year 0.
func (s InflationState) Factor() float64 { return s.factor }

// Advance applies one year of inflation.
func (s InflationState) Advance(inflation float64) InflationState {
	return InflationState{factor: s.factor * (1 + inflation)}
}

// WithdrawalContext is everything a strategy may look at for one year.
type WithdrawalContext struct {
	Year          int
	Age           int
	StartingValue float64
	CurrentValue  float64
	Inflation     InflationState
	QOLFactor     float64
}

// WithdrawalStrategy is the closed set of supported strategies.
// Each variant carries its own parameters.
type WithdrawalStrategy interface {
	Kind() StrategyKind
	// Withdrawal returns the uncapped amount requested for the year.
	Withdrawal(ctx WithdrawalContext) float64
	// UsesQOL reports whether the strategy consumes the QOL factor.
	UsesQOL() bool
	Validate() error
	withdrawalStrategy()
}

// FixedReal withdraws Rate of the starting value, grown with cumulative inflation.
type FixedReal struct {
	Rate float64 `json:"rate"`
}

func (FixedReal) Kind() StrategyKind { return KindFixedReal }
func (FixedReal) UsesQOL() bool      { return false }

func (FixedReal) withdrawalStrategy() {}

func (s FixedReal) Withdrawal(ctx WithdrawalContext) float64 {
	return ctx.StartingValue * s.Rate * ctx.Inflation.Factor()
}

func (s FixedReal) Validate() error { return checkUnitInterval("strategy.rate", s.Rate) }

// FixedNominal withdraws Rate of the starting value every year with no inflation adjustment.
type FixedNominal struct {
	Rate float64 `json:"rate"`
}

func (FixedNominal) Kind() StrategyKind { return KindFixedNominal }
func (FixedNominal) UsesQOL() bool      { return false }

func (FixedNominal) withdrawalStrategy() {}

func (s FixedNominal) Withdrawal(ctx WithdrawalContext) float64 {
	return ctx.StartingValue * s.Rate
}

func (s FixedNominal) Validate() error { return checkUnitInterval("strategy.rate", s.Rate) }

// PercentOfCurrent withdraws Rate of the current balance.
type PercentOfCurrent struct {
	Rate float64 `json:"rate"`
}

func (PercentOfCurrent) Kind() StrategyKind { return KindPercentOfCurrent }
func (PercentOfCurrent) UsesQOL() bool      { return false }

func (PercentOfCurrent) withdrawalStrategy() {}

func (s PercentOfCurrent) Withdrawal(ctx WithdrawalContext) float64 {
	return ctx.CurrentValue * s.Rate
}

func (s PercentOfCurrent) Validate() error { return checkUnitInterval("strategy.rate", s.Rate) }

// QOLPhase is one of the three spending phases.
type QOLPhase int

const (
	Phase1 QOLPhase = iota + 1
	Phase2
	Phase3
)

func (p QOLPhase) String() string { return fmt.Sprintf("phase%d", int(p)) }

// QOLPhased scales the inflation-adjusted baseline (StartingValue × BaseRate)
// by PhaseRates[phase]/BaseRate. Phase1 covers years [0, Phase1End),
// Phase2 covers [Phase1End, Phase2End), Phase3 everything after.
type QOLPhased struct {
	BaseRate   float64    `json:"base_rate"`
	PhaseRates [3]float64 `json:"phase_rates"`
	Phase1End  int        `json:"phase1_end"`
	Phase2End  int        `json:"phase2_end"`
}

// DefaultQOLPhased returns the 5.4% / 4.5% / 3.5% schedule over a 4% base.
func DefaultQOLPhased() QOLPhased {
	return QOLPhased{
		BaseRate:   0.04,
		PhaseRates: [3]float64{0.054, 0.045, 0.035},
		Phase1End:  10,
		Phase2End:  20,
	}
}

func (QOLPhased) Kind() StrategyKind { return KindQOLPhased }
func (QOLPhased) UsesQOL() bool      { return true }

func (QOLPhased) withdrawalStrategy() {}

// Phase returns the phase active in the given year. Phases only move forward.
func (s QOLPhased) Phase(year int) QOLPhase {
	switch {
	case year < s.Phase1End:
		return Phase1
	case year < s.Phase2End:
		return Phase2
	default:
		return Phase3
	}
}

// Multiplier returns the phase rate relative to the base rate.
func (s QOLPhased) Multiplier(year int) float64 {
	if s.BaseRate == 0 {
		return 0
	}
	return s.PhaseRates[s.Phase(year)-1] / s.BaseRate
}

func (s QOLPhased) Withdrawal(ctx WithdrawalContext) float64 {
	baseline := ctx.StartingValue * s.BaseRate * ctx.Inflation.Factor()
	return baseline * s.Multiplier(ctx.Year) * ctx.QOLFactor
}

func (s QOLPhased) Validate() error {
	if err := checkUnitInterval("strategy.rate", s.BaseRate); err != nil {
		return err
	}
	if s.BaseRate == 0 {
		return configError("strategy.rate", "base rate must be positive for qol_phased")
	}
	for i, r := range s.PhaseRates {
		if err := checkUnitInterval(fmt.Sprintf("strategy.phase%d_rate", i+1), r); err != nil {
			return err
		}
	}
	if s.Phase1End < 0 || s.Phase2End < s.Phase1End {
		return configError("strategy.phase_ends", "must satisfy 0 <= phase1_end <= phase2_end, got %d, %d", s.Phase1End, s.Phase2End)
	}
	return nil
}

// CapWithdrawal limits a requested withdrawal to MaxWithdrawalShare of the
// pre-withdrawal value. A depleted portfolio withdraws nothing.
func CapWithdrawal(requested, preWithdrawal float64) float64 {
	if preWithdrawal <= 0 || requested <= 0 {
		return 0
	}
	if limit := preWithdrawal * MaxWithdrawalShare; requested > limit {
		return limit
	}
	return requested
}

// ParseStrategyKind maps a configuration string onto a StrategyKind.
// Legacy names from older scenario files are accepted as aliases.
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch s {
	case string(KindFixedReal), "trinity_4pct", "trinity":
		return KindFixedReal, nil
	case string(KindQOLPhased), "hauenstein", "qol", "custom":
		return KindQOLPhased, nil
	case string(KindPercentOfCurrent), "dynamic_4pct", "dynamic":
		return KindPercentOfCurrent, nil
	case string(KindFixedNominal), "fixed_4pct":
		return KindFixedNominal, nil
	}
	return "", configError("strategy.kind", "unknown withdrawal strategy %q", s)
}
