package output

import (
	"fmt"

	calc "github.com/rpgo/qol-retirement/internal/calculation"
)

// GenerateAssumptions lists the modeling assumptions behind a run, in the
// order they are printed in the console report.
func GenerateAssumptions(cfg calc.SimulationConfig) []string {
	m := cfg.Market
	out := []string{describeStrategy(cfg.Strategy)}

	switch m.Mode {
	case calc.MarketCorrelated:
		out = append(out, fmt.Sprintf("Returns: %d correlated asset classes", len(m.Assets)))
		for _, a := range m.Assets {
			out = append(out, fmt.Sprintf("  %s (%s sleeve, %.0f%%): %.1f%% mean, %.1f%% volatility", a.Name, a.Sleeve, a.Weight*100, a.Mean*100, a.Volatility*100))
		}
	default:
		out = append(out, fmt.Sprintf("Real portfolio return: %.1f%% mean, %.1f%% volatility", m.ReturnMean*100, m.ReturnVolatility*100))
	}

	if m.InflationStochastic {
		out = append(out, fmt.Sprintf("Inflation: %.1f%% mean, %.1f%% volatility", m.InflationMean*100, m.InflationVolatility*100))
	} else {
		out = append(out, fmt.Sprintf("Inflation: %.1f%% every year", m.InflationMean*100))
	}

	glide := cfg.GlidePath
	if glide == nil {
		glide = calc.DefaultGlidePath()
	}
	if glide.IsTable() {
		out = append(out, fmt.Sprintf("Glide path: table for ages %d-%d", glide.FirstAge, glide.LastAge))
	} else {
		out = append(out, fmt.Sprintf("Glide path: %d minus age, %d-%d%% equity", glide.Baseline, glide.MinEquity, glide.MaxEquity))
	}

	if cfg.Strategy != nil && cfg.Strategy.UsesQOL() {
		if cfg.QOLStochastic {
			out = append(out, fmt.Sprintf("QOL factor noise: %.0f%% volatility", cfg.QOLNoiseVolatility*100))
		} else {
			out = append(out, "QOL factor: deterministic")
		}
	}
	out = append(out,
		fmt.Sprintf("Withdrawals at the start of each year, capped at %.0f%% of the balance", calc.MaxWithdrawalShare*100),
		fmt.Sprintf("Depleted below %.1f%% of the starting value", cfg.DepletionThreshold*100),
	)
	return out
}

func describeStrategy(s calc.WithdrawalStrategy) string {
	switch st := s.(type) {
	case calc.FixedReal:
		return fmt.Sprintf("Strategy: %.1f%% of the starting value, inflation adjusted", st.Rate*100)
	case calc.FixedNominal:
		return fmt.Sprintf("Strategy: %.1f%% of the starting value, never adjusted", st.Rate*100)
	case calc.PercentOfCurrent:
		return fmt.Sprintf("Strategy: %.1f%% of the current balance", st.Rate*100)
	case calc.QOLPhased:
		return fmt.Sprintf("Strategy: QOL phased %.1f%% / %.1f%% / %.1f%% (years 0-%d, %d-%d, %d+)",
			st.PhaseRates[0]*100, st.PhaseRates[1]*100, st.PhaseRates[2]*100,
			st.Phase1End-1, st.Phase1End, st.Phase2End-1, st.Phase2End)
	case nil:
		return "Strategy: none"
	}
	return "Strategy: " + string(s.Kind())
}
