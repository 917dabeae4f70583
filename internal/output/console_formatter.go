package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/rpgo/qol-retirement/internal/domain"
	money "github.com/rpgo/qol-retirement/pkg/decimal"
)

// maxConsolePoints bounds the sweep points listed in the console report.
const maxConsolePoints = 40

// ConsoleFormatter renders a plain-text report via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	switch {
	case report.Simulation != nil:
		writeSimulation(&buf, report.Scenario, report.Simulation)
	case report.Comparison != nil:
		writeComparison(&buf, report.Scenario, report.Comparison)
	case report.Sweep != nil:
		writeSweep(&buf, report.Scenario, report.Sweep)
	default:
		return nil, fmt.Errorf("empty report")
	}
	return buf.Bytes(), nil
}

func writeHeading(buf *bytes.Buffer, title, scenario string) {
	fmt.Fprintln(buf, title)
	fmt.Fprintln(buf, strings.Repeat("=", len(title)))
	if scenario != "" {
		fmt.Fprintf(buf, "Scenario: %s\n", scenario)
	}
}

func writeSimulation(buf *bytes.Buffer, scenario string, sim *SimulationReport) {
	cfg := sim.Config
	sum := sim.Summary
	risk := sim.Risk

	writeHeading(buf, "QOL RETIREMENT SIMULATION", scenario)
	fmt.Fprintf(buf, "Paths: %d  Horizon: %d years from age %d  Seed: %d\n", cfg.NumPaths, cfg.HorizonYears, cfg.StartingAge, sim.Seed)
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "KEY ASSUMPTIONS:")
	for _, a := range GenerateAssumptions(cfg) {
		fmt.Fprintf(buf, "• %s\n", a)
	}
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "PORTFOLIO OUTCOMES")
	fmt.Fprintln(buf, "------------------")
	fmt.Fprintf(buf, "  Starting Value:          %s\n", FormatDollars(cfg.StartingValue))
	fmt.Fprintf(buf, "  Success Rate:            %s\n", FormatRate(sum.SuccessRate))
	fmt.Fprintf(buf, "  Final Value (mean):      %s\n", FormatMoney(sum.FinalValueMean))
	fmt.Fprintf(buf, "  Final Value (median):    %s\n", FormatMoney(sum.FinalValueMedian))
	fmt.Fprintf(buf, "  Final Value 10th-90th:   %s - %s\n", FormatMoney(sum.FinalValuePercentiles.P10), FormatMoney(sum.FinalValuePercentiles.P90))
	fmt.Fprintf(buf, "  Total Withdrawn (mean):  %s\n", FormatMoney(sum.TotalWithdrawnMean))
	if cfg.HorizonYears > 0 {
		first := money.NewMoneyFromDecimal(sum.FirstYearWithdrawal)
		fmt.Fprintf(buf, "  First-Year Withdrawal:   %s (%s/month)\n", first.FormatWhole(), first.Monthly().FormatWhole())
		fmt.Fprintf(buf, "  Withdrawal Volatility:   %s\n", FormatMoney(sum.WithdrawalVolatility))
	}
	if cfg.Strategy != nil && cfg.Strategy.UsesQOL() && sum.QOLMax > 0 {
		fmt.Fprintf(buf, "  QOL Factor:              %.3f mean (%.3f - %.3f)\n", sum.QOLMean, sum.QOLMin, sum.QOLMax)
	}
	fmt.Fprintln(buf)

	if risk == nil {
		return
	}
	fmt.Fprintln(buf, "DEPLETION RISK")
	fmt.Fprintln(buf, "--------------")
	fmt.Fprintf(buf, "  Depleted Paths:          %d of %d (%s)\n", risk.DepletedPaths, risk.NumPaths, FormatRate(risk.DepletionRate))
	fmt.Fprintf(buf, "  Median Depletion Age:    %s\n", FormatAge(risk.MedianDepletionAge))
	fmt.Fprintf(buf, "  Earliest Depletion Age:  %s\n", FormatAge(risk.EarliestDepletionAge))
	fmt.Fprintf(buf, "  Depletion Age 10th-90th: %s - %s\n", FormatAge(risk.DepletionAges.P10), FormatAge(risk.DepletionAges.P90))
	fmt.Fprintf(buf, "  VaR 95%% / 99%% Age:       %s / %s\n", FormatAge(risk.VaR95Age), FormatAge(risk.VaR99Age))
	for _, m := range risk.Milestones {
		fmt.Fprintf(buf, "  Survival to Age %-3d:     %s\n", m.Age, FormatRate(m.Survival))
	}
}

func writeComparison(buf *bytes.Buffer, scenario string, cmp *domain.StrategyComparison) {
	writeHeading(buf, "QOL STRATEGY COMPARISON", scenario)
	fmt.Fprintf(buf, "Paths: %d  Horizon: %d years from age %d  Seed: %d\n", cmp.NumPaths, cmp.HorizonYears, cmp.StartingAge, cmp.Seed)
	fmt.Fprintln(buf)

	fmt.Fprintf(buf, "%-22s %9s %10s %14s %14s %14s %8s\n", "Strategy", "Success", "Survive90", "Median Final", "First Year", "Utility", "Early")
	fmt.Fprintln(buf, strings.Repeat("-", 97))
	for _, s := range cmp.Strategies {
		fmt.Fprintf(buf, "%-22s %9s %10s %14s %14s %14s %8s\n",
			truncate(s.Label, 22),
			FormatRate(s.SuccessRate),
			FormatRate(s.SurvivalAt90),
			money.NewMoneyFromDecimal(s.MedianFinalValue).FormatWhole(),
			money.NewMoneyFromDecimal(s.FirstYearMean).FormatWhole(),
			money.NewMoneyFromDecimal(s.Enjoyment.MeanUtility).FormatWhole(),
			FormatRate(s.Enjoyment.EarlyConcentration.Float64()),
		)
	}
	fmt.Fprintln(buf)

	if len(cmp.TradeOffs) > 0 {
		fmt.Fprintln(buf, "TRADE-OFFS")
		fmt.Fprintln(buf, "----------")
		for _, t := range cmp.TradeOffs {
			fmt.Fprintf(buf, "  %s vs %s: enjoyment %s%%, risk penalty %.1f pts, risk-adjusted %s, early years %s%%\n",
				t.Strategy, t.Baseline,
				FormatRatio(t.EnjoymentPremiumPct, 1),
				t.RiskPenaltyPct,
				FormatRatio(t.RiskAdjustedEnjoyment, 2),
				FormatRatio(t.EarlyYearsAdvantage, 1),
			)
		}
		fmt.Fprintln(buf)
	}

	fmt.Fprintf(buf, "Most Enjoyment: %s\n", cmp.MostEnjoyment)
	fmt.Fprintf(buf, "Safest:         %s\n", cmp.SafestStrategy)
	if rec := AnalyzeComparison(cmp); rec.Strategy != "" {
		fmt.Fprintf(buf, "Recommended:    %s (success %s, %.1f pts below the safest)\n", rec.Strategy, FormatRate(rec.SuccessRate), rec.SuccessGap*100)
	}
}

func writeSweep(buf *bytes.Buffer, scenario string, res *calculation.SweepResult) {
	writeHeading(buf, "QOL SENSITIVITY SWEEP", scenario)
	fmt.Fprintf(buf, "Mode: %s  Parameters: %s  Seed: %d\n", res.Mode, strings.Join(res.ParameterNames, ", "), res.Seed)
	fmt.Fprintf(buf, "Combinations: %d total, %d evaluated, %d failed, %d skipped\n", res.TotalCombinations, res.Evaluated, res.Failed, res.Skipped)
	if res.Cancelled {
		fmt.Fprintln(buf, "Sweep was cancelled; results are partial.")
	}
	fmt.Fprintln(buf)

	if res.Grid != nil {
		writeGrid(buf, res)
	} else {
		writePoints(buf, res)
	}

	if len(res.Optimal) > 0 {
		fmt.Fprintln(buf, "OPTIMA")
		fmt.Fprintln(buf, "------")
		for _, o := range res.Optimal {
			fmt.Fprintf(buf, "  %-18s %s at %s\n", o.Objective, formatMetric(o.Objective, o.Value), formatParameters(o.Parameters))
		}
	}
}

func writePoints(buf *bytes.Buffer, res *calculation.SweepResult) {
	fmt.Fprintf(buf, "%-34s %10s %10s %14s %14s\n", "Parameters", "Depletion", "Survival", "Mean Final", "Median Final")
	fmt.Fprintln(buf, strings.Repeat("-", 86))
	for i, p := range res.Points {
		if i == maxConsolePoints {
			fmt.Fprintf(buf, "... %d more points; use json or csv for the full list\n", len(res.Points)-maxConsolePoints)
			break
		}
		params := truncate(formatParameters(p.Parameters), 34)
		if !p.OK() {
			fmt.Fprintf(buf, "%-34s %s: %s\n", params, p.Status, p.Reason)
			continue
		}
		s := p.Summary
		fmt.Fprintf(buf, "%-34s %10s %10s %14s %14s\n", params, FormatRate(s.DepletionRate), FormatRate(s.SurvivalRate), FormatMoney(s.FinalValueMean), FormatMoney(s.FinalValueMedian))
	}
	fmt.Fprintln(buf)
}

// writeGrid prints the survival-rate grid with the first parameter across.
func writeGrid(buf *bytes.Buffer, res *calculation.SweepResult) {
	g := res.Grid
	fmt.Fprintf(buf, "SURVIVAL RATE (%s across, %s down)\n", res.ParameterNames[0], res.ParameterNames[1])
	fmt.Fprintf(buf, "%10s", "")
	for _, v1 := range g.Values1 {
		fmt.Fprintf(buf, " %9g", v1)
	}
	fmt.Fprintln(buf)
	for j, v2 := range g.Values2 {
		fmt.Fprintf(buf, "%10g", v2)
		for i := range g.Values1 {
			fmt.Fprintf(buf, " %9s", FormatRate(g.SurvivalRates[j][i].Float64()))
		}
		fmt.Fprintln(buf)
	}
	fmt.Fprintln(buf)
}

func formatParameters(params []calculation.ParameterValue) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s=%g", p.Name, p.Value)
	}
	return strings.Join(parts, " ")
}

func formatMetric(o calculation.Objective, v float64) string {
	switch o {
	case calculation.ObjectiveFinalValueMean, calculation.ObjectiveFinalValueMedian:
		return FormatDollars(v)
	}
	return FormatRate(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "~"
}
