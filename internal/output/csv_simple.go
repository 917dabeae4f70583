package output

import (
	"bytes"
	"encoding/csv"
	"errors"

	"github.com/rpgo/qol-retirement/internal/calculation"
	"github.com/rpgo/qol-retirement/internal/domain"
)

// CSVSummarizer writes the primary table of a report: metric rows for a
// simulation, one row per strategy for a comparison, one row per point for a sweep.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *Report) ([]byte, error) {
	var rows [][]string
	switch {
	case report.Simulation != nil:
		rows = simulationRows(report.Simulation)
	case report.Comparison != nil:
		rows = comparisonRows(report.Comparison)
	case report.Sweep != nil:
		rows = sweepRows(report.Sweep)
	default:
		return nil, errors.New("empty report")
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func simulationRows(sim *SimulationReport) [][]string {
	sum := sim.Summary
	rows := [][]string{
		{"Metric", "Value"},
		{"Seed", formatInt64(sim.Seed)},
		{"NumPaths", intToString(sim.Config.NumPaths)},
		{"HorizonYears", intToString(sim.Config.HorizonYears)},
		{"StartingValue", formatFloat(sim.Config.StartingValue)},
		{"SuccessRate", formatFloat(sum.SuccessRate)},
		{"FinalValueMean", sum.FinalValueMean.StringFixed(2)},
		{"FinalValueMedian", sum.FinalValueMedian.StringFixed(2)},
		{"FinalValueStdDev", sum.FinalValueStdDev.StringFixed(2)},
		{"FinalValueP10", sum.FinalValuePercentiles.P10.StringFixed(2)},
		{"FinalValueP90", sum.FinalValuePercentiles.P90.StringFixed(2)},
		{"TotalWithdrawnMean", sum.TotalWithdrawnMean.StringFixed(2)},
		{"FirstYearWithdrawalMean", sum.FirstYearWithdrawal.StringFixed(2)},
		{"AnnualWithdrawalMean", sum.AnnualWithdrawalMean.StringFixed(2)},
		{"WithdrawalVolatility", sum.WithdrawalVolatility.StringFixed(2)},
		{"QOLMean", formatFloat(sum.QOLMean)},
	}
	if risk := sim.Risk; risk != nil {
		rows = append(rows,
			[]string{"DepletionRate", formatFloat(risk.DepletionRate)},
			[]string{"MedianDepletionAge", risk.MedianDepletionAge.String()},
			[]string{"EarliestDepletionAge", risk.EarliestDepletionAge.String()},
			[]string{"VaR95Age", risk.VaR95Age.String()},
			[]string{"VaR99Age", risk.VaR99Age.String()},
		)
		for _, m := range risk.Milestones {
			rows = append(rows, []string{"SurvivalToAge" + intToString(m.Age), formatFloat(m.Survival)})
		}
	}
	return rows
}

func comparisonRows(cmp *domain.StrategyComparison) [][]string {
	rows := [][]string{{
		"Strategy", "Kind", "SuccessRate", "DepletionRate", "SurvivalAt90", "MedianDepletionAge",
		"MeanFinalValue", "MedianFinalValue", "P10FinalValue", "P90FinalValue", "MeanTotalWithdrawn",
		"FirstYearWithdrawal", "MeanUtility", "EarlyConcentration", "ActiveConcentration", "CostPerEnjoymentDollar",
	}}
	for _, s := range cmp.Strategies {
		rows = append(rows, []string{
			s.Label,
			s.Kind,
			formatFloat(s.SuccessRate),
			formatFloat(s.DepletionRate),
			formatFloat(s.SurvivalAt90),
			s.MedianDepletion.String(),
			s.MeanFinalValue.StringFixed(2),
			s.MedianFinalValue.StringFixed(2),
			s.P10FinalValue.StringFixed(2),
			s.P90FinalValue.StringFixed(2),
			s.MeanTotalWithdraw.StringFixed(2),
			s.FirstYearMean.StringFixed(2),
			s.Enjoyment.MeanUtility.StringFixed(2),
			s.Enjoyment.EarlyConcentration.String(),
			s.Enjoyment.ActiveConcentration.String(),
			s.Enjoyment.CostPerEnjoymentDollar.String(),
		})
	}
	return rows
}

func sweepRows(res *calculation.SweepResult) [][]string {
	header := []string{"Index"}
	header = append(header, res.ParameterNames...)
	header = append(header, "Status", "DepletionRate", "SurvivalRate", "FinalValueMean", "FinalValueMedian", "Reason")
	rows := [][]string{header}
	for _, p := range res.Points {
		row := []string{intToString(p.Index)}
		for _, pv := range p.Parameters {
			row = append(row, formatFloat(pv.Value))
		}
		row = append(row, string(p.Status))
		if p.OK() {
			s := p.Summary
			row = append(row, formatFloat(s.DepletionRate), formatFloat(s.SurvivalRate), s.FinalValueMean.StringFixed(2), s.FinalValueMedian.StringFixed(2))
		} else {
			row = append(row, "", "", "", "")
		}
		rows = append(rows, append(row, p.Reason))
	}
	return rows
}
