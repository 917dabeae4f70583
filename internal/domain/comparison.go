package domain

import (
	"github.com/shopspring/decimal"
)

// EnjoymentMetrics weighs a strategy's withdrawals by how much they are
// likely to be enjoyed at the age they are spent.
type EnjoymentMetrics struct {
	MeanUtility            decimal.Decimal `json:"mean_utility"`
	MeanTotalIncome        decimal.Decimal `json:"mean_total_income"`
	EarlyYearsIncome       decimal.Decimal `json:"early_years_income"`
	ActiveYearsIncome      decimal.Decimal `json:"active_years_income"`
	EarlyConcentration     Ratio           `json:"early_concentration"`
	ActiveConcentration    Ratio           `json:"active_concentration"`
	CostPerEnjoymentDollar Ratio           `json:"cost_per_enjoyment_dollar"`
}

// StrategySummary captures the headline numbers for one strategy run.
type StrategySummary struct {
	Label             string           `json:"label"`
	Kind              string           `json:"kind"`
	SuccessRate       float64          `json:"success_rate"`
	DepletionRate     float64          `json:"depletion_rate"`
	SurvivalAt90      float64          `json:"survival_at_90"`
	MedianDepletion   DepletionYear    `json:"median_depletion_age"`
	MeanFinalValue    decimal.Decimal  `json:"mean_final_value"`
	MedianFinalValue  decimal.Decimal  `json:"median_final_value"`
	P10FinalValue     decimal.Decimal  `json:"p10_final_value"`
	P90FinalValue     decimal.Decimal  `json:"p90_final_value"`
	MeanTotalWithdraw decimal.Decimal  `json:"mean_total_withdrawn"`
	FirstYearMean     decimal.Decimal  `json:"first_year_withdrawal_mean"`
	Enjoyment         EnjoymentMetrics `json:"enjoyment"`
}

// TradeOff compares a QOL strategy against a baseline strategy.
type TradeOff struct {
	Strategy              string          `json:"strategy"`
	Baseline              string          `json:"baseline"`
	EnjoymentPremiumPct   Ratio           `json:"enjoyment_premium_pct"`
	RiskPenaltyPct        float64         `json:"risk_penalty_pct"`
	RiskAdjustedEnjoyment Ratio           `json:"risk_adjusted_enjoyment"`
	EarlyYearsAdvantage   Ratio           `json:"early_years_advantage_pct"`
	FinalValueDifference  decimal.Decimal `json:"final_value_difference"`
}

// StrategyComparison is the result of running several strategies under one seed.
type StrategyComparison struct {
	Seed         int64             `json:"seed"`
	NumPaths     int               `json:"num_paths"`
	HorizonYears int               `json:"horizon_years"`
	StartingAge  int               `json:"starting_age"`
	Strategies   []StrategySummary `json:"strategies"`
	TradeOffs    []TradeOff        `json:"trade_offs,omitempty"`
	// MostEnjoyment and SafestStrategy are labels picked from Strategies.
	MostEnjoyment  string `json:"most_enjoyment"`
	SafestStrategy string `json:"safest_strategy"`
}
