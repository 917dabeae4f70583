package output

import (
	"math"
	"strconv"

	"github.com/rpgo/qol-retirement/internal/domain"
	money "github.com/rpgo/qol-retirement/pkg/decimal"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal as USD currency with 2 decimals.
// Kept here so it can be reused by multiple formatters and unit tested in isolation.
func FormatCurrency(amount decimal.Decimal) string { return "$" + amount.StringFixed(2) }

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// FormatDollars formats an engine amount in whole dollars with separators.
func FormatDollars(amount float64) string { return money.NewMoney(amount).FormatWhole() }

// FormatMoney formats a cent-rounded summary amount in whole dollars.
func FormatMoney(amount decimal.Decimal) string { return money.NewMoneyFromDecimal(amount).FormatWhole() }

// FormatRate formats a 0..1 rate as a percentage with one decimal.
func FormatRate(rate float64) string {
	if math.IsNaN(rate) {
		return "n/a"
	}
	return strconv.FormatFloat(rate*100, 'f', 1, 64) + "%"
}

// FormatRatio renders a derived ratio, spelling out the sentinels.
func FormatRatio(r domain.Ratio, digits int) string {
	if r.IsUndefined() || r.IsUnbounded() {
		return r.String()
	}
	return strconv.FormatFloat(r.Float64(), 'f', digits, 64)
}

// FormatAge renders a depletion age or year with one decimal, or "never".
func FormatAge(d domain.DepletionYear) string {
	if d.IsNever() {
		return "never"
	}
	return strconv.FormatFloat(d.Float64(), 'f', 1, 64)
}

// formatFloat is the plain CSV rendering of an engine value. NaN becomes empty.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func intToString(i int) string { return strconv.Itoa(i) }

func formatInt64(i int64) string { return strconv.FormatInt(i, 10) }

func boolToString(b bool) string { return strconv.FormatBool(b) }
