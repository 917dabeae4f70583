package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// DepletionYear is the zero-based simulated year in which a portfolio ran out,
// or Never when it survived the whole horizon. Percentile and VaR figures are
// expressed in the same unit and may be fractional.
type DepletionYear float64

// Never marks a portfolio (or a statistic over depleted portfolios) that did not deplete.
var Never = DepletionYear(math.Inf(1))

// IsNever reports whether d is the Never sentinel.
func (d DepletionYear) IsNever() bool { return math.IsInf(float64(d), 1) }

// Float64 returns the raw value (+Inf for Never).
func (d DepletionYear) Float64() float64 { return float64(d) }

// Age converts a depletion year into an age given the starting age.
func (d DepletionYear) Age(startingAge int) DepletionYear {
	if d.IsNever() {
		return Never
	}
	return d + DepletionYear(startingAge)
}

func (d DepletionYear) String() string {
	if d.IsNever() {
		return "never"
	}
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}

// MarshalJSON writes Never as the string "never".
func (d DepletionYear) MarshalJSON() ([]byte, error) {
	if d.IsNever() {
		return []byte(`"never"`), nil
	}
	if math.IsNaN(float64(d)) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(d), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number or "never".
func (d *DepletionYear) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte(`"never"`)) {
		*d = Never
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid depletion year %s: %w", string(data), err)
	}
	*d = DepletionYear(f)
	return nil
}

// Ratio is a derived convenience ratio. Degenerate denominators yield
// Unbounded instead of an error; an undefined value is NaN.
type Ratio float64

// Unbounded is the sentinel for a ratio whose denominator is zero or negative.
var Unbounded = Ratio(math.Inf(1))

// IsUnbounded reports whether r is infinite.
func (r Ratio) IsUnbounded() bool { return math.IsInf(float64(r), 0) }

// IsUndefined reports whether r is NaN.
func (r Ratio) IsUndefined() bool { return math.IsNaN(float64(r)) }

func (r Ratio) Float64() float64 { return float64(r) }

func (r Ratio) String() string {
	switch {
	case r.IsUndefined():
		return "undefined"
	case math.IsInf(float64(r), 1):
		return "unbounded"
	case math.IsInf(float64(r), -1):
		return "-unbounded"
	}
	return strconv.FormatFloat(float64(r), 'f', -1, 64)
}

// MarshalJSON writes infinities as strings and NaN as null.
func (r Ratio) MarshalJSON() ([]byte, error) {
	switch {
	case r.IsUndefined():
		return []byte("null"), nil
	case r.IsUnbounded():
		return []byte(strconv.Quote(r.String())), nil
	}
	return []byte(strconv.FormatFloat(float64(r), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number, null, "unbounded" or "-unbounded".
func (r *Ratio) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "null":
		*r = Ratio(math.NaN())
		return nil
	case `"unbounded"`:
		*r = Unbounded
		return nil
	case `"-unbounded"`:
		*r = Ratio(math.Inf(-1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid ratio %s: %w", string(data), err)
	}
	*r = Ratio(f)
	return nil
}

// SafeRatio divides num by den, returning Unbounded when den <= 0.
func SafeRatio(num, den float64) Ratio {
	if den <= 0 {
		return Unbounded
	}
	return Ratio(num / den)
}
