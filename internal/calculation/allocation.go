package calculation

import (
	"fmt"
	"sort"
)

// Allocation is a target split between the equity and bond sleeves. Equity+Bond == 1.
type Allocation struct {
	Equity float64 `json:"equity"`
	Bond   float64 `json:"bond"`
}

// GlidePath maps age to a target allocation. By default equity is
// clamp(Baseline-age, MinEquity, MaxEquity) percent for ages FirstAge..LastAge.
// A table loaded from CSV replaces the formula entirely.
type GlidePath struct {
	Baseline  int
	MinEquity int
	MaxEquity int
	FirstAge  int
	LastAge   int

	table map[int]Allocation
}

// DefaultGlidePath is the "110 minus age" rule bounded to 20–80% equity for ages 65–100.
func DefaultGlidePath() *GlidePath {
	return &GlidePath{
		Baseline:  110,
		MinEquity: 20,
		MaxEquity: 80,
		FirstAge:  65,
		LastAge:   100,
	}
}

// NewTableGlidePath builds a glide path from explicit per-age allocations.
func NewTableGlidePath(entries map[int]Allocation) (*GlidePath, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("glide path table is empty")
	}
	ages := make([]int, 0, len(entries))
	table := make(map[int]Allocation, len(entries))
	for age, a := range entries {
		if a.Equity < 0 || a.Bond < 0 || !approxEqual(a.Equity+a.Bond, 1) {
			return nil, fmt.Errorf("allocation at age %d must be non-negative and sum to 1", age)
		}
		table[age] = a
		ages = append(ages, age)
	}
	sort.Ints(ages)
	return &GlidePath{FirstAge: ages[0], LastAge: ages[len(ages)-1], table: table}, nil
}

// IsTable reports whether the schedule came from an explicit table.
func (g *GlidePath) IsTable() bool { return g.table != nil }

// Validate checks the formula bounds.
func (g *GlidePath) Validate() error {
	if g.table != nil {
		return nil
	}
	if g.MinEquity < 0 || g.MaxEquity > 100 || g.MinEquity > g.MaxEquity {
		return configError("glide_path", "equity bounds must satisfy 0 <= min <= max <= 100, got %d..%d", g.MinEquity, g.MaxEquity)
	}
	if g.FirstAge > g.LastAge {
		return configError("glide_path", "first age %d is after last age %d", g.FirstAge, g.LastAge)
	}
	return nil
}

// Allocation returns the target allocation at age. Ages outside the
// schedule fall back to the most conservative allocation.
func (g *GlidePath) Allocation(age int) Allocation {
	if g.table != nil {
		if a, ok := g.table[age]; ok {
			return a
		}
		return g.Conservative()
	}
	if age < g.FirstAge || age > g.LastAge {
		return g.Conservative()
	}
	equity := g.Baseline - age
	if equity > g.MaxEquity {
		equity = g.MaxEquity
	}
	if equity < g.MinEquity {
		equity = g.MinEquity
	}
	return percentAllocation(equity)
}

// Conservative returns the lowest-equity allocation the schedule allows.
func (g *GlidePath) Conservative() Allocation {
	if g.table == nil {
		return percentAllocation(g.MinEquity)
	}
	var best Allocation
	first := true
	for _, a := range g.table {
		if first || a.Equity < best.Equity {
			best = a
			first = false
		}
	}
	return best
}

func percentAllocation(equityPct int) Allocation {
	e := float64(equityPct) / 100
	return Allocation{Equity: e, Bond: float64(100-equityPct) / 100}
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
