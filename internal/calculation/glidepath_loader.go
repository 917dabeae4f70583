package calculation

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// GlidePathLoader reads age-indexed allocation tables from CSV files.
// Expected columns: age, equity, bond. Weights may be fractions ("0.6")
// or percentages ("60%").
type GlidePathLoader struct {
	DataPath string
}

// NewGlidePathLoader creates a loader rooted at dataPath.
func NewGlidePathLoader(dataPath string) *GlidePathLoader {
	return &GlidePathLoader{DataPath: dataPath}
}

// Load reads filename (relative to DataPath unless absolute) into a GlidePath.
func (l *GlidePathLoader) Load(filename string) (*GlidePath, error) {
	filePath := filename
	if !filepath.IsAbs(filename) && l.DataPath != "" {
		filePath = filepath.Join(l.DataPath, filename)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", filePath, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient data in %s", filePath)
	}

	header := records[0]
	if len(header) != 3 {
		return nil, fmt.Errorf("expected 3 columns in %s, got %d", filePath, len(header))
	}

	entries := make(map[int]Allocation)
	one := decimal.NewFromInt(1)
	for i := 1; i < len(records); i++ {
		row := records[i]
		if len(row) != 3 {
			continue // Skip malformed rows
		}

		age, err := strconv.Atoi(strings.TrimSpace(strings.Trim(row[0], `"`)))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid age %q", i+1, row[0])
		}
		equity, err := parseWeight(strings.Trim(row[1], `"`))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		bond, err := parseWeight(strings.Trim(row[2], `"`))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if !equity.Add(bond).Equal(one) {
			return nil, fmt.Errorf("row %d: weights for age %d sum to %s, want 1", i+1, age, equity.Add(bond))
		}
		if _, dup := entries[age]; dup {
			return nil, fmt.Errorf("row %d: duplicate age %d", i+1, age)
		}

		entries[age] = Allocation{Equity: equity.InexactFloat64(), Bond: bond.InexactFloat64()}
	}

	gp, err := NewTableGlidePath(entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return gp, nil
}

// parseWeight parses "60%" or "0.6" into a fraction.
func parseWeight(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	isPercent := strings.HasSuffix(clean, "%")
	clean = strings.TrimSuffix(clean, "%")

	value, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid weight: %s", s)
	}
	if isPercent {
		value = value.Div(decimal.NewFromInt(100))
	}
	if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("weight out of range: %s", s)
	}
	return value, nil
}
