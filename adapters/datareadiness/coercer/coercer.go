package coercer

import (
	"math"
	"strconv"
	"strings"

	"gostat/domain/dataset"
)

// TypeCoercer decides column types and converts raw cell text into typed values
type TypeCoercer struct {
	config CoercionConfig
}

// CoercionConfig defines how numbers are written in the source file
type CoercionConfig struct {
	Thousands string `json:"thousands"` // Thousands separator, stripped before parsing ("" = none)
	Decimal   string `json:"decimal"`   // Decimal separator ("" = ".")
}

// DefaultCoercionConfig returns the plain "1234.5" number format
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		Decimal: ".",
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if config.Decimal == "" {
		config.Decimal = "."
	}
	return &TypeCoercer{config: config}
}

// ParseNumeric parses a cell as a finite number using the configured separators
func (c *TypeCoercer) ParseNumeric(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	// Handle parentheses for negative numbers: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	if c.config.Thousands != "" {
		cleanVal = strings.ReplaceAll(cleanVal, c.config.Thousands, "")
	}
	if c.config.Decimal != "." {
		if strings.Contains(cleanVal, ".") {
			return 0, false
		}
		cleanVal = strings.ReplaceAll(cleanVal, c.config.Decimal, ".")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

// AnalyzeColumn counts how many cells of a column parse as numbers
func (c *TypeCoercer) AnalyzeColumn(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			analysis.EmptyCount++
			continue
		}
		if _, ok := c.ParseNumeric(v); ok {
			analysis.NumericCount++
		}
	}

	if analysis.TotalCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.TotalCount)
	}
	analysis.RecommendedType = dataset.ColumnString
	if analysis.TotalCount > 0 && analysis.NumericCount == analysis.TotalCount {
		analysis.RecommendedType = dataset.ColumnNumeric
	}
	return analysis
}

// CoerceColumn builds a typed column. A column is numeric only when every
// cell parses as a number; otherwise the raw text is kept, trimmed.
func (c *TypeCoercer) CoerceColumn(name string, values []string) (dataset.Column, TypeAnalysis) {
	analysis := c.AnalyzeColumn(values)
	if analysis.RecommendedType == dataset.ColumnNumeric {
		numbers := make([]float64, len(values))
		for i, v := range values {
			numbers[i], _ = c.ParseNumeric(v)
		}
		return dataset.NumericColumn(name, numbers...), analysis
	}

	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = strings.TrimSpace(v)
	}
	return dataset.StringColumn(name, strs...), analysis
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int                `json:"total_count"`
	EmptyCount      int                `json:"empty_count"`
	NumericCount    int                `json:"numeric_count"`
	NumericRatio    float64            `json:"numeric_ratio"`
	RecommendedType dataset.ColumnType `json:"recommended_type"`
}
