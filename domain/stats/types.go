package stats

import "math"

// Summary is the fixed-shape statistics record returned for one numeric
// column. A nil pointer marks a statistic that is undefined for the sample
// size and is serialised as JSON null.
//
// INVARIANTS:
// - Entries >= 0
// - Avg and Median are nil when Entries == 0
// - Var and Std are nil when Entries < 2
// - a statistic that overflows float64 is nil
type Summary struct {
	Entries int      `json:"entries"`
	Avg     *float64 `json:"avg"`
	Median  *float64 `json:"median"`
	Var     *float64 `json:"var"`
	Std     *float64 `json:"std"`
}

// Float returns a pointer to v, for building Summary fields. Infinite and
// NaN values have no JSON encoding and yield nil.
func Float(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// HasSpread reports whether variance and standard deviation are defined
func (s Summary) HasSpread() bool {
	return s.Entries > 1
}
