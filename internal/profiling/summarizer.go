package profiling

import (
	"math"

	domainStats "gostat/domain/stats"
	"gostat/internal/logging"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summarize computes the descriptive statistics of a numeric sample.
//
// It never fails: statistics that are undefined for the sample size, or that
// overflow float64, are left nil. Mean and median need at least one value, sample variance (n-1
// denominator) and standard deviation need at least two. The input slice is
// not modified.
func Summarize(values []float64) domainStats.Summary {
	summary := domainStats.Summary{Entries: len(values)}
	if len(values) == 0 {
		return summary
	}

	data := stats.Float64Data(values)

	// Mean and Median only fail on empty input, which is excluded above
	if mean, err := stats.Mean(data); err == nil {
		summary.Avg = domainStats.Float(mean)
	}
	if median, err := stats.Median(data); err == nil {
		summary.Median = domainStats.Float(median)
	}

	if len(values) < 2 {
		return summary
	}

	variance := stat.Variance(values, nil)
	summary.Var = domainStats.Float(variance)
	summary.Std = domainStats.Float(math.Sqrt(variance))

	return summary
}

// Summarizer computes summaries for a named target column
type Summarizer struct {
	target string
	logger *logging.Logger
}

// NewSummarizer creates a summarizer for the given target column
func NewSummarizer(target string) *Summarizer {
	return &Summarizer{target: target, logger: logging.New("Summarizer")}
}

// Target returns the column this summarizer aggregates
func (s *Summarizer) Target() string {
	return s.target
}

// Summarize computes the summary and notes degenerate sample sizes
func (s *Summarizer) Summarize(values []float64) domainStats.Summary {
	summary := Summarize(values)
	if !summary.HasSpread() {
		s.logger.Debug("%s: %d entries, spread statistics undefined", s.target, summary.Entries)
	}
	return summary
}
