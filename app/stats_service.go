package app

import (
	"context"
	"fmt"

	"gostat/domain/dataset"
	"gostat/domain/stats"
	"gostat/internal/errors"
	"gostat/internal/filter"
	"gostat/internal/logging"
	"gostat/internal/profiling"
)

// Resource binds a dataset to the numeric column that is aggregated for it
type Resource struct {
	Name    string
	Dataset *dataset.Dataset
	Target  string
	// ParseNumber reads filter values for numeric columns; nil accepts plain numbers
	ParseNumber filter.NumberParser
}

// StatsService answers filtered statistics queries for one resource
type StatsService struct {
	resource   Resource
	summarizer *profiling.Summarizer
	logger     *logging.Logger
}

// NewStatsService checks that the target column exists and is numeric
func NewStatsService(resource Resource) (*StatsService, error) {
	if resource.Dataset == nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("resource %s has no dataset", resource.Name))
	}
	field, ok := resource.Dataset.Schema().Lookup(resource.Target)
	if !ok {
		return nil, errors.ConfigInvalid(fmt.Sprintf("resource %s: target column %s doesn't exist", resource.Name, resource.Target))
	}
	if field.Type != dataset.ColumnNumeric {
		return nil, errors.ConfigInvalid(fmt.Sprintf("resource %s: target column %s is not numeric", resource.Name, resource.Target))
	}

	return &StatsService{
		resource:   resource,
		summarizer: profiling.NewSummarizer(resource.Target),
		logger:     logging.New("StatsService"),
	}, nil
}

// Name returns the resource name
func (s *StatsService) Name() string {
	return s.resource.Name
}

// Target returns the aggregated column
func (s *StatsService) Target() string {
	return s.resource.Target
}

// Schema returns the schema of the underlying dataset
func (s *StatsService) Schema() dataset.Schema {
	return s.resource.Dataset.Schema()
}

// Rows returns the number of rows of the underlying dataset
func (s *StatsService) Rows() int {
	return s.resource.Dataset.Rows()
}

// Query filters the dataset and summarises the target column of the result.
// An unknown filter column aborts the query before any row is examined.
func (s *StatsService) Query(ctx context.Context, spec dataset.FilterSpec) (stats.Summary, error) {
	if err := ctx.Err(); err != nil {
		return stats.Summary{}, err
	}

	view, err := filter.ApplyWith(s.resource.Dataset, spec, s.resource.ParseNumber)
	if err != nil {
		return stats.Summary{}, err
	}

	values, err := view.Numbers(s.resource.Target)
	if err != nil {
		return stats.Summary{}, errors.Wrapf(err, "failed to read target column of %s", s.resource.Name)
	}

	summary := s.summarizer.Summarize(values)
	s.logger.Debug("%s: %d of %d rows matched %d filters", s.resource.Name, view.Rows(), s.resource.Dataset.Rows(), len(spec))
	return summary, nil
}
