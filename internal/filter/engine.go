// Package filter narrows a dataset to the rows matching a FilterSpec.
//
// Constraints combine with AND across columns and OR within the value set of
// a single column. A column mapped to an empty value set is not constrained.
package filter

import (
	"sort"
	"strconv"

	"gostat/domain/dataset"
	"gostat/internal/errors"
)

// Validate checks that every key of spec is a column of ds. When several keys
// are unknown the smallest name is reported so the error is deterministic.
func Validate(ds *dataset.Dataset, spec dataset.FilterSpec) error {
	schema := ds.Schema()
	var unknown []string
	for column := range spec {
		if !schema.Has(column) {
			unknown = append(unknown, column)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return errors.UnknownColumn(unknown[0])
}

// NumberParser reads a filter value given for a numeric column
type NumberParser func(string) (float64, bool)

// ParseFloat accepts plain numbers such as "1200" or "4.5"
func ParseFloat(value string) (float64, bool) {
	n, err := strconv.ParseFloat(value, 64)
	return n, err == nil
}

// Apply validates spec against ds and returns the rows of ds satisfying it,
// in their original order. Validation happens before any row is examined.
// The returned dataset shares no mutable state with ds.
func Apply(ds *dataset.Dataset, spec dataset.FilterSpec) (*dataset.Dataset, error) {
	return ApplyWith(ds, spec, ParseFloat)
}

// ApplyWith is Apply with values for numeric columns read by parse, so they
// can be written in the same format as the source file. A nil parse means
// ParseFloat.
func ApplyWith(ds *dataset.Dataset, spec dataset.FilterSpec, parse NumberParser) (*dataset.Dataset, error) {
	if err := Validate(ds, spec); err != nil {
		return nil, err
	}

	preds := compile(ds, spec, parse)
	rows := make([]int, 0, ds.Rows())
	for row := 0; row < ds.Rows(); row++ {
		if matchAll(preds, ds, row) {
			rows = append(rows, row)
		}
	}
	return ds.Select(rows), nil
}

// Matches reports whether a single row satisfies spec. Unknown columns never
// match.
func Matches(ds *dataset.Dataset, spec dataset.FilterSpec, row int) bool {
	if Validate(ds, spec) != nil {
		return false
	}
	return matchAll(compile(ds, spec, ParseFloat), ds, row)
}

// predicate is the membership test for one constrained column
type predicate struct {
	column  string
	numeric bool
	strs    map[string]struct{}
	nums    map[float64]struct{}
}

func compile(ds *dataset.Dataset, spec dataset.FilterSpec, parse NumberParser) []predicate {
	if parse == nil {
		parse = ParseFloat
	}
	schema := ds.Schema()
	preds := make([]predicate, 0, len(spec))
	for column, values := range spec {
		if len(values) == 0 {
			continue
		}
		field, _ := schema.Lookup(column)
		p := predicate{column: column, numeric: field.Type == dataset.ColumnNumeric}
		if p.numeric {
			p.nums = make(map[float64]struct{}, len(values))
			for _, v := range values {
				if n, ok := parse(v); ok {
					p.nums[n] = struct{}{}
				}
			}
		} else {
			p.strs = make(map[string]struct{}, len(values))
			for _, v := range values {
				p.strs[v] = struct{}{}
			}
		}
		preds = append(preds, p)
	}
	return preds
}

func matchAll(preds []predicate, ds *dataset.Dataset, row int) bool {
	for _, p := range preds {
		if !p.match(ds, row) {
			return false
		}
	}
	return true
}

func (p predicate) match(ds *dataset.Dataset, row int) bool {
	if p.numeric {
		n, _ := ds.Number(row, p.column)
		_, ok := p.nums[n]
		return ok
	}
	_, ok := p.strs[ds.Value(row, p.column)]
	return ok
}
