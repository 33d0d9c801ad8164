package dataset

import (
	"fmt"
	"strconv"
)

// ColumnType describes how the values of a column are stored
type ColumnType string

const (
	ColumnString  ColumnType = "string"
	ColumnNumeric ColumnType = "numeric"
)

// Field is one entry of a dataset schema
type Field struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

// Schema is the ordered list of typed column names of a dataset
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema, rejecting empty or duplicate names
func NewSchema(fields ...Field) (Schema, error) {
	s := Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return Schema{}, fmt.Errorf("column name cannot be empty")
		}
		if _, dup := s.index[f.Name]; dup {
			return Schema{}, fmt.Errorf("duplicate column %q", f.Name)
		}
		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}
	return s, nil
}

// Has reports whether the schema contains the named column
func (s Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Lookup returns the field for a column name
func (s Schema) Lookup(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Fields returns a copy of the schema fields in column order
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns the column names in column order
func (s Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of columns
func (s Schema) Len() int {
	return len(s.fields)
}

// Column holds the values of a single named column. Exactly one of Strings
// or Numbers is populated, matching Type.
type Column struct {
	Name    string
	Type    ColumnType
	Strings []string
	Numbers []float64
}

// StringColumn creates a string-typed column
func StringColumn(name string, values ...string) Column {
	return Column{Name: name, Type: ColumnString, Strings: values}
}

// NumericColumn creates a numeric column
func NumericColumn(name string, values ...float64) Column {
	return Column{Name: name, Type: ColumnNumeric, Numbers: values}
}

// Len returns the number of values in the column
func (c Column) Len() int {
	if c.Type == ColumnNumeric {
		return len(c.Numbers)
	}
	return len(c.Strings)
}

// Dataset is an in-memory, row-aligned table. A Dataset is never modified
// after New returns, so it may be read from many goroutines without locking.
type Dataset struct {
	name    string
	schema  Schema
	columns []Column
	rows    int
}

// New builds a dataset from columns of equal length. Column slices are
// copied so later changes by the caller are not observed.
func New(name string, columns ...Column) (*Dataset, error) {
	fields := make([]Field, len(columns))
	for i, c := range columns {
		if c.Type != ColumnString && c.Type != ColumnNumeric {
			return nil, fmt.Errorf("column %q has unknown type %q", c.Name, c.Type)
		}
		fields[i] = Field{Name: c.Name, Type: c.Type}
	}

	schema, err := NewSchema(fields...)
	if err != nil {
		return nil, err
	}

	rows := 0
	if len(columns) > 0 {
		rows = columns[0].Len()
	}

	owned := make([]Column, len(columns))
	for i, c := range columns {
		if c.Len() != rows {
			return nil, fmt.Errorf("column %q has %d values, expected %d", c.Name, c.Len(), rows)
		}
		owned[i] = Column{Name: c.Name, Type: c.Type}
		switch c.Type {
		case ColumnNumeric:
			owned[i].Numbers = append(make([]float64, 0, rows), c.Numbers...)
		default:
			owned[i].Strings = append(make([]string, 0, rows), c.Strings...)
		}
	}

	return &Dataset{name: name, schema: schema, columns: owned, rows: rows}, nil
}

// Name returns the dataset name
func (d *Dataset) Name() string {
	return d.name
}

// Schema returns the dataset schema
func (d *Dataset) Schema() Schema {
	return d.schema
}

// Rows returns the number of rows
func (d *Dataset) Rows() int {
	return d.rows
}

// Value renders a single cell as a string. Numbers use the shortest
// representation that round-trips.
func (d *Dataset) Value(row int, column string) string {
	c := d.column(column)
	if c == nil {
		return ""
	}
	if c.Type == ColumnNumeric {
		return strconv.FormatFloat(c.Numbers[row], 'f', -1, 64)
	}
	return c.Strings[row]
}

// Number returns the numeric value of a cell
func (d *Dataset) Number(row int, column string) (float64, bool) {
	c := d.column(column)
	if c == nil || c.Type != ColumnNumeric {
		return 0, false
	}
	return c.Numbers[row], true
}

// Numbers returns a copy of a numeric column's values
func (d *Dataset) Numbers(column string) ([]float64, error) {
	c := d.column(column)
	if c == nil {
		return nil, fmt.Errorf("column %q not found", column)
	}
	if c.Type != ColumnNumeric {
		return nil, fmt.Errorf("column %q is not numeric", column)
	}
	return append(make([]float64, 0, len(c.Numbers)), c.Numbers...), nil
}

// Select returns a new dataset containing only the given rows, in the order
// given. The receiver is left untouched.
func (d *Dataset) Select(rows []int) *Dataset {
	cols := make([]Column, len(d.columns))
	for i, c := range d.columns {
		cols[i] = Column{Name: c.Name, Type: c.Type}
		switch c.Type {
		case ColumnNumeric:
			cols[i].Numbers = make([]float64, len(rows))
			for j, r := range rows {
				cols[i].Numbers[j] = c.Numbers[r]
			}
		default:
			cols[i].Strings = make([]string, len(rows))
			for j, r := range rows {
				cols[i].Strings[j] = c.Strings[r]
			}
		}
	}
	return &Dataset{name: d.name, schema: d.schema, columns: cols, rows: len(rows)}
}

func (d *Dataset) column(name string) *Column {
	i, ok := d.schema.index[name]
	if !ok {
		return nil
	}
	return &d.columns[i]
}

// FilterSpec maps a column name to the ordered set of acceptable values.
// A column missing from the map, or mapped to an empty slice, is not
// constrained.
type FilterSpec map[string][]string
