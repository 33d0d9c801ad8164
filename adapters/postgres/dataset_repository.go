package postgres

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"gostat/domain/dataset"
	"gostat/internal/errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// numericTypes lists the postgres column types loaded as numeric columns
var numericTypes = map[string]bool{
	"INT2":    true,
	"INT4":    true,
	"INT8":    true,
	"FLOAT4":  true,
	"FLOAT8":  true,
	"NUMERIC": true,
}

// DatasetRepository loads a whole table into an in-memory dataset
type DatasetRepository struct {
	db             *sqlx.DB
	name           string
	table          string
	requireNumeric []string
}

// NewDatasetRepository creates a dataset source backed by a postgres table
func NewDatasetRepository(db *sqlx.DB, name, table string, requireNumeric ...string) *DatasetRepository {
	return &DatasetRepository{
		db:             db,
		name:           name,
		table:          table,
		requireNumeric: requireNumeric,
	}
}

// Describe returns the table the dataset is read from
func (r *DatasetRepository) Describe() string {
	return "postgres table " + r.table
}

// Load reads every row of the table, preserving column order
func (r *DatasetRepository) Load(ctx context.Context) (*dataset.Dataset, error) {
	query := fmt.Sprintf("SELECT * FROM %s", quoteTable(r.table))

	start := time.Now()
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, errors.LoadFailed(r.Describe(), fmt.Errorf("failed to query table: %w", err))
	}
	defer rows.Close()

	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, errors.LoadFailed(r.Describe(), fmt.Errorf("failed to read column types: %w", err))
	}

	builders := make([]*columnBuilder, len(columnTypes))
	for i, ct := range columnTypes {
		builders[i] = &columnBuilder{
			name:    ct.Name(),
			numeric: numericTypes[strings.ToUpper(ct.DatabaseTypeName())],
		}
	}

	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			return nil, errors.LoadFailed(r.Describe(), fmt.Errorf("failed to scan row: %w", err))
		}
		for i, cell := range cells {
			if err := builders[i].add(cell); err != nil {
				return nil, errors.LoadFailed(r.Describe(), err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.LoadFailed(r.Describe(), fmt.Errorf("failed to iterate rows: %w", err))
	}

	columns := make([]dataset.Column, len(builders))
	for i, b := range builders {
		columns[i] = b.column()
	}

	ds, err := dataset.New(r.name, columns...)
	if err != nil {
		return nil, errors.LoadFailed(r.Describe(), err)
	}
	for _, name := range r.requireNumeric {
		field, ok := ds.Schema().Lookup(name)
		if !ok || field.Type != dataset.ColumnNumeric {
			return nil, errors.LoadFailed(r.Describe(), fmt.Errorf("column %q must exist and be numeric", name))
		}
	}

	log.Printf("[DatasetRepository] loaded %s (%d columns, %d rows) in %s",
		r.table, ds.Schema().Len(), ds.Rows(), time.Since(start))
	return ds, nil
}

// quoteTable quotes a possibly schema-qualified table name
func quoteTable(table string) string {
	parts := strings.Split(table, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}

type columnBuilder struct {
	name    string
	numeric bool
	strs    []string
	nums    []float64
}

func (b *columnBuilder) add(cell interface{}) error {
	if b.numeric {
		v, err := cellToFloat(cell)
		if err != nil {
			return fmt.Errorf("column %q: %w", b.name, err)
		}
		b.nums = append(b.nums, v)
		return nil
	}
	b.strs = append(b.strs, cellToString(cell))
	return nil
}

func (b *columnBuilder) column() dataset.Column {
	if b.numeric {
		return dataset.NumericColumn(b.name, b.nums...)
	}
	return dataset.StringColumn(b.name, b.strs...)
}

// cellToFloat converts a value scanned by lib/pq from a numeric column.
// NaN and infinities are rejected like the file loaders reject them.
func cellToFloat(cell interface{}) (float64, error) {
	var (
		v   float64
		err error
	)
	switch c := cell.(type) {
	case nil:
		return 0, fmt.Errorf("NULL in numeric column")
	case int64:
		return float64(c), nil
	case float64:
		v = c
	case []byte:
		v, err = strconv.ParseFloat(string(c), 64)
	case string:
		v, err = strconv.ParseFloat(c, 64)
	default:
		return 0, fmt.Errorf("unexpected numeric value of type %T", cell)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %v in numeric column", v)
	}
	return v, nil
}

// cellToString renders a scanned value the way it appears in the table
func cellToString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
