package excel

// RawRowData represents a row of raw cell text, aligned with Headers
type RawRowData []string

// ExcelData represents a table read from a CSV or spreadsheet file before typing
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Column returns the raw values of the column at index i
func (d *ExcelData) Column(i int) []string {
	values := make([]string, len(d.Rows))
	for r, row := range d.Rows {
		if i < len(row) {
			values[r] = row[i]
		}
	}
	return values
}
