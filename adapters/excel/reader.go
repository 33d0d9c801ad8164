package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gostat/adapters/datareadiness/coercer"
	"gostat/domain/dataset"
	"gostat/internal/errors"
	"gostat/internal/logging"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var readerLogger = logging.New("DataReader")

// DataReader handles reading spreadsheet and CSV files
type DataReader struct {
	config   ReaderConfig
	fileType string // "xlsx" or "csv"
	coercer  *coercer.TypeCoercer
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(config ReaderConfig) *DataReader {
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}
	if config.Name == "" {
		config.Name = strings.TrimSuffix(filepath.Base(config.FilePath), filepath.Ext(config.FilePath))
	}
	return &DataReader{
		config:   config,
		fileType: detectFileType(config.FilePath),
		coercer:  coercer.NewTypeCoercer(config.CoercionConfig),
	}
}

func detectFileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return "csv"
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return "xlsx"
	case ".xls":
		return "xls"
	default:
		return "unknown"
	}
}

// Describe returns the file path
func (r *DataReader) Describe() string {
	return r.config.FilePath
}

// ParseNumeric reads a number written in the file's format
func (r *DataReader) ParseNumeric(raw string) (float64, bool) {
	return r.coercer.ParseNumeric(raw)
}

// Load reads the file and types each column
func (r *DataReader) Load(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := r.ReadData()
	if err != nil {
		return nil, errors.LoadFailed(r.config.FilePath, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := r.BuildDataset(data)
	if err != nil {
		return nil, errors.LoadFailed(r.config.FilePath, err)
	}
	return ds, nil
}

// BuildDataset types the columns of raw data and assembles an immutable dataset
func (r *DataReader) BuildDataset(data *ExcelData) (*dataset.Dataset, error) {
	columns := make([]dataset.Column, len(data.Headers))
	for i, header := range data.Headers {
		col, analysis := r.coercer.CoerceColumn(header, data.Column(i))
		columns[i] = col
		readerLogger.Debug("column %q typed %s (%d/%d numeric, %d empty)",
			header, col.Type, analysis.NumericCount, analysis.TotalCount, analysis.EmptyCount)
	}

	ds, err := dataset.New(r.config.Name, columns...)
	if err != nil {
		return nil, err
	}

	for _, name := range r.config.RequireNumeric {
		field, ok := ds.Schema().Lookup(name)
		if !ok {
			return nil, fmt.Errorf("required column %q is missing", name)
		}
		if field.Type != dataset.ColumnNumeric {
			return nil, fmt.Errorf("column %q must contain only numbers", name)
		}
	}
	return ds, nil
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.config.FilePath)

	if _, err := os.Stat(r.config.FilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.config.FilePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	case "xls":
		return nil, fmt.Errorf("legacy .xls workbooks are not supported, convert %s to .xlsx or .csv", r.config.FilePath)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(r.config.FilePath))
	}
}

// readExcelData reads the configured sheet (or the first one) into structured format
func (r *DataReader) readExcelData() (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("sheet %s must have a header row", sheet)
	}

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ExcelData, error) {
	raw, err := os.ReadFile(r.config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	content, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode CSV file: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = r.config.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file must have a header row")
	}

	return r.processRows(rows)
}

// decodeText strips a UTF-8 byte order mark and transcodes Latin-1 input
func decodeText(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return raw, nil
	}
	return charmap.ISO8859_1.NewDecoder().Bytes(raw)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		if len(row) > len(headers) {
			return nil, fmt.Errorf("row %d has %d cells but only %d headers", i+1, len(row), len(headers))
		}

		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			rowData[j] = strings.TrimSpace(cell)
		}
		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
