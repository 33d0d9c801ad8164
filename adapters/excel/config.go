package excel

import (
	"gostat/adapters/datareadiness/coercer"
)

// ReaderConfig holds configuration for a file dataset source
type ReaderConfig struct {
	Name           string                 `json:"name"`
	FilePath       string                 `json:"file_path"`
	Delimiter      rune                   `json:"delimiter"`       // CSV field separator
	Sheet          string                 `json:"sheet"`           // Spreadsheet sheet, "" = first sheet
	RequireNumeric []string               `json:"require_numeric"` // Columns that must be typed numeric
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
}

// DefaultReaderConfig returns sensible defaults for comma separated files
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Delimiter:      ',',
		CoercionConfig: coercer.DefaultCoercionConfig(),
	}
}
