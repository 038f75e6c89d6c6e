package excel

import (
	"wordmetrics/adapters/datareadiness/coercer"
)

// ReaderConfig holds configuration for reading tabular input files
type ReaderConfig struct {
	CoercionConfig coercer.CoercionConfig `json:"coercion_config"`
	// SheetName selects the XLSX sheet; empty means the first sheet.
	SheetName string `json:"sheet_name"`
	// Delimiter separates CSV fields; zero means a comma.
	Delimiter rune `json:"delimiter"`
}

// DefaultReaderConfig returns sensible defaults for input processing
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		CoercionConfig: coercer.DefaultCoercionConfig(),
		Delimiter:      ',',
	}
}
