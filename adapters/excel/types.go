package excel

// RawTable is a sheet or CSV file as text: a header row and data rows padded
// to the header width.
type RawTable struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows
}

// Supported input file types
const (
	FileTypeCSV  = "csv"
	FileTypeXLSX = "xlsx"
	FileTypeJSON = "json"
)
