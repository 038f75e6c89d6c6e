package excel

import (
	"fmt"
	"io"
	"strings"

	dm "wordmetrics/domain/metrics"
	"wordmetrics/internal/errors"
	"wordmetrics/ports"
)

var (
	_ ports.DatasetReader = (*Reader)(nil)
	_ ports.TableWriter   = CSVWriter{}
	_ ports.TableWriter   = XLSXWriter{}
)

// CSVWriter exports the primary result table. CSV holds a single table, so
// any further tables are ignored.
type CSVWriter struct{}

func (CSVWriter) WriteTables(w io.Writer, tables ...dm.Table) error {
	if len(tables) == 0 {
		return errors.ExportFailed("no tables to export", nil)
	}
	return WriteCSV(w, tables[0])
}

func (CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }
func (CSVWriter) Extension() string   { return "csv" }

// XLSXWriter exports every table to its own sheet.
type XLSXWriter struct{}

func (XLSXWriter) WriteTables(w io.Writer, tables ...dm.Table) error {
	return WriteXLSX(w, tables...)
}

func (XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (XLSXWriter) Extension() string { return "xlsx" }

// WriterFor returns the table writer for an export format name.
func WriterFor(format string) (ports.TableWriter, error) {
	switch strings.ToLower(format) {
	case "csv":
		return CSVWriter{}, nil
	case "xlsx", "excel":
		return XLSXWriter{}, nil
	}
	return nil, errors.InvalidInput(fmt.Sprintf("unsupported export format %q", format))
}

// ExportFileName is the download name for a writer's output.
func ExportFileName(w ports.TableWriter) string {
	return ExportBaseName + "." + w.Extension()
}
