package excel

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"wordmetrics/domain/dataset"
	dm "wordmetrics/domain/metrics"
	"wordmetrics/internal/errors"
)

// ExportBaseName is the download name of exported results, without extension.
const ExportBaseName = "processed_results"

// WriteCSV writes the table as UTF-8 CSV with a header row. Missing cells are
// written as empty fields.
func WriteCSV(w io.Writer, table dm.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return errors.ExportFailed("failed to write CSV header", err)
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = row[i].Format()
			}
		}
		if err := cw.Write(record); err != nil {
			return errors.ExportFailed("failed to write CSV row", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.ExportFailed("failed to flush CSV", err)
	}
	return nil
}

// WriteXLSX writes each table to its own sheet, in order.
func WriteXLSX(w io.Writer, tables ...dm.Table) error {
	if len(tables) == 0 {
		return errors.ExportFailed("no tables to export", nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, table := range tables {
		name := sheetName(table.Name, i)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return errors.ExportFailed("failed to name sheet", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return errors.ExportFailed("failed to add sheet", err)
		}
		if err := writeSheet(f, name, table); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return errors.ExportFailed("failed to write workbook", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, table dm.Table) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return errors.ExportFailed("failed to open sheet writer", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.ExportFailed("failed to write header", err)
	}

	for r, row := range table.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = cellValue(v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := sw.SetRow(cell, cells); err != nil {
			return errors.ExportFailed(fmt.Sprintf("failed to write row %d", r+1), err)
		}
	}

	if err := sw.Flush(); err != nil {
		return errors.ExportFailed("failed to flush sheet", err)
	}
	return nil
}

func cellValue(v dataset.Value) interface{} {
	if v.IsMissing() {
		return nil
	}
	switch v.Type {
	case dataset.ValueTypeInt:
		return v.Int
	case dataset.ValueTypeFloat:
		return v.Float
	case dataset.ValueTypeBool:
		return v.Bool
	}
	return v.PyString()
}

// sheetName fits a table name to the 31-character sheet name limit.
func sheetName(name string, i int) string {
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
