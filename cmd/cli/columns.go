package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"wordmetrics/adapters/excel"
	"wordmetrics/domain/dataset"
	dm "wordmetrics/domain/metrics"
	"wordmetrics/internal/report"
)

func newColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns <file>",
		Short: "List a file's columns with inferred types, to pick id, text and classifier columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runColumns(args[0], cmd.OutOrStdout())
		},
	}
}

func runColumns(path string, stdout io.Writer) error {
	reader := excel.NewDataReader(path)
	ds, err := reader.ReadData()
	if err != nil {
		return err
	}

	fields := ds.Fields()
	table := dm.Table{
		Name:    filepath.Base(path),
		Columns: []string{"column", "type", "missing", "unique"},
		Rows:    make([][]dataset.Value, len(fields)),
	}
	for i, f := range fields {
		table.Rows[i] = []dataset.Value{
			dataset.NewStringValue(f.Name),
			dataset.NewStringValue(string(f.DataType)),
			dataset.NewIntValue(int64(f.MissingCount)),
			dataset.NewIntValue(int64(f.UniqueCount)),
		}
	}
	if err := report.RenderText(stdout, table, -1); err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "%d data rows\n", ds.Len())
	return err
}

