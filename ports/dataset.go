package ports

import (
	"io"

	"wordmetrics/domain/dataset"
	"wordmetrics/domain/metrics"
)

// DatasetReader parses an uploaded or local file into a typed dataset.
// The name selects the format by extension.
type DatasetReader interface {
	ReadDataset(name string, src io.Reader) (*dataset.Dataset, error)
}

// TableWriter exports result tables in one file format.
type TableWriter interface {
	WriteTables(w io.Writer, tables ...metrics.Table) error
	ContentType() string
	Extension() string
}
