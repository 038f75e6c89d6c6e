package app

import (
	"bytes"
	"context"
	"io"

	"wordmetrics/domain/core"
	"wordmetrics/domain/dataset"
	dm "wordmetrics/domain/metrics"
	"wordmetrics/internal"
	"wordmetrics/internal/errors"
	"wordmetrics/internal/metrics"
	"wordmetrics/ports"
)

// ProcessRequest is one uploaded or local file plus the column roles to
// apply to it. Filename selects the input format.
type ProcessRequest struct {
	Filename string
	Data     io.Reader
	Config   dm.Config
}

// MetricsService reads a dataset, transforms it and reports the result.
type MetricsService struct {
	reader      ports.DatasetReader
	transformer *metrics.Transformer
	logger      *internal.Logger
}

// NewMetricsService creates a metrics service
func NewMetricsService(reader ports.DatasetReader, transformer *metrics.Transformer, logger *internal.Logger) *MetricsService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if transformer == nil {
		transformer = metrics.NewTransformer(metrics.WithLogger(logger))
	}
	return &MetricsService{reader: reader, transformer: transformer, logger: logger}
}

// Process runs one transform. Errors come back as AppErrors carrying an
// input, column, option or internal code.
func (s *MetricsService) Process(ctx context.Context, req ProcessRequest) (*dm.Result, error) {
	ds, fingerprint, err := s.read(req.Filename, req.Data)
	if err != nil {
		return nil, err
	}

	result, err := s.transformer.Run(ctx, ds, req.Config)
	if err != nil {
		s.logger.Warn("[MetricsService] transform of %s failed: %v", req.Filename, err)
		return nil, errors.FromDomain(err)
	}
	result.Source = req.Filename
	result.Fingerprint = fingerprint

	s.logger.Info("[MetricsService] run %s: %s (%s) mode=%s rows=%d->%d",
		result.RunID, req.Filename, fingerprint.Short(), result.Mode, result.InputRows, result.OutputRows)
	return result, nil
}

// Columns lists the columns of a file with their inferred types, for
// choosing id, text and classifier columns.
func (s *MetricsService) Columns(ctx context.Context, filename string, data io.Reader) ([]dataset.FieldInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, _, err := s.read(filename, data)
	if err != nil {
		return nil, err
	}
	return ds.Fields(), nil
}

func (s *MetricsService) read(filename string, data io.Reader) (*dataset.Dataset, core.Hash, error) {
	if data == nil {
		return nil, "", errors.InputReadFailed(core.NewInputReadError("no file", nil))
	}
	var buf bytes.Buffer
	fingerprint, err := core.HashReader(io.TeeReader(data, &buf))
	if err != nil {
		return nil, "", errors.InputReadFailed(core.NewInputReadError("upload interrupted", err))
	}

	ds, err := s.reader.ReadDataset(filename, &buf)
	if err != nil {
		s.logger.Warn("[MetricsService] could not read %s: %v", filename, err)
		return nil, "", errors.FromDomain(err)
	}
	s.logger.Debug("[MetricsService] read %s: %d rows, %d columns", filename, ds.Len(), len(ds.Headers))
	return ds, fingerprint, nil
}

// Export writes the result tables with w. The impact summary, when present,
// follows the main table.
func Export(out io.Writer, w ports.TableWriter, result *dm.Result) error {
	tables := []dm.Table{result.Table}
	if result.ImpactTable != nil {
		tables = append(tables, *result.ImpactTable)
	}
	return w.WriteTables(out, tables...)
}
