package excel

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"wordmetrics/adapters/datareadiness/coercer"
	"wordmetrics/domain/core"
	"wordmetrics/domain/dataset"
	"wordmetrics/internal"
)

// DataReader reads CSV, XLSX and JSON-records files into datasets
type DataReader struct {
	filePath string
	fileType string
	config   ReaderConfig
	logger   *internal.Logger
}

// NewDataReader creates a data reader for filePath; the file type follows
// the extension.
func NewDataReader(filePath string) *DataReader {
	return NewDataReaderWithConfig(filePath, DefaultReaderConfig())
}

// NewDataReaderWithConfig creates a data reader with explicit settings
func NewDataReaderWithConfig(filePath string, config ReaderConfig) *DataReader {
	return &DataReader{
		filePath: filePath,
		fileType: FileType(filePath),
		config:   config,
		logger:   internal.DefaultLogger,
	}
}

// FileType maps a file name to one of the supported input types, or "".
func FileType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FileTypeCSV
	case ".xlsx", ".xlsm":
		return FileTypeXLSX
	case ".json":
		return FileTypeJSON
	}
	return ""
}

// ReadData reads the file into a dataset
func (r *DataReader) ReadData() (*dataset.Dataset, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, core.NewInputReadError(fmt.Sprintf("cannot open %s", r.filePath), err)
	}
	defer f.Close()

	return NewReader(r.config).WithLogger(r.logger).ReadDataset(r.filePath, f)
}

// WithLogger replaces the reader's logger
func (r *DataReader) WithLogger(l *internal.Logger) *DataReader {
	if l != nil {
		r.logger = l
	}
	return r
}

// Reader parses uploaded content. It is safe for concurrent use.
type Reader struct {
	config  ReaderConfig
	coercer *coercer.TypeCoercer
	logger  *internal.Logger
}

// NewReader creates a reader with the given settings
func NewReader(config ReaderConfig) *Reader {
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}
	return &Reader{
		config:  config,
		coercer: coercer.NewTypeCoercer(config.CoercionConfig),
		logger:  internal.DefaultLogger,
	}
}

// WithLogger replaces the reader's logger
func (r *Reader) WithLogger(l *internal.Logger) *Reader {
	if l != nil {
		r.logger = l
	}
	return r
}

// ReadDataset parses src according to the type implied by name.
func (r *Reader) ReadDataset(name string, src io.Reader) (*dataset.Dataset, error) {
	start := time.Now()

	var (
		ds  *dataset.Dataset
		err error
	)
	fileType := FileType(name)
	switch fileType {
	case FileTypeCSV:
		ds, err = r.ReadCSV(src)
	case FileTypeXLSX:
		ds, err = r.ReadXLSX(src)
	case FileTypeJSON:
		ds, err = r.ReadJSONRecords(src)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedType, filepath.Ext(name))
	}
	if err != nil {
		r.logger.Warn("[DataReader] failed to read %s: %v", name, err)
		return nil, err
	}

	ds.FileInfo.Filename = filepath.Base(name)
	r.logger.Info("[DataReader] %s file processed in %.2fms (%d columns, %d rows)",
		strings.ToUpper(fileType), float64(time.Since(start).Nanoseconds())/1e6, len(ds.Headers), ds.Len())
	return ds, nil
}

// ReadCSV parses delimited text with a header row.
func (r *Reader) ReadCSV(src io.Reader) (*dataset.Dataset, error) {
	reader := csv.NewReader(src)
	reader.Comma = r.config.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	raw := RawTable{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.NewInputReadError("malformed CSV", err)
		}

		if raw.Headers == nil {
			if len(record) > 0 {
				record[0] = strings.TrimPrefix(record[0], "\ufeff")
			}
			raw.Headers = record
			continue
		}
		if len(record) > len(raw.Headers) {
			line, _ := reader.FieldPos(0)
			return nil, core.NewInputReadError(
				fmt.Sprintf("Error tokenizing data. Expected %d fields in line %d, saw %d", len(raw.Headers), line, len(record)), nil)
		}
		raw.Rows = append(raw.Rows, record)
	}
	if raw.Headers == nil {
		return nil, core.ErrEmptyInput
	}

	ds := r.buildDataset(raw)
	ds.Source = FileTypeCSV
	ds.FileInfo.Delimiter = string(r.config.Delimiter)
	return ds, nil
}

// ReadXLSX parses the configured sheet (the first by default) of a workbook.
func (r *Reader) ReadXLSX(src io.Reader) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, core.NewInputReadError("failed to open Excel file", err)
	}
	defer f.Close()

	sheet := r.config.SheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, core.ErrEmptyInput
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, core.NewInputReadError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, core.ErrEmptyInput
	}

	raw := RawTable{Headers: rows[0]}
	for _, row := range rows[1:] {
		if len(row) > len(raw.Headers) {
			raw.Headers = append(raw.Headers, make([]string, len(row)-len(raw.Headers))...)
		}
		raw.Rows = append(raw.Rows, row)
	}

	ds := r.buildDataset(raw)
	ds.Source = FileTypeXLSX
	ds.FileInfo.SheetName = sheet
	return ds, nil
}

// buildDataset names the columns and types each one with the coercer.
func (r *Reader) buildDataset(raw RawTable) *dataset.Dataset {
	headers := uniqueHeaders(raw.Headers)

	columns := make([][]dataset.Value, len(headers))
	for c := range headers {
		cells := make([]string, len(raw.Rows))
		for i, row := range raw.Rows {
			if c < len(row) {
				cells[i] = row[c]
			}
		}
		columns[c] = r.coercer.CoerceColumn(cells)
	}

	rows := make([]dataset.Row, len(raw.Rows))
	for i := range raw.Rows {
		row := make(dataset.Row, len(headers))
		for c, h := range headers {
			row[h] = columns[c][i]
		}
		rows[i] = row
	}
	return dataset.New(headers, rows)
}

// uniqueHeaders names blank headers "Unnamed: i" and suffixes repeats with
// ".1", ".2" and so on.
func uniqueHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	counts := make(map[string]int, len(raw))
	for i, h := range raw {
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for used[name] {
			counts[h]++
			name = fmt.Sprintf("%s.%d", h, counts[h])
		}
		used[name] = true
		headers[i] = name
	}
	return headers
}

// ReadJSONRecords parses an array of objects. Column order follows the first
// appearance of each key; cells keep their JSON types, so list-valued cells
// arrive as lists.
func (r *Reader) ReadJSONRecords(src io.Reader) (*dataset.Dataset, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, core.NewInputReadError("failed to read JSON", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, core.ErrEmptyInput
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	var (
		headers []string
		seen    = make(map[string]bool)
		rows    []dataset.Row
	)
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		row := make(dataset.Row)
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, core.NewInputReadError("malformed JSON", err)
			}
			key, _ := tok.(string)
			var value interface{}
			if err := dec.Decode(&value); err != nil {
				return nil, core.NewInputReadError("malformed JSON", err)
			}
			if !seen[key] {
				seen[key] = true
				headers = append(headers, key)
			}
			row[key] = jsonValue(value)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}

	for _, row := range rows {
		for _, h := range headers {
			if _, ok := row[h]; !ok {
				row[h] = dataset.NewMissingValue()
			}
		}
	}

	ds := dataset.New(headers, rows)
	ds.Source = FileTypeJSON
	return ds, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return core.NewInputReadError("malformed JSON", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return core.NewInputReadError(fmt.Sprintf("expected %q in JSON records, got %v", want, tok), nil)
	}
	return nil
}

// jsonValue converts a decoded JSON value; nested objects keep their JSON text.
func jsonValue(v interface{}) dataset.Value {
	if obj, ok := v.(map[string]interface{}); ok {
		text, _ := json.Marshal(obj)
		return dataset.NewStringValue(string(text))
	}
	return dataset.FromAny(v)
}

// ReadCSV parses CSV with the default settings.
func ReadCSV(src io.Reader) (*dataset.Dataset, error) {
	return NewReader(DefaultReaderConfig()).ReadCSV(src)
}

// ReadXLSX parses the first sheet of a workbook with the default settings.
func ReadXLSX(src io.Reader) (*dataset.Dataset, error) {
	return NewReader(DefaultReaderConfig()).ReadXLSX(src)
}

// ReadJSONRecords parses JSON records with the default settings.
func ReadJSONRecords(src io.Reader) (*dataset.Dataset, error) {
	return NewReader(DefaultReaderConfig()).ReadJSONRecords(src)
}
