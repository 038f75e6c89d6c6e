package dataset

import (
	"fmt"
)

// Row maps column name to cell value.
type Row map[string]Value

// Get returns the cell for column, or a missing value when the row has no
// such column.
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return NewMissingValue()
}

// Dataset is an ordered sequence of rows with named columns. Column order is
// kept for display only.
type Dataset struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`

	// Source describes where the rows came from ("csv", "xlsx", "json", "memory").
	Source   string   `json:"source"`
	FileInfo FileInfo `json:"file_info"`

	columnSet map[string]struct{}
}

// FileInfo contains file-specific metadata
type FileInfo struct {
	Filename  string `json:"filename,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`
	SheetName string `json:"sheet_name,omitempty"` // for Excel files
}

// FieldInfo describes a single field/column in the dataset
type FieldInfo struct {
	Name         string    `json:"name"`
	DataType     ValueType `json:"data_type"`
	MissingCount int       `json:"missing_count"`
	UniqueCount  int       `json:"unique_count"`
}

// New builds a dataset from headers and rows.
func New(headers []string, rows []Row) *Dataset {
	ds := &Dataset{Headers: headers, Rows: rows, Source: "memory"}
	ds.index()
	return ds
}

// FromRecords builds an in-memory dataset from plain Go values. Column order
// follows headers; record values go through FromAny.
func FromRecords(headers []string, records []map[string]interface{}) *Dataset {
	rows := make([]Row, len(records))
	for i, rec := range records {
		row := make(Row, len(headers))
		for _, h := range headers {
			if raw, ok := rec[h]; ok {
				row[h] = FromAny(raw)
			} else {
				row[h] = NewMissingValue()
			}
		}
		rows[i] = row
	}
	return New(headers, rows)
}

func (d *Dataset) index() {
	d.columnSet = make(map[string]struct{}, len(d.Headers))
	for _, h := range d.Headers {
		d.columnSet[h] = struct{}{}
	}
}

// HasColumn reports whether the dataset carries the named column.
func (d *Dataset) HasColumn(name string) bool {
	if d.columnSet != nil {
		_, ok := d.columnSet[name]
		return ok
	}
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// Len returns the row count.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Column returns every cell of one column in row order.
func (d *Dataset) Column(name string) ([]Value, error) {
	if !d.HasColumn(name) {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]Value, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row.Get(name)
	}
	return out, nil
}

// Fields describes each column: dominant type, missing and unique counts.
func (d *Dataset) Fields() []FieldInfo {
	fields := make([]FieldInfo, 0, len(d.Headers))
	for _, h := range d.Headers {
		info := FieldInfo{Name: h, DataType: ValueTypeMissing}
		seen := make(map[string]struct{})
		for _, row := range d.Rows {
			v := row.Get(h)
			if v.IsMissing() {
				info.MissingCount++
				continue
			}
			info.DataType = widen(info.DataType, v.Type)
			seen[v.Key()] = struct{}{}
		}
		info.UniqueCount = len(seen)
		fields = append(fields, info)
	}
	return fields
}

// widen merges two observed cell types into the column type that holds both.
func widen(current, next ValueType) ValueType {
	switch {
	case current == ValueTypeMissing || current == next:
		return next
	case (current == ValueTypeInt && next == ValueTypeFloat) || (current == ValueTypeFloat && next == ValueTypeInt):
		return ValueTypeFloat
	}
	return ValueTypeString
}
