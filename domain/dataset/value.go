package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValueType defines the storage type for cell values
type ValueType string

const (
	ValueTypeMissing ValueType = "missing"
	ValueTypeString  ValueType = "string"
	ValueTypeInt     ValueType = "int"
	ValueTypeFloat   ValueType = "float"
	ValueTypeBool    ValueType = "bool"
	ValueTypeList    ValueType = "list"
)

// Value is a single typed cell. The zero Value is missing.
type Value struct {
	Type  ValueType
	Str   string
	Int   int64
	Float float64
	Bool  bool
	List  []Value
}

// NewMissingValue creates a missing value
func NewMissingValue() Value { return Value{Type: ValueTypeMissing} }

// NewStringValue creates a string value. The empty string is kept as a string.
func NewStringValue(s string) Value { return Value{Type: ValueTypeString, Str: s} }

// NewIntValue creates an integer value
func NewIntValue(i int64) Value { return Value{Type: ValueTypeInt, Int: i} }

// NewFloatValue creates a float value
func NewFloatValue(f float64) Value { return Value{Type: ValueTypeFloat, Float: f} }

// NewBoolValue creates a boolean value
func NewBoolValue(b bool) Value { return Value{Type: ValueTypeBool, Bool: b} }

// NewListValue creates a list value
func NewListValue(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Type: ValueTypeList, List: items}
}

// NewStringListValue creates a list of string values
func NewStringListValue(items []string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = NewStringValue(s)
	}
	return NewListValue(list)
}

// IsMissing reports whether the cell holds no value. A float NaN counts as missing.
func (v Value) IsMissing() bool {
	switch v.Type {
	case "", ValueTypeMissing:
		return true
	case ValueTypeFloat:
		return math.IsNaN(v.Float)
	}
	return false
}

// IsNumeric returns true for int, float and bool cells
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeInt || v.Type == ValueTypeFloat || v.Type == ValueTypeBool
}

// IsList returns true if the value represents a list
func (v Value) IsList() bool {
	return v.Type == ValueTypeList
}

// ToFloat converts the cell the way Python's float() would. Missing cells
// are reported as NaN with ok=true; strings that are not numbers give ok=false.
func (v Value) ToFloat() (float64, bool) {
	switch v.Type {
	case "", ValueTypeMissing:
		return math.NaN(), true
	case ValueTypeInt:
		return float64(v.Int), true
	case ValueTypeFloat:
		return v.Float, true
	case ValueTypeBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case ValueTypeString:
		return ParsePyFloat(v.Str)
	}
	return 0, false
}

// PyString renders the value the way Python's str() renders the matching
// pandas cell: missing becomes "nan", floats use the shortest repr.
func (v Value) PyString() string {
	switch v.Type {
	case "", ValueTypeMissing:
		return "nan"
	case ValueTypeString:
		return v.Str
	case ValueTypeList:
		return v.Repr()
	}
	return v.scalarString()
}

// Repr renders the value the way Python's repr() would.
func (v Value) Repr() string {
	switch v.Type {
	case "", ValueTypeMissing:
		return "nan"
	case ValueTypeString:
		return PyQuote(v.Str)
	case ValueTypeList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.Repr()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return v.scalarString()
}

// Format renders the value for delimited-text export. Missing cells become
// the empty string.
func (v Value) Format() string {
	if v.IsMissing() {
		return ""
	}
	return v.PyString()
}

// Key returns a grouping key. Numeric values compare by number, so 1 and
// 1.0 share a key; strings compare by text.
func (v Value) Key() string {
	switch v.Type {
	case "", ValueTypeMissing:
		return "m:"
	case ValueTypeString:
		return "s:" + v.Str
	case ValueTypeList:
		return "l:" + v.Repr()
	}
	if v.IsMissing() {
		return "m:"
	}
	f, _ := v.ToFloat()
	return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
}

// Equal reports whether two values fall into the same group.
func (v Value) Equal(other Value) bool {
	return v.Key() == other.Key()
}

func (v Value) scalarString() string {
	switch v.Type {
	case ValueTypeInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueTypeFloat:
		return FormatPyFloat(v.Float)
	case ValueTypeBool:
		if v.Bool {
			return "True"
		}
		return "False"
	}
	return ""
}

// MarshalJSON encodes missing and NaN as null and lists as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case "", ValueTypeMissing:
		return []byte("null"), nil
	case ValueTypeString:
		return json.Marshal(v.Str)
	case ValueTypeInt:
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	case ValueTypeFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.Float, 'g', -1, 64)), nil
	case ValueTypeBool:
		return json.Marshal(v.Bool)
	case ValueTypeList:
		return json.Marshal(v.List)
	}
	return []byte("null"), nil
}

// FromAny converts a decoded JSON value or a plain Go value into a cell.
// Unknown types become missing.
func FromAny(raw interface{}) Value {
	switch t := raw.(type) {
	case nil:
		return NewMissingValue()
	case string:
		return NewStringValue(t)
	case bool:
		return NewBoolValue(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return NewIntValue(i)
		}
		if f, err := t.Float64(); err == nil {
			return NewFloatValue(f)
		}
		return NewStringValue(t.String())
	case float64:
		return NewFloatValue(t)
	case int:
		return NewIntValue(int64(t))
	case int64:
		return NewIntValue(t)
	case []string:
		return NewStringListValue(t)
	case []interface{}:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return NewListValue(items)
	case Value:
		return t
	}
	return NewMissingValue()
}
