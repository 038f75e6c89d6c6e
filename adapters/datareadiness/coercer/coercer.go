package coercer

import (
	"math"
	"strconv"
	"strings"

	"wordmetrics/domain/dataset"
)

// DefaultNATokens are the cell texts read as missing.
var DefaultNATokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// TypeCoercer turns raw text cells into typed values, one column at a time
type TypeCoercer struct {
	config CoercionConfig
	na     map[string]struct{}
}

// CoercionConfig defines the coercion rules
type CoercionConfig struct {
	NATokens    []string `json:"na_tokens"`    // texts read as missing, matched exactly
	TrueValues  []string `json:"true_values"`  // texts read as True in a boolean column
	FalseValues []string `json:"false_values"` // texts read as False in a boolean column
	InferTypes  bool     `json:"infer_types"`  // false keeps every non-missing cell as text
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NATokens:    DefaultNATokens,
		TrueValues:  []string{"True", "TRUE", "true"},
		FalseValues: []string{"False", "FALSE", "false"},
		InferTypes:  true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	na := make(map[string]struct{}, len(config.NATokens))
	for _, tok := range config.NATokens {
		na[tok] = struct{}{}
	}
	return &TypeCoercer{config: config, na: na}
}

// IsNA reports whether raw is one of the missing-value tokens
func (c *TypeCoercer) IsNA(raw string) bool {
	_, ok := c.na[raw]
	return ok
}

// CoerceColumn types a whole column. The column type is decided from all of
// its non-missing cells: integers, then floats, then booleans, otherwise text.
// An integer column with missing cells becomes a float column.
func (c *TypeCoercer) CoerceColumn(raw []string) []dataset.Value {
	analysis := c.AnalyzeColumn(raw)
	out := make([]dataset.Value, len(raw))
	for i, s := range raw {
		out[i] = c.coerceAs(s, analysis.RecommendedType)
	}
	return out
}

// CoerceValue types a single cell on its own.
func (c *TypeCoercer) CoerceValue(raw string) dataset.Value {
	return c.CoerceColumn([]string{raw})[0]
}

// AnalyzeColumn counts how the column's cells parse and picks its type
func (c *TypeCoercer) AnalyzeColumn(raw []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(raw)}

	for _, s := range raw {
		if c.IsNA(s) {
			analysis.MissingCount++
			continue
		}
		analysis.ValidCount++
		if _, ok := parseInt(s); ok {
			analysis.IntCount++
		}
		if _, ok := parseFloat(s); ok {
			analysis.FloatCount++
		}
		if _, ok := c.parseBool(s); ok {
			analysis.BooleanCount++
		}
	}

	analysis.RecommendedType = c.determineRecommendedType(analysis)
	return analysis
}

func (c *TypeCoercer) determineRecommendedType(a TypeAnalysis) dataset.ValueType {
	switch {
	case a.ValidCount == 0:
		return dataset.ValueTypeFloat
	case !c.config.InferTypes:
		return dataset.ValueTypeString
	case a.IntCount == a.ValidCount && a.MissingCount == 0:
		return dataset.ValueTypeInt
	case a.FloatCount == a.ValidCount:
		return dataset.ValueTypeFloat
	case a.BooleanCount == a.ValidCount:
		return dataset.ValueTypeBool
	}
	return dataset.ValueTypeString
}

func (c *TypeCoercer) coerceAs(raw string, t dataset.ValueType) dataset.Value {
	if c.IsNA(raw) {
		return dataset.NewMissingValue()
	}
	switch t {
	case dataset.ValueTypeInt:
		if i, ok := parseInt(raw); ok {
			return dataset.NewIntValue(i)
		}
	case dataset.ValueTypeFloat:
		if f, ok := parseFloat(raw); ok {
			return dataset.NewFloatValue(f)
		}
	case dataset.ValueTypeBool:
		if b, ok := c.parseBool(raw); ok {
			return dataset.NewBoolValue(b)
		}
	}
	return dataset.NewStringValue(raw)
}

func parseInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return i, err == nil
}

// parseFloat accepts decimal and exponent forms only; digit separators and
// hex floats stay text.
func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "_xXpP") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRange(err) {
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func isRange(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}

func (c *TypeCoercer) parseBool(s string) (bool, bool) {
	for _, t := range c.config.TrueValues {
		if s == t {
			return true, true
		}
	}
	for _, f := range c.config.FalseValues {
		if s == f {
			return false, true
		}
	}
	return false, false
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount      int               `json:"total_count"`
	ValidCount      int               `json:"valid_count"`
	MissingCount    int               `json:"missing_count"`
	IntCount        int               `json:"int_count"`
	FloatCount      int               `json:"float_count"`
	BooleanCount    int               `json:"boolean_count"`
	RecommendedType dataset.ValueType `json:"recommended_type"`
}
