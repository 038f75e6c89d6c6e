// Package metrics turns a dataset of classified statements into word-based
// metrics, per statement or per identity, and rolls engagement up per
// classifier.
package metrics

import (
	"strings"

	"wordmetrics/domain/dataset"
	dm "wordmetrics/domain/metrics"
	"wordmetrics/internal/literal"
)

// TermsColumn returns the name of the found-terms column that accompanies a
// classifier column.
func TermsColumn(classifier string, naming dm.TermsNaming) string {
	base := classifier
	if naming != dm.NamingVerbatim {
		base = strings.TrimPrefix(classifier, "has_")
	}
	return "found_" + base + "_terms"
}

// NormalizeFoundTerms turns a found-terms cell into a list of terms. Lists are
// used as they are, strings are parsed as a printed list literal, and
// everything else (including unparsable text) yields an empty list.
func NormalizeFoundTerms(v dataset.Value) []string {
	switch v.Type {
	case dataset.ValueTypeList:
		terms := make([]string, len(v.List))
		for i, item := range v.List {
			terms[i] = item.PyString()
		}
		return terms
	case dataset.ValueTypeString:
		if terms, ok := literal.ParseList(v.Str); ok {
			return terms
		}
	}
	return []string{}
}

// CountWords counts whitespace-separated tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
