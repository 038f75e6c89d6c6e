package metrics

import (
	"fmt"
	"strings"
	"time"

	"wordmetrics/domain/core"
	"wordmetrics/domain/dataset"
)

// ProcessMode selects the output granularity of a run.
type ProcessMode string

const (
	ModeStatement ProcessMode = "statement_level"
	ModeIdentity  ProcessMode = "id_level_aggregate"
)

// ParseProcessMode accepts the canonical names plus the short forms used on
// the command line.
func ParseProcessMode(s string) (ProcessMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "statement_level", "statement", "statement-level":
		return ModeStatement, nil
	case "id_level_aggregate", "id", "id-level", "identity", "aggregate":
		return ModeIdentity, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidMode, s)
}

// TermsNaming selects how a classifier column maps to its found-terms column.
type TermsNaming string

const (
	// NamingStripHasPrefix maps has_scam to found_scam_terms.
	NamingStripHasPrefix TermsNaming = "strip_has_prefix"
	// NamingVerbatim maps has_scam to found_has_scam_terms.
	NamingVerbatim TermsNaming = "verbatim"
)

func ParseTermsNaming(s string) (TermsNaming, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strip_has_prefix", "strip":
		return NamingStripHasPrefix, nil
	case "verbatim", "full":
		return NamingVerbatim, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidNaming, s)
}

// Percentage precision bounds. Unrounded disables rounding; beyond
// MaxPercentPrecision decimals a float64 carries no further digits.
const (
	Unrounded               = -1
	DefaultPercentPrecision = 2
	MaxPercentPrecision     = 15
)

// Places returns a precision setting for Config.PercentPrecision.
func Places(n int) *int { return &n }

// ValidPrecision reports whether n is Unrounded or a decimal count within
// MaxPercentPrecision.
func ValidPrecision(n int) bool {
	return n >= Unrounded && n <= MaxPercentPrecision
}

// Output column names that depend on the source dataset.
const (
	LikesColumn    = "number_likes"
	CommentsColumn = "number_comments"
)

// Config carries the column roles and options for one run.
type Config struct {
	IDColumn          string      `json:"id_column" yaml:"id_column"`
	TextColumn        string      `json:"text_column" yaml:"text_column"`
	ClassifierColumns []string    `json:"classifier_columns" yaml:"classifier_columns"`
	Mode              ProcessMode `json:"mode" yaml:"mode"`
	Naming            TermsNaming `json:"terms_naming" yaml:"terms_naming"`

	// PercentPrecision is the number of decimals kept in percentages, or
	// Unrounded. Nil means DefaultPercentPrecision.
	PercentPrecision *int `json:"percent_precision,omitempty" yaml:"percent_precision,omitempty"`
}

// Precision returns the effective number of percentage decimals.
func (c Config) Precision() int {
	if c.PercentPrecision == nil {
		return DefaultPercentPrecision
	}
	return *c.PercentPrecision
}

// DefaultConfig returns a statement-level config with the has_ prefix rule
// and two-decimal percentages.
func DefaultConfig() Config {
	return Config{
		Mode:   ModeStatement,
		Naming: NamingStripHasPrefix,
	}
}

// ClassifierScore is one classifier's contribution to a statement record.
type ClassifierScore struct {
	Column     string  `json:"column"`
	Value      float64 `json:"value"`
	TermCount  int     `json:"term_count"`
	Percentage float64 `json:"percentage"`
}

// StatementRecord is one output row per input row.
type StatementRecord struct {
	RowID     int           `json:"row_id"`
	ID        dataset.Value `json:"id"`
	Statement string        `json:"statement"`
	WordCount int           `json:"word_count"`

	// Likes and Comments are nil when the dataset has no such column.
	Likes    *dataset.Value `json:"number_likes,omitempty"`
	Comments *dataset.Value `json:"number_comments,omitempty"`

	Scores []ClassifierScore `json:"scores"`
}

// Score returns the score for column.
func (r StatementRecord) Score(column string) (ClassifierScore, bool) {
	for _, s := range r.Scores {
		if s.Column == column {
			return s, true
		}
	}
	return ClassifierScore{}, false
}

// IdentityScore is one classifier's aggregate over an identity group.
type IdentityScore struct {
	Column          string  `json:"column"`
	Positive        int     `json:"positive"`
	PositiveRatio   float64 `json:"positive_ratio"`
	WordCount       int     `json:"word_count"`
	Percentage      float64 `json:"percentage"`
	ContinuousScore float64 `json:"continuous_score"`

	Likes    *dataset.Value `json:"likes,omitempty"`
	Comments *dataset.Value `json:"comments,omitempty"`
}

// IdentityRecord is one output row per distinct identity value.
type IdentityRecord struct {
	ID             dataset.Value `json:"id"`
	GroupSize      int           `json:"group_size"`
	TotalWordCount int           `json:"total_word_count"`

	TotalLikes    *dataset.Value `json:"total_likes,omitempty"`
	TotalComments *dataset.Value `json:"total_comments,omitempty"`

	Scores []IdentityScore `json:"scores"`
}

// ImpactRow is the engagement rollup of one classifier, counting each
// identity once.
type ImpactRow struct {
	Tactic             string        `json:"tactic"`
	PositiveStatements int           `json:"positive_statements"`
	UniquePosts        int           `json:"unique_posts"`
	TotalLikes         dataset.Value `json:"total_likes"`
	AvgLikes           float64       `json:"avg_likes"`
	TotalComments      dataset.Value `json:"total_comments"`
	AvgComments        float64       `json:"avg_comments"`
}

// Table is a rendered result: named columns and rows of cells in column order.
type Table struct {
	Name    string            `json:"name"`
	Columns []string          `json:"columns"`
	Rows    [][]dataset.Value `json:"rows"`
}

// Len returns the row count.
func (t Table) Len() int {
	return len(t.Rows)
}

// Head returns a table with at most n rows. A negative n keeps every row.
func (t Table) Head(n int) Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return Table{Name: t.Name, Columns: t.Columns, Rows: t.Rows[:n]}
}

// ColumnIndex returns the position of name, or -1.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Result is the outcome of one transform.
type Result struct {
	RunID       core.RunID     `json:"run_id"`
	Mode        ProcessMode    `json:"mode"`
	Config      Config         `json:"config"`
	Source      string         `json:"source,omitempty"`
	Fingerprint core.Hash      `json:"fingerprint,omitempty"`
	InputRows   int            `json:"input_rows"`
	OutputRows  int            `json:"output_rows"`
	StartedAt   core.Timestamp `json:"started_at"`
	Duration    time.Duration  `json:"duration_ns"`

	Statements []StatementRecord `json:"-"`
	Identities []IdentityRecord  `json:"-"`

	Table Table `json:"table"`

	// Impact is set only for statement-level runs over data with both
	// likes and comments columns.
	Impact      []ImpactRow `json:"-"`
	ImpactTable *Table      `json:"impact,omitempty"`
}
