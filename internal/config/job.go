package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"wordmetrics/domain/metrics"
	"wordmetrics/internal/errors"
)

// Job is a saved transform: the column roles and options of one run plus
// where to write the result.
type Job struct {
	IDColumn          string   `yaml:"id_column"`
	TextColumn        string   `yaml:"text_column"`
	ClassifierColumns []string `yaml:"classifier_columns"`
	Mode              string   `yaml:"mode"`
	TermsNaming       string   `yaml:"terms_naming"`
	PercentPrecision  *int     `yaml:"percent_precision"`
	Output            string   `yaml:"output"`
	Format            string   `yaml:"format"`
}

// LoadJob reads a YAML job file.
func LoadJob(path string) (*Job, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("failed to open job file: %v", err))
	}
	defer file.Close()

	return DecodeJob(file)
}

// DecodeJob decodes a job document. Unknown keys are rejected.
func DecodeJob(r io.Reader) (*Job, error) {
	job := &Job{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(job); err != nil && err != io.EOF {
		return nil, &errors.AppError{Code: errors.CodeConfigInvalid, Message: "failed to decode job file", Cause: err}
	}
	return job, nil
}

// MetricsConfig builds the run config from the job, falling back to the
// transform defaults for options the job leaves out.
func (j *Job) MetricsConfig(defaults TransformConfig) (metrics.Config, error) {
	cfg := metrics.DefaultConfig()
	cfg.IDColumn = j.IDColumn
	cfg.TextColumn = j.TextColumn
	cfg.ClassifierColumns = SplitColumns(j.ClassifierColumns)
	precision := defaults.PercentPrecision
	if j.PercentPrecision != nil {
		precision = *j.PercentPrecision
	}
	cfg.PercentPrecision = metrics.Places(precision)

	mode, err := metrics.ParseProcessMode(j.Mode)
	if err != nil {
		return cfg, errors.InvalidInput(err.Error())
	}
	cfg.Mode = mode

	naming := string(defaults.TermsNaming)
	if j.TermsNaming != "" {
		naming = j.TermsNaming
	}
	if cfg.Naming, err = metrics.ParseTermsNaming(naming); err != nil {
		return cfg, errors.InvalidInput(err.Error())
	}
	if !metrics.ValidPrecision(precision) {
		return cfg, errors.InvalidInput(fmt.Sprintf("percent_precision must be between %d and %d, got %d",
			metrics.Unrounded, metrics.MaxPercentPrecision, precision))
	}
	return cfg, nil
}

// SplitColumns flattens comma-separated entries and drops blanks, so
// ["a,b", " c "] and ["a", "b", "c"] name the same columns.
func SplitColumns(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
