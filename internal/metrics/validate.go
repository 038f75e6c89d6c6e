package metrics

import (
	"fmt"

	"wordmetrics/domain/core"
	"wordmetrics/domain/dataset"
	dm "wordmetrics/domain/metrics"
)

// Validate checks the column roles against the dataset before any row is
// transformed. Every non-missing classifier cell must read as a number.
func Validate(ds *dataset.Dataset, cfg dm.Config) error {
	if ds == nil {
		return core.NewInputReadError("no dataset", nil)
	}

	switch cfg.Mode {
	case dm.ModeStatement, dm.ModeIdentity:
	default:
		return fmt.Errorf("%w: %q", core.ErrInvalidMode, cfg.Mode)
	}
	switch cfg.Naming {
	case dm.NamingStripHasPrefix, dm.NamingVerbatim:
	default:
		return fmt.Errorf("%w: %q", core.ErrInvalidNaming, cfg.Naming)
	}
	if !dm.ValidPrecision(cfg.Precision()) {
		return fmt.Errorf("%w: %d decimals, want %d to %d",
			core.ErrInvalidPrecision, cfg.Precision(), dm.Unrounded, dm.MaxPercentPrecision)
	}

	if cfg.IDColumn == "" || !ds.HasColumn(cfg.IDColumn) {
		return core.NewColumnNotFoundError("id", cfg.IDColumn)
	}
	if cfg.TextColumn == "" || !ds.HasColumn(cfg.TextColumn) {
		return core.NewColumnNotFoundError("text", cfg.TextColumn)
	}
	if cfg.TextColumn == cfg.IDColumn {
		return core.NewDuplicateColumnError(cfg.TextColumn)
	}

	seen := map[string]bool{cfg.IDColumn: true, cfg.TextColumn: true}
	for _, col := range cfg.ClassifierColumns {
		if !ds.HasColumn(col) {
			return core.NewColumnNotFoundError("classifier", col)
		}
		if seen[col] {
			return core.NewDuplicateColumnError(col)
		}
		seen[col] = true
	}

	for _, col := range cfg.ClassifierColumns {
		for i, row := range ds.Rows {
			v := row.Get(col)
			if v.IsMissing() {
				continue
			}
			if _, ok := v.ToFloat(); !ok {
				return core.NewNonNumericError(col, i+1, v.PyString())
			}
		}
	}

	out := make(map[string]bool)
	for _, name := range OutputColumns(cfg, EngagementOf(ds)) {
		if out[name] {
			return core.NewDuplicateColumnError(name)
		}
		out[name] = true
	}
	return nil
}

// withDefaults fills an unset mode and naming rule.
func withDefaults(cfg dm.Config) dm.Config {
	if cfg.Mode == "" {
		cfg.Mode = dm.ModeStatement
	}
	if cfg.Naming == "" {
		cfg.Naming = dm.NamingStripHasPrefix
	}
	return cfg
}
