package metrics

import (
	"context"
	"math"
	"strconv"

	"golang.org/x/sync/errgroup"

	"wordmetrics/domain/core"
	"wordmetrics/domain/dataset"
	dm "wordmetrics/domain/metrics"
	"wordmetrics/internal"
)

// batchSize is the number of rows one worker handles per task.
const batchSize = 256

// Transformer runs the statement and identity transforms. It holds no state
// between runs and is safe for concurrent use.
type Transformer struct {
	workers int
	logger  *internal.Logger
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithWorkers bounds the goroutines used inside one run. Values below one
// mean a single worker.
func WithWorkers(n int) Option {
	return func(t *Transformer) {
		if n < 1 {
			n = 1
		}
		t.workers = n
	}
}

// WithLogger sets the logger used for run summaries.
func WithLogger(l *internal.Logger) Option {
	return func(t *Transformer) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTransformer creates a transformer with one worker and the default logger.
func NewTransformer(opts ...Option) *Transformer {
	t := &Transformer{workers: 1, logger: internal.DefaultLogger}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run validates cfg against ds and produces the result table for cfg.Mode.
// Statement-level runs over data with likes and comments also carry the
// impact summary.
func (t *Transformer) Run(ctx context.Context, ds *dataset.Dataset, cfg dm.Config) (*dm.Result, error) {
	start := core.Now()
	cfg = withDefaults(cfg)
	if err := Validate(ds, cfg); err != nil {
		return nil, err
	}

	result := &dm.Result{
		RunID:     core.NewRunID(),
		Mode:      cfg.Mode,
		Config:    cfg,
		Source:    ds.FileInfo.Filename,
		InputRows: ds.Len(),
		StartedAt: start,
	}
	eng := EngagementOf(ds)

	switch cfg.Mode {
	case dm.ModeIdentity:
		records, err := t.identities(ctx, ds, cfg, eng)
		if err != nil {
			return nil, err
		}
		result.Identities = records
		result.Table = IdentityTable(records, cfg.ClassifierColumns, eng)
	default:
		records, err := t.statements(ctx, ds, cfg, eng)
		if err != nil {
			return nil, err
		}
		result.Statements = records
		result.Table = StatementTable(records, cfg.ClassifierColumns, eng)
		if eng.Both() {
			result.Impact = ImpactSummary(records, cfg.ClassifierColumns)
			impact := ImpactTable(result.Impact)
			result.ImpactTable = &impact
		}
	}

	result.OutputRows = result.Table.Len()
	result.Duration = result.StartedAt.Since()
	t.logger.Info("[Transformer] run %s: mode=%s rows=%d output=%d classifiers=%d took=%s",
		result.RunID, cfg.Mode, result.InputRows, result.OutputRows, len(cfg.ClassifierColumns), result.Duration)
	return result, nil
}

// Statements builds one record per input row, in input order.
func (t *Transformer) Statements(ctx context.Context, ds *dataset.Dataset, cfg dm.Config) ([]dm.StatementRecord, error) {
	cfg = withDefaults(cfg)
	if err := Validate(ds, cfg); err != nil {
		return nil, err
	}
	return t.statements(ctx, ds, cfg, EngagementOf(ds))
}

// Identities builds one record per distinct identity value, ordered by first
// appearance.
func (t *Transformer) Identities(ctx context.Context, ds *dataset.Dataset, cfg dm.Config) ([]dm.IdentityRecord, error) {
	cfg = withDefaults(cfg)
	if err := Validate(ds, cfg); err != nil {
		return nil, err
	}
	return t.identities(ctx, ds, cfg, EngagementOf(ds))
}

// plan holds everything decided once per run.
type plan struct {
	cfg          dm.Config
	eng          Engagement
	termsColumns []string // "" when the found-terms column is absent
}

func newPlan(ds *dataset.Dataset, cfg dm.Config, eng Engagement) plan {
	p := plan{cfg: cfg, eng: eng, termsColumns: make([]string, len(cfg.ClassifierColumns))}
	for i, col := range cfg.ClassifierColumns {
		if name := TermsColumn(col, cfg.Naming); ds.HasColumn(name) {
			p.termsColumns[i] = name
		}
	}
	return p
}

func (p plan) foundTerms(row dataset.Row, i int) []string {
	if p.termsColumns[i] == "" {
		return []string{}
	}
	return NormalizeFoundTerms(row.Get(p.termsColumns[i]))
}

// forEach runs fn over [0, n) in batches on at most workers goroutines.
// Callers write results by index, so output order never depends on
// scheduling.
func (t *Transformer) forEach(ctx context.Context, n int, fn func(i int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.workers)
	for lo := 0; lo < n; lo += batchSize {
		lo := lo
		hi := min(lo+batchSize, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				fn(i)
			}
			return nil
		})
	}
	return g.Wait()
}

func (t *Transformer) statements(ctx context.Context, ds *dataset.Dataset, cfg dm.Config, eng Engagement) ([]dm.StatementRecord, error) {
	p := newPlan(ds, cfg, eng)
	records := make([]dm.StatementRecord, ds.Len())
	err := t.forEach(ctx, ds.Len(), func(i int) {
		records[i] = p.statement(i, ds.Rows[i])
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (p plan) statement(i int, row dataset.Row) dm.StatementRecord {
	text := row.Get(p.cfg.TextColumn).PyString()
	words := CountWords(text)

	rec := dm.StatementRecord{
		RowID:     i + 1,
		ID:        row.Get(p.cfg.IDColumn),
		Statement: text,
		WordCount: words,
		Scores:    make([]dm.ClassifierScore, len(p.cfg.ClassifierColumns)),
	}
	if p.eng.Likes {
		rec.Likes = engagementCell(row.Get(dm.LikesColumn), p.eng.likesIntegral)
	}
	if p.eng.Comments {
		rec.Comments = engagementCell(row.Get(dm.CommentsColumn), p.eng.commentsIntegral)
	}

	for c, col := range p.cfg.ClassifierColumns {
		terms := len(p.foundTerms(row, c))
		pct := 0.0
		if words > 0 {
			pct = roundTo(100*float64(terms)/float64(words), p.cfg.Precision())
		}
		rec.Scores[c] = dm.ClassifierScore{
			Column:     col,
			Value:      classifierValue(row.Get(col)),
			TermCount:  terms,
			Percentage: pct,
		}
	}
	return rec
}

// group is the row indexes sharing one identity value.
type group struct {
	id   dataset.Value
	rows []int
}

// groupRows groups row indexes by identity value in first-appearance order.
// Missing identities share one group.
func groupRows(rows []dataset.Row, column string) []group {
	index := make(map[string]int)
	var groups []group
	for i, row := range rows {
		id := row.Get(column)
		key := id.Key()
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, group{id: id})
		}
		groups[g].rows = append(groups[g].rows, i)
	}
	return groups
}

func (t *Transformer) identities(ctx context.Context, ds *dataset.Dataset, cfg dm.Config, eng Engagement) ([]dm.IdentityRecord, error) {
	p := newPlan(ds, cfg, eng)
	groups := groupRows(ds.Rows, cfg.IDColumn)
	records := make([]dm.IdentityRecord, len(groups))
	err := t.forEach(ctx, len(groups), func(i int) {
		rows := make([]dataset.Row, len(groups[i].rows))
		for j, idx := range groups[i].rows {
			rows[j] = ds.Rows[idx]
		}
		records[i] = p.identity(groups[i].id, rows)
	})
	if err != nil {
		return nil, err
	}
	t.logger.Debug("[Transformer] grouped %d rows into %d identities by %q", ds.Len(), len(groups), cfg.IDColumn)
	return records, nil
}

func (p plan) identity(id dataset.Value, rows []dataset.Row) dm.IdentityRecord {
	rec := dm.IdentityRecord{
		ID:        id,
		GroupSize: len(rows),
		Scores:    make([]dm.IdentityScore, len(p.cfg.ClassifierColumns)),
	}
	for _, row := range rows {
		rec.TotalWordCount += CountWords(row.Get(p.cfg.TextColumn).PyString())
	}
	if p.eng.Likes {
		rec.TotalLikes = engagementSum(rows, dm.LikesColumn, p.eng.likesIntegral)
	}
	if p.eng.Comments {
		rec.TotalComments = engagementSum(rows, dm.CommentsColumn, p.eng.commentsIntegral)
	}

	for c, col := range p.cfg.ClassifierColumns {
		var fired []dataset.Row
		words := 0
		for _, row := range rows {
			if classifierValue(row.Get(col)) > 0 {
				fired = append(fired, row)
				words += len(p.foundTerms(row, c))
			}
		}

		ratio := float64(len(fired)) / float64(len(rows))
		score := dm.IdentityScore{
			Column:          col,
			Positive:        len(fired),
			PositiveRatio:   ratio,
			WordCount:       words,
			Percentage:      roundTo(100*ratio, p.cfg.Precision()),
			ContinuousScore: roundTo(ratio, 3),
		}
		if p.eng.Likes {
			score.Likes = engagementSum(fired, dm.LikesColumn, p.eng.likesIntegral)
		}
		if p.eng.Comments {
			score.Comments = engagementSum(fired, dm.CommentsColumn, p.eng.commentsIntegral)
		}
		rec.Scores[c] = score
	}
	return rec
}

// classifierValue reads a classifier cell as a float, with missing as zero.
func classifierValue(v dataset.Value) float64 {
	f, ok := v.ToFloat()
	if !ok || math.IsNaN(f) {
		return 0
	}
	return f
}

// roundTo rounds x to places decimals, sending exact halves to the even
// digit; negative places leave x as is.
func roundTo(x float64, places int) float64 {
	if places < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil {
		return x
	}
	return r
}
