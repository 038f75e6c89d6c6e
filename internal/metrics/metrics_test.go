package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmetrics/domain/core"
	"wordmetrics/domain/dataset"
	dm "wordmetrics/domain/metrics"
	"wordmetrics/internal/literal"
	"wordmetrics/internal/testkit"
)

func scenarioConfig(mode dm.ProcessMode) dm.Config {
	cfg := dm.DefaultConfig()
	cfg.IDColumn = "post_id"
	cfg.TextColumn = "text"
	cfg.ClassifierColumns = []string{"has_x"}
	cfg.Mode = mode
	cfg.Naming = dm.NamingVerbatim
	return cfg
}

func engagementDataset() *dataset.Dataset {
	return dataset.FromRecords(
		[]string{"post_id", "text", "number_likes", "number_comments", "has_x", "found_x_terms"},
		[]map[string]interface{}{
			{"post_id": "A", "text": "act now", "number_likes": 10, "number_comments": 2, "has_x": 1, "found_x_terms": "['now']"},
			{"post_id": "A", "text": "hurry up today", "number_likes": 10, "number_comments": 2, "has_x": 1, "found_x_terms": "['hurry', 'today']"},
			{"post_id": "B", "text": "fine", "number_likes": 5, "number_comments": 1, "has_x": 0, "found_x_terms": "[]"},
			{"post_id": "C", "text": "last chance", "number_likes": 7, "number_comments": 3, "has_x": 1, "found_x_terms": "['last']"},
		},
	)
}

func engagementConfig(mode dm.ProcessMode) dm.Config {
	cfg := dm.DefaultConfig()
	cfg.IDColumn = "post_id"
	cfg.TextColumn = "text"
	cfg.ClassifierColumns = []string{"has_x"}
	cfg.Mode = mode
	return cfg
}

func TestTermsColumn(t *testing.T) {
	tests := []struct {
		classifier string
		naming     dm.TermsNaming
		want       string
	}{
		{"has_scam", dm.NamingStripHasPrefix, "found_scam_terms"},
		{"has_scam", dm.NamingVerbatim, "found_has_scam_terms"},
		{"urgency", dm.NamingStripHasPrefix, "found_urgency_terms"},
		{"has_has_x", dm.NamingStripHasPrefix, "found_has_x_terms"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TermsColumn(tt.classifier, tt.naming))
	}
}

func TestNormalizeFoundTerms(t *testing.T) {
	tests := []struct {
		name string
		in   dataset.Value
		want []string
	}{
		{"real list", dataset.NewStringListValue([]string{"a", "b"}), []string{"a", "b"}},
		{"printed list", dataset.NewStringValue("['scam', 'win']"), []string{"scam", "win"}},
		{"json style list", dataset.NewStringValue(`["great"]`), []string{"great"}},
		{"empty printed list", dataset.NewStringValue("[]"), []string{}},
		{"malformed", dataset.NewStringValue("not a list"), []string{}},
		{"tuple", dataset.NewStringValue("('a',)"), []string{}},
		{"quoted string", dataset.NewStringValue("'a'"), []string{}},
		{"number", dataset.NewIntValue(3), []string{}},
		{"missing", dataset.NewMissingValue(), []string{}},
		{"mixed list", dataset.NewListValue([]dataset.Value{dataset.NewStringValue("a"), dataset.NewIntValue(2)}), []string{"a", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFoundTerms(tt.in))
		})
	}
}

func TestNormalizeFoundTermsIdempotent(t *testing.T) {
	lists := [][]string{{}, {"a"}, {"it's", "x y", `"q"`}}
	for _, terms := range lists {
		once := NormalizeFoundTerms(dataset.NewStringListValue(terms))
		twice := NormalizeFoundTerms(dataset.NewStringListValue(once))
		assert.Equal(t, once, twice)
		assert.Equal(t, terms, NormalizeFoundTerms(dataset.NewStringValue(literal.FormatList(terms))))
	}
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   \t\n"))
	assert.Equal(t, 1, CountWords("nan"))
	assert.Equal(t, 3, CountWords("  i  love\tit\n"))
}

func TestValidate(t *testing.T) {
	ds := testkit.ScenarioDataset()

	tests := []struct {
		name   string
		mutate func(*dm.Config)
		target error
	}{
		{"missing id column", func(c *dm.Config) { c.IDColumn = "nope" }, core.ErrColumnNotFound},
		{"missing text column", func(c *dm.Config) { c.TextColumn = "" }, core.ErrColumnNotFound},
		{"text equals id", func(c *dm.Config) { c.TextColumn = "post_id" }, core.ErrDuplicateColumn},
		{"classifier equals text", func(c *dm.Config) { c.ClassifierColumns = []string{"text"} }, core.ErrDuplicateColumn},
		{"repeated classifier", func(c *dm.Config) { c.ClassifierColumns = []string{"has_x", "has_x"} }, core.ErrDuplicateColumn},
		{"unknown classifier", func(c *dm.Config) { c.ClassifierColumns = []string{"has_y"} }, core.ErrColumnNotFound},
		{"text classifier", func(c *dm.Config) { c.ClassifierColumns = []string{"found_has_x_terms"} }, core.ErrNonNumericClassifier},
		{"bad mode", func(c *dm.Config) { c.Mode = "weekly" }, core.ErrInvalidMode},
		{"bad naming", func(c *dm.Config) { c.Naming = "upper" }, core.ErrInvalidNaming},
		{"precision too large", func(c *dm.Config) { c.PercentPrecision = dm.Places(400) }, core.ErrInvalidPrecision},
		{"precision below unrounded", func(c *dm.Config) { c.PercentPrecision = dm.Places(-2) }, core.ErrInvalidPrecision},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := scenarioConfig(dm.ModeStatement)
			tt.mutate(&cfg)
			err := Validate(ds, cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}

	assert.NoError(t, Validate(ds, scenarioConfig(dm.ModeStatement)))
	assert.NoError(t, Validate(ds, scenarioConfig(dm.ModeIdentity)))
}

func TestValidateAcceptsBoolAndNumericStrings(t *testing.T) {
	ds := dataset.FromRecords([]string{"id", "text", "c"}, []map[string]interface{}{
		{"id": 1, "text": "a", "c": true},
		{"id": 2, "text": "b", "c": "0.5"},
		{"id": 3, "text": "c", "c": nil},
	})
	cfg := dm.DefaultConfig()
	cfg.IDColumn, cfg.TextColumn, cfg.ClassifierColumns = "id", "text", []string{"c"}
	require.NoError(t, Validate(ds, cfg))

	records, err := NewTransformer().Statements(context.Background(), ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1.0, records[0].Scores[0].Value)
	assert.Equal(t, 0.5, records[1].Scores[0].Value)
	assert.Equal(t, 0.0, records[2].Scores[0].Value)
}

func TestStatementsScenario(t *testing.T) {
	records, err := NewTransformer().Statements(context.Background(), testkit.ScenarioDataset(), scenarioConfig(dm.ModeStatement))
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, 1, first.RowID)
	assert.Equal(t, "A", first.ID.Str)
	assert.Equal(t, "great product", first.Statement)
	assert.Equal(t, 2, first.WordCount)
	assert.Equal(t, 1.0, first.Scores[0].Value)
	assert.Equal(t, 50.0, first.Scores[0].Percentage)
	assert.Nil(t, first.Likes)

	assert.Equal(t, 3, records[1].WordCount)
	assert.Equal(t, 0.0, records[1].Scores[0].Percentage)

	third := records[2]
	assert.Equal(t, 3, third.RowID)
	assert.Equal(t, 1, third.WordCount)
	assert.Equal(t, 1.0, third.Scores[0].Value)
	assert.Equal(t, 100.0, third.Scores[0].Percentage)
}

func TestStatementsStripPrefixMissesVerbatimColumn(t *testing.T) {
	cfg := scenarioConfig(dm.ModeStatement)
	cfg.Naming = dm.NamingStripHasPrefix

	records, err := NewTransformer().Statements(context.Background(), testkit.ScenarioDataset(), cfg)
	require.NoError(t, err)
	for _, rec := range records {
		assert.Equal(t, 0.0, rec.Scores[0].Percentage)
	}
}

func TestStatementsMissingTextAndZeroWords(t *testing.T) {
	ds := dataset.FromRecords([]string{"id", "text", "has_x", "found_x_terms"}, []map[string]interface{}{
		{"id": 1, "text": nil, "has_x": 1, "found_x_terms": "['nan']"},
		{"id": 2, "text": "", "has_x": 1, "found_x_terms": "['a']"},
	})
	cfg := dm.DefaultConfig()
	cfg.IDColumn, cfg.TextColumn, cfg.ClassifierColumns = "id", "text", []string{"has_x"}

	records, err := NewTransformer().Statements(context.Background(), ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, "nan", records[0].Statement)
	assert.Equal(t, 1, records[0].WordCount)
	assert.Equal(t, 100.0, records[0].Scores[0].Percentage)
	assert.Equal(t, 0, records[1].WordCount)
	assert.Equal(t, 0.0, records[1].Scores[0].Percentage)
}

func TestPercentPrecision(t *testing.T) {
	ds := dataset.FromRecords([]string{"id", "text", "has_x", "found_x_terms"}, []map[string]interface{}{
		{"id": 1, "text": "a b c", "has_x": 1, "found_x_terms": "['a']"},
	})
	cfg := dm.DefaultConfig()
	cfg.IDColumn, cfg.TextColumn, cfg.ClassifierColumns = "id", "text", []string{"has_x"}

	records, err := NewTransformer().Statements(context.Background(), ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, 33.33, records[0].Scores[0].Percentage)

	cfg.PercentPrecision = dm.Places(dm.Unrounded)
	records, err = NewTransformer().Statements(context.Background(), ds, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 100.0/3, records[0].Scores[0].Percentage, 1e-12)

	cfg.PercentPrecision = dm.Places(400)
	_, err = NewTransformer().Statements(context.Background(), ds, cfg)
	assert.ErrorIs(t, err, core.ErrInvalidPrecision)
}

func TestIdentitiesScenario(t *testing.T) {
	records, err := NewTransformer().Identities(context.Background(), testkit.ScenarioDataset(), scenarioConfig(dm.ModeIdentity))
	require.NoError(t, err)
	require.Len(t, records, 2)

	a := records[0]
	assert.Equal(t, "A", a.ID.Str)
	assert.Equal(t, 2, a.GroupSize)
	assert.Equal(t, 5, a.TotalWordCount) // "great product" + "i love it"
	assert.Equal(t, 1, a.Scores[0].WordCount)
	assert.Equal(t, 50.0, a.Scores[0].Percentage)
	assert.Equal(t, 0.5, a.Scores[0].ContinuousScore)
	assert.Nil(t, a.TotalLikes)

	b := records[1]
	assert.Equal(t, "B", b.ID.Str)
	assert.Equal(t, 1, b.TotalWordCount)
	assert.Equal(t, 1, b.Scores[0].WordCount)
	assert.Equal(t, 100.0, b.Scores[0].Percentage)
	assert.Equal(t, 1.0, b.Scores[0].ContinuousScore)
}

func TestIdentitiesGroupNumericAndMissingIDs(t *testing.T) {
	ds := dataset.FromRecords([]string{"id", "text", "c"}, []map[string]interface{}{
		{"id": 1, "text": "a", "c": 1},
		{"id": nil, "text": "b", "c": 0},
		{"id": 1.0, "text": "c d", "c": 0},
		{"id": nil, "text": "e", "c": 1},
		{"id": "1", "text": "f", "c": 1},
	})
	cfg := dm.DefaultConfig()
	cfg.IDColumn, cfg.TextColumn, cfg.ClassifierColumns = "id", "text", []string{"c"}
	cfg.Mode = dm.ModeIdentity

	records, err := NewTransformer().Identities(context.Background(), ds, cfg)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 2, records[0].GroupSize)
	assert.Equal(t, 3, records[0].TotalWordCount)
	assert.True(t, records[1].ID.IsMissing())
	assert.Equal(t, 2, records[1].GroupSize)
	assert.Equal(t, "1", records[2].ID.Str)
	assert.Equal(t, 0.5, records[0].Scores[0].ContinuousScore)
}

func TestIdentitiesEngagement(t *testing.T) {
	records, err := NewTransformer().Identities(context.Background(), engagementDataset(), engagementConfig(dm.ModeIdentity))
	require.NoError(t, err)
	require.Len(t, records, 3)

	a := records[0]
	require.NotNil(t, a.TotalLikes)
	assert.Equal(t, dataset.NewIntValue(20), *a.TotalLikes)
	assert.Equal(t, dataset.NewIntValue(4), *a.TotalComments)
	assert.Equal(t, 3, a.Scores[0].WordCount)
	assert.Equal(t, dataset.NewIntValue(20), *a.Scores[0].Likes)

	b := records[1]
	assert.Equal(t, dataset.NewIntValue(5), *b.TotalLikes)
	assert.Equal(t, dataset.NewIntValue(0), *b.Scores[0].Likes)
	assert.Equal(t, 0.0, b.Scores[0].ContinuousScore)
}

func TestImpactSummaryCountsEachIdentityOnce(t *testing.T) {
	records, err := NewTransformer().Statements(context.Background(), engagementDataset(), engagementConfig(dm.ModeStatement))
	require.NoError(t, err)

	rows := ImpactSummary(records, []string{"has_x"})
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "has_x", row.Tactic)
	assert.Equal(t, 3, row.PositiveStatements)
	assert.Equal(t, 2, row.UniquePosts)
	assert.Equal(t, dataset.NewIntValue(17), row.TotalLikes)
	assert.Equal(t, 8.5, row.AvgLikes)
	assert.Equal(t, dataset.NewIntValue(5), row.TotalComments)
	assert.Equal(t, 2.5, row.AvgComments)
}

func TestImpactSummaryNoPositives(t *testing.T) {
	records := []dm.StatementRecord{{
		RowID:  1,
		ID:     dataset.NewStringValue("A"),
		Scores: []dm.ClassifierScore{{Column: "has_x", Value: 0}},
	}}
	rows := ImpactSummary(records, []string{"has_x"})
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].PositiveStatements)
	assert.Zero(t, rows[0].UniquePosts)
	assert.Equal(t, dataset.NewIntValue(0), rows[0].TotalLikes)
	assert.Equal(t, 0.0, rows[0].AvgLikes)
	assert.Equal(t, 0.0, rows[0].AvgComments)
}

func TestRunStatementWithImpact(t *testing.T) {
	result, err := NewTransformer().Run(context.Background(), engagementDataset(), engagementConfig(dm.ModeStatement))
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID.String())
	assert.False(t, result.StartedAt.IsZero())
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
	assert.Equal(t, 4, result.InputRows)
	assert.Equal(t, 4, result.OutputRows)
	assert.Equal(t, []string{
		"row_id", "id", "statement", "word_count", "number_likes", "number_comments",
		"has_x", "has_x_percentage",
	}, result.Table.Columns)
	require.NotNil(t, result.ImpactTable)
	assert.Equal(t, ImpactColumns, result.ImpactTable.Columns)
	assert.Equal(t, 1, result.ImpactTable.Len())
}

func TestRunIdentityHasNoImpact(t *testing.T) {
	result, err := NewTransformer().Run(context.Background(), engagementDataset(), engagementConfig(dm.ModeIdentity))
	require.NoError(t, err)

	assert.Nil(t, result.ImpactTable)
	assert.Equal(t, 3, result.OutputRows)
	assert.Equal(t, []string{
		"id", "total_word_count", "total_likes", "total_comments",
		"has_x_word_count", "has_x_percentage", "has_x_continuous_score", "has_x_likes", "has_x_comments",
	}, result.Table.Columns)
}

func TestRunWithoutCommentsHasNoImpact(t *testing.T) {
	ds := dataset.FromRecords([]string{"id", "text", "number_likes", "c"}, []map[string]interface{}{
		{"id": "A", "text": "x", "number_likes": nil, "c": 1},
	})
	cfg := dm.DefaultConfig()
	cfg.IDColumn, cfg.TextColumn, cfg.ClassifierColumns = "id", "text", []string{"c"}

	result, err := NewTransformer().Run(context.Background(), ds, cfg)
	require.NoError(t, err)
	assert.Nil(t, result.ImpactTable)
	require.NotNil(t, result.Statements[0].Likes)
	assert.Equal(t, dataset.NewFloatValue(0), *result.Statements[0].Likes)
}

func TestRunRejectsOutputColumnCollision(t *testing.T) {
	ds := dataset.FromRecords([]string{"post", "text", "statement"}, []map[string]interface{}{
		{"post": "A", "text": "x", "statement": 1},
	})
	cfg := dm.DefaultConfig()
	cfg.IDColumn, cfg.TextColumn, cfg.ClassifierColumns = "post", "text", []string{"statement"}

	_, err := NewTransformer().Run(context.Background(), ds, cfg)
	assert.True(t, errors.Is(err, core.ErrDuplicateColumn))
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewTransformer().Run(ctx, testkit.ScenarioDataset(), scenarioConfig(dm.ModeStatement))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeneratedDatasetProperties(t *testing.T) {
	config := testkit.DefaultPostConfig()
	config.PostCount = 200
	gen := testkit.NewPostDataGenerator(config)
	ds := gen.GenerateDataset()

	cfg := dm.DefaultConfig()
	cfg.IDColumn, cfg.TextColumn, cfg.ClassifierColumns = "post_id", "statement", config.Tactics
	cfg.PercentPrecision = dm.Places(dm.Unrounded)

	sequential := NewTransformer()
	parallel := NewTransformer(WithWorkers(8))
	ctx := context.Background()

	statements, err := sequential.Statements(ctx, ds, cfg)
	require.NoError(t, err)
	require.Len(t, statements, ds.Len())
	for i, rec := range statements {
		assert.Equal(t, i+1, rec.RowID)
		assert.Equal(t, CountWords(rec.Statement), rec.WordCount)
		for _, score := range rec.Scores {
			assert.GreaterOrEqual(t, score.Percentage, 0.0)
			assert.LessOrEqual(t, score.Percentage, 100.0)
			if rec.WordCount == 0 {
				assert.Zero(t, score.Percentage)
			} else {
				assert.InDelta(t, 100*float64(score.TermCount)/float64(rec.WordCount), score.Percentage, 1e-9)
			}
		}
	}

	parallelStatements, err := parallel.Statements(ctx, ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, statements, parallelStatements)

	cfg.Mode = dm.ModeIdentity
	identities, err := sequential.Identities(ctx, ds, cfg)
	require.NoError(t, err)
	total := 0
	for _, rec := range identities {
		total += rec.GroupSize
		for _, score := range rec.Scores {
			assert.GreaterOrEqual(t, score.PositiveRatio, 0.0)
			assert.LessOrEqual(t, score.PositiveRatio, 1.0)
		}
	}
	assert.Equal(t, ds.Len(), total)
	assert.Equal(t, config.PostCount, len(identities))

	parallelIdentities, err := parallel.Identities(ctx, ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, identities, parallelIdentities)

	impact := ImpactSummary(statements, cfg.ClassifierColumns)
	for _, row := range impact {
		assert.LessOrEqual(t, row.UniquePosts, row.PositiveStatements)
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		x      float64
		places int
		want   float64
	}{
		{0.0625, 3, 0.062},
		{0.125, 2, 0.12},
		{0.375, 2, 0.38},
		{2.675, 2, 2.67},
		{6.25, 1, 6.2},
		{100.0 / 3, 2, 33.33},
		{2.5, 0, 2},
		{0.1, -1, 0.1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundTo(tt.x, tt.places), "roundTo(%v, %d)", tt.x, tt.places)
	}
}

func TestIdentityScoreRoundsHalfToEven(t *testing.T) {
	records := make([]map[string]interface{}, 16)
	for i := range records {
		records[i] = map[string]interface{}{"id": "A", "text": "word", "c": 0}
	}
	records[0]["c"] = 1
	ds := dataset.FromRecords([]string{"id", "text", "c"}, records)

	cfg := dm.DefaultConfig()
	cfg.IDColumn, cfg.TextColumn, cfg.ClassifierColumns = "id", "text", []string{"c"}
	cfg.Mode = dm.ModeIdentity

	identities, err := NewTransformer().Identities(context.Background(), ds, cfg)
	require.NoError(t, err)
	require.Len(t, identities, 1)
	assert.Equal(t, 0.0625, identities[0].Scores[0].PositiveRatio)
	assert.Equal(t, 0.062, identities[0].Scores[0].ContinuousScore)
	assert.Equal(t, 6.25, identities[0].Scores[0].Percentage)
}

func TestImpactSummaryMeansRoundHalfToEven(t *testing.T) {
	var records []dm.StatementRecord
	for i := 0; i < 8; i++ {
		likes := dataset.NewIntValue(0)
		if i == 0 {
			likes = dataset.NewIntValue(1)
		}
		comments := dataset.NewIntValue(0)
		records = append(records, dm.StatementRecord{
			RowID:    i + 1,
			ID:       dataset.NewStringValue(fmt.Sprintf("post_%d", i)),
			Likes:    &likes,
			Comments: &comments,
			Scores:   []dm.ClassifierScore{{Column: "has_x", Value: 1}},
		})
	}

	rows := ImpactSummary(records, []string{"has_x"})
	require.Len(t, rows, 1)
	assert.Equal(t, 8, rows[0].UniquePosts)
	assert.Equal(t, dataset.NewIntValue(1), rows[0].TotalLikes)
	assert.Equal(t, 0.12, rows[0].AvgLikes)
}

func TestConfigLiteralUsesDefaultPrecision(t *testing.T) {
	ds := dataset.FromRecords([]string{"id", "text", "has_x", "found_x_terms"}, []map[string]interface{}{
		{"id": 1, "text": "a b c", "has_x": 1, "found_x_terms": "['a']"},
	})
	cfg := dm.Config{IDColumn: "id", TextColumn: "text", ClassifierColumns: []string{"has_x"}}

	records, err := NewTransformer().Statements(context.Background(), ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, 33.33, records[0].Scores[0].Percentage)

	cfg.PercentPrecision = dm.Places(0)
	records, err = NewTransformer().Statements(context.Background(), ds, cfg)
	require.NoError(t, err)
	assert.Equal(t, 33.0, records[0].Scores[0].Percentage)
}
