package metrics

import (
	"wordmetrics/domain/dataset"
	dm "wordmetrics/domain/metrics"
)

// Table names, used for sheet names and report headings.
const (
	StatementTableName = "statement_metrics"
	IdentityTableName  = "id_metrics"
	ImpactTableName    = "tactic_impact_summary"
)

// ImpactColumns is the column layout of the impact summary table.
var ImpactColumns = []string{
	"tactic", "positive_statements", "unique_posts",
	"total_likes", "avg_likes", "total_comments", "avg_comments",
}

// OutputColumns lists the result columns a run with cfg produces.
func OutputColumns(cfg dm.Config, eng Engagement) []string {
	if cfg.Mode == dm.ModeIdentity {
		return identityColumns(cfg.ClassifierColumns, eng)
	}
	return statementColumns(cfg.ClassifierColumns, eng)
}

func statementColumns(classifiers []string, eng Engagement) []string {
	cols := []string{"row_id", "id", "statement", "word_count"}
	if eng.Likes {
		cols = append(cols, dm.LikesColumn)
	}
	if eng.Comments {
		cols = append(cols, dm.CommentsColumn)
	}
	for _, c := range classifiers {
		cols = append(cols, c, c+"_percentage")
	}
	return cols
}

func identityColumns(classifiers []string, eng Engagement) []string {
	cols := []string{"id", "total_word_count"}
	if eng.Likes {
		cols = append(cols, "total_likes")
	}
	if eng.Comments {
		cols = append(cols, "total_comments")
	}
	for _, c := range classifiers {
		cols = append(cols, c+"_word_count", c+"_percentage", c+"_continuous_score")
		if eng.Likes {
			cols = append(cols, c+"_likes")
		}
		if eng.Comments {
			cols = append(cols, c+"_comments")
		}
	}
	return cols
}

// StatementTable lays statement records out as rows.
func StatementTable(records []dm.StatementRecord, classifiers []string, eng Engagement) dm.Table {
	t := dm.Table{Name: StatementTableName, Columns: statementColumns(classifiers, eng)}
	t.Rows = make([][]dataset.Value, len(records))
	for i, rec := range records {
		row := make([]dataset.Value, 0, len(t.Columns))
		row = append(row,
			dataset.NewIntValue(int64(rec.RowID)),
			rec.ID,
			dataset.NewStringValue(rec.Statement),
			dataset.NewIntValue(int64(rec.WordCount)),
		)
		if eng.Likes {
			row = append(row, engagementOrZero(rec.Likes))
		}
		if eng.Comments {
			row = append(row, engagementOrZero(rec.Comments))
		}
		for _, col := range classifiers {
			score, _ := rec.Score(col)
			row = append(row, dataset.NewFloatValue(score.Value), dataset.NewFloatValue(score.Percentage))
		}
		t.Rows[i] = row
	}
	return t
}

// IdentityTable lays identity records out as rows.
func IdentityTable(records []dm.IdentityRecord, classifiers []string, eng Engagement) dm.Table {
	t := dm.Table{Name: IdentityTableName, Columns: identityColumns(classifiers, eng)}
	t.Rows = make([][]dataset.Value, len(records))
	for i, rec := range records {
		row := make([]dataset.Value, 0, len(t.Columns))
		row = append(row, rec.ID, dataset.NewIntValue(int64(rec.TotalWordCount)))
		if eng.Likes {
			row = append(row, engagementOrZero(rec.TotalLikes))
		}
		if eng.Comments {
			row = append(row, engagementOrZero(rec.TotalComments))
		}
		for c := range classifiers {
			var score dm.IdentityScore
			if c < len(rec.Scores) {
				score = rec.Scores[c]
			}
			row = append(row,
				dataset.NewIntValue(int64(score.WordCount)),
				dataset.NewFloatValue(score.Percentage),
				dataset.NewFloatValue(score.ContinuousScore),
			)
			if eng.Likes {
				row = append(row, engagementOrZero(score.Likes))
			}
			if eng.Comments {
				row = append(row, engagementOrZero(score.Comments))
			}
		}
		t.Rows[i] = row
	}
	return t
}

// ImpactTable lays the impact summary out as rows.
func ImpactTable(rows []dm.ImpactRow) dm.Table {
	t := dm.Table{Name: ImpactTableName, Columns: ImpactColumns}
	t.Rows = make([][]dataset.Value, len(rows))
	for i, r := range rows {
		t.Rows[i] = []dataset.Value{
			dataset.NewStringValue(r.Tactic),
			dataset.NewIntValue(int64(r.PositiveStatements)),
			dataset.NewIntValue(int64(r.UniquePosts)),
			r.TotalLikes,
			dataset.NewFloatValue(r.AvgLikes),
			r.TotalComments,
			dataset.NewFloatValue(r.AvgComments),
		}
	}
	return t
}
