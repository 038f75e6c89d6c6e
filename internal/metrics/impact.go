package metrics

import (
	"github.com/montanaflynn/stats"

	"wordmetrics/domain/dataset"
	dm "wordmetrics/domain/metrics"
)

// ImpactSummary rolls likes and comments up per classifier over the
// statements where it fired. Engagement is per post, so each identity
// contributes the values of its first positive statement only.
func ImpactSummary(records []dm.StatementRecord, classifiers []string) []dm.ImpactRow {
	rows := make([]dm.ImpactRow, 0, len(classifiers))
	for _, col := range classifiers {
		row := dm.ImpactRow{Tactic: col}

		seen := make(map[string]bool)
		var likes, comments []dataset.Value
		for _, rec := range records {
			score, ok := rec.Score(col)
			if !ok || score.Value <= 0 {
				continue
			}
			row.PositiveStatements++

			key := rec.ID.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			likes = append(likes, engagementOrZero(rec.Likes))
			comments = append(comments, engagementOrZero(rec.Comments))
		}

		row.UniquePosts = len(seen)
		row.TotalLikes = sumValues(likes)
		row.AvgLikes = meanRounded(likes)
		row.TotalComments = sumValues(comments)
		row.AvgComments = meanRounded(comments)
		rows = append(rows, row)
	}
	return rows
}

func engagementOrZero(v *dataset.Value) dataset.Value {
	if v == nil {
		return dataset.NewIntValue(0)
	}
	return *v
}

// meanRounded is the two-decimal mean of the numeric values, or zero when
// there are none.
func meanRounded(values []dataset.Value) float64 {
	fs := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.ToFloat(); ok && !v.IsMissing() {
			fs = append(fs, f)
		}
	}
	mean, err := stats.Mean(fs)
	if err != nil {
		return 0
	}
	return roundTo(mean, 2)
}
