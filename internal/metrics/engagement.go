package metrics

import (
	"gonum.org/v1/gonum/floats"

	"wordmetrics/domain/dataset"
	dm "wordmetrics/domain/metrics"
)

// Engagement records which engagement columns the dataset carries. It is
// decided once per run.
type Engagement struct {
	Likes    bool
	Comments bool

	likesIntegral    bool
	commentsIntegral bool
}

// EngagementOf inspects ds for the likes and comments columns.
func EngagementOf(ds *dataset.Dataset) Engagement {
	e := Engagement{
		Likes:    ds.HasColumn(dm.LikesColumn),
		Comments: ds.HasColumn(dm.CommentsColumn),
	}
	if e.Likes {
		e.likesIntegral = integralColumn(ds, dm.LikesColumn)
	}
	if e.Comments {
		e.commentsIntegral = integralColumn(ds, dm.CommentsColumn)
	}
	return e
}

// Both reports whether likes and comments are both present.
func (e Engagement) Both() bool {
	return e.Likes && e.Comments
}

func integralColumn(ds *dataset.Dataset, column string) bool {
	for _, row := range ds.Rows {
		v := row.Get(column)
		switch {
		case v.IsMissing():
			return false
		case v.Type != dataset.ValueTypeInt && v.Type != dataset.ValueTypeBool:
			return false
		}
	}
	return true
}

// engagementCell copies an engagement cell into a record, reading missing as zero.
func engagementCell(v dataset.Value, integral bool) *dataset.Value {
	if v.IsMissing() {
		if integral {
			v = dataset.NewIntValue(0)
		} else {
			v = dataset.NewFloatValue(0)
		}
	}
	return &v
}

// sumValues adds up numeric cells, skipping missing and non-numeric ones.
// The sum stays an integer when every cell is an integer.
func sumValues(values []dataset.Value) dataset.Value {
	integral := true
	var isum int64
	fs := make([]float64, 0, len(values))
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		f, ok := v.ToFloat()
		if !ok {
			continue
		}
		switch v.Type {
		case dataset.ValueTypeInt:
			isum += v.Int
		case dataset.ValueTypeBool:
			if v.Bool {
				isum++
			}
		default:
			integral = false
		}
		fs = append(fs, f)
	}
	if integral {
		return dataset.NewIntValue(isum)
	}
	return dataset.NewFloatValue(floats.Sum(fs))
}

func engagementSum(rows []dataset.Row, column string, integral bool) *dataset.Value {
	values := make([]dataset.Value, len(rows))
	for i, row := range rows {
		values[i] = row.Get(column)
	}
	sum := sumValues(values)
	if !integral && sum.Type == dataset.ValueTypeInt {
		sum = dataset.NewFloatValue(float64(sum.Int))
	}
	return &sum
}
