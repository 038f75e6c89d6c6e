package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmetrics/adapters/excel"
	"wordmetrics/domain/core"
	"wordmetrics/domain/dataset"
	dm "wordmetrics/domain/metrics"
	"wordmetrics/internal"
	"wordmetrics/internal/errors"
)

const scenarioCSV = `post_id,text,has_x,found_has_x_terms,number_likes,number_comments
A,great product,1,"[""great""]",10,4
A,i love it,0,[],10,4
B,meh,1,"[""meh""]",7,1
`

func newService() *MetricsService {
	return NewMetricsService(excel.NewReader(excel.DefaultReaderConfig()), nil, internal.NewLogger(internal.LogLevelError))
}

func scenarioConfig() dm.Config {
	cfg := dm.DefaultConfig()
	cfg.IDColumn, cfg.TextColumn, cfg.ClassifierColumns = "post_id", "text", []string{"has_x"}
	cfg.Naming = dm.NamingVerbatim
	return cfg
}

func TestProcessStatementLevel(t *testing.T) {
	result, err := newService().Process(context.Background(), ProcessRequest{
		Filename: "posts.csv",
		Data:     strings.NewReader(scenarioCSV),
		Config:   scenarioConfig(),
	})
	require.NoError(t, err)

	assert.Equal(t, "posts.csv", result.Source)
	assert.Equal(t, core.NewHash([]byte(scenarioCSV)), result.Fingerprint)
	assert.Equal(t, 3, result.InputRows)
	assert.Equal(t, 3, result.OutputRows)
	require.NotNil(t, result.ImpactTable)

	impact := result.Impact[0]
	assert.Equal(t, 2, impact.PositiveStatements)
	assert.Equal(t, 2, impact.UniquePosts)
	assert.Equal(t, dataset.NewIntValue(17), impact.TotalLikes)
}

func TestProcessIdentityLevel(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Mode = dm.ModeIdentity

	result, err := newService().Process(context.Background(), ProcessRequest{
		Filename: "posts.csv",
		Data:     strings.NewReader(scenarioCSV),
		Config:   cfg,
	})
	require.NoError(t, err)
	require.Len(t, result.Identities, 2)
	assert.Nil(t, result.ImpactTable)

	a := result.Identities[0]
	assert.Equal(t, 2, a.GroupSize)
	assert.Equal(t, 5, a.TotalWordCount)
	assert.Equal(t, 1, a.Scores[0].Positive)
	assert.Equal(t, 50.0, a.Scores[0].Percentage)
	assert.Equal(t, 0.5, a.Scores[0].ContinuousScore)
}

func TestProcessErrors(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Process(ctx, ProcessRequest{Filename: "posts.csv", Data: strings.NewReader(""), Config: scenarioConfig()})
	assert.Equal(t, errors.CodeInputReadFailed, errors.GetCode(err))

	_, err = svc.Process(ctx, ProcessRequest{Filename: "posts.pdf", Data: strings.NewReader("x"), Config: scenarioConfig()})
	assert.Equal(t, errors.CodeInputReadFailed, errors.GetCode(err))

	cfg := scenarioConfig()
	cfg.ClassifierColumns = []string{"has_y"}
	_, err = svc.Process(ctx, ProcessRequest{Filename: "posts.csv", Data: strings.NewReader(scenarioCSV), Config: cfg})
	assert.Equal(t, errors.CodeInvalidColumn, errors.GetCode(err))
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	cfg = scenarioConfig()
	cfg.Mode = "weekly"
	_, err = svc.Process(ctx, ProcessRequest{Filename: "posts.csv", Data: strings.NewReader(scenarioCSV), Config: cfg})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Process(ctx, ProcessRequest{Filename: "posts.csv", Config: scenarioConfig()})
	assert.Equal(t, errors.CodeInputReadFailed, errors.GetCode(err))
}

func TestColumns(t *testing.T) {
	fields, err := newService().Columns(context.Background(), "posts.csv", strings.NewReader(scenarioCSV))
	require.NoError(t, err)
	require.Len(t, fields, 6)
	assert.Equal(t, "post_id", fields[0].Name)
	assert.Equal(t, dataset.ValueTypeInt, fields[2].DataType)
}

func TestExport(t *testing.T) {
	result, err := newService().Process(context.Background(), ProcessRequest{
		Filename: "posts.csv",
		Data:     strings.NewReader(scenarioCSV),
		Config:   scenarioConfig(),
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, excel.CSVWriter{}, result))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "row_id,id,statement,word_count,number_likes,number_comments,has_x,has_x_percentage", lines[0])
	assert.Equal(t, "1,A,great product,2,10,4,1.0,50.0", lines[1])

	buf.Reset()
	require.NoError(t, Export(&buf, excel.XLSXWriter{}, result))
	back, err := excel.ReadXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 3, back.Len())
}
