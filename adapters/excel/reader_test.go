package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmetrics/domain/core"
	"wordmetrics/domain/dataset"
)

const postsCSV = `post_id,statement,number_likes,has_x,found_x_terms
A,great product,10,1,"['great']"
A,i love it,10,0,[]
B,meh,,1,"[""meh""]"
`

func TestReadCSV(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(postsCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"post_id", "statement", "number_likes", "has_x", "found_x_terms"}, ds.Headers)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, "csv", ds.Source)

	first := ds.Rows[0]
	assert.Equal(t, dataset.NewStringValue("A"), first.Get("post_id"))
	assert.Equal(t, dataset.NewStringValue("great product"), first.Get("statement"))
	assert.Equal(t, dataset.NewIntValue(1), first.Get("has_x"))
	assert.Equal(t, dataset.NewStringValue("['great']"), first.Get("found_x_terms"))

	// a missing cell turns the integer column into floats
	assert.Equal(t, dataset.NewFloatValue(10), first.Get("number_likes"))
	assert.True(t, ds.Rows[2].Get("number_likes").IsMissing())
	assert.Equal(t, dataset.NewStringValue(`["meh"]`), ds.Rows[2].Get("found_x_terms"))
}

func TestReadCSVShapes(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("id,text\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "text"}, ds.Headers)
		assert.Zero(t, ds.Len())
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, core.ErrEmptyInput)
		assert.True(t, core.IsInputError(err))
	})

	t.Run("short rows are padded", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("id,text,c\n1,hello\n"))
		require.NoError(t, err)
		assert.True(t, ds.Rows[0].Get("c").IsMissing())
	})

	t.Run("long rows fail", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("id,text\n1,a\n2,b,c\n"))
		require.Error(t, err)
		assert.True(t, core.IsInputError(err))
		assert.Contains(t, err.Error(), "Expected 2 fields in line 3, saw 3")
	})

	t.Run("duplicate and blank headers", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("a,a,,a.1\n1,2,3,4\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "a.1", "Unnamed: 2", "a.1.1"}, ds.Headers)
	})

	t.Run("byte order mark", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("\ufeffid,text\n1,x\n"))
		require.NoError(t, err)
		assert.Equal(t, "id", ds.Headers[0])
	})
}

func TestReadJSONRecords(t *testing.T) {
	src := `[
		{"post_id": 7, "text": "buy now", "has_x": 1, "found_x_terms": ["now"]},
		{"post_id": 8, "text": null, "extra": {"k": 1}}
	]`
	ds, err := ReadJSONRecords(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"post_id", "text", "has_x", "found_x_terms", "extra"}, ds.Headers)
	assert.Equal(t, dataset.NewIntValue(7), ds.Rows[0].Get("post_id"))
	assert.Equal(t, dataset.NewStringListValue([]string{"now"}), ds.Rows[0].Get("found_x_terms"))
	assert.True(t, ds.Rows[1].Get("text").IsMissing())
	assert.True(t, ds.Rows[1].Get("has_x").IsMissing())
	assert.Equal(t, `{"k":1}`, ds.Rows[1].Get("extra").Str)
}

func TestReadJSONRecordsRejectsNonArrays(t *testing.T) {
	for _, src := range []string{`{"a": 1}`, `[1, 2]`, `[{"a": 1}`, ``} {
		_, err := ReadJSONRecords(strings.NewReader(src))
		assert.True(t, core.IsInputError(err), "input %q", src)
	}
}

func TestDataReaderReadData(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "posts.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(postsCSV), 0o644))
	ds, err := NewDataReader(csvPath).ReadData()
	require.NoError(t, err)
	assert.Equal(t, "posts.csv", ds.FileInfo.Filename)
	assert.Equal(t, 3, ds.Len())

	_, err = NewDataReader(filepath.Join(dir, "missing.csv")).ReadData()
	assert.True(t, core.IsInputError(err))

	otherPath := filepath.Join(dir, "posts.parquet")
	require.NoError(t, os.WriteFile(otherPath, []byte("x"), 0o644))
	_, err = NewDataReader(otherPath).ReadData()
	assert.ErrorIs(t, err, core.ErrUnsupportedType)
}

func TestReadDatasetDispatch(t *testing.T) {
	r := NewReader(DefaultReaderConfig())

	ds, err := r.ReadDataset("upload.json", bytes.NewBufferString(`[{"a": "x"}]`))
	require.NoError(t, err)
	assert.Equal(t, "json", ds.Source)
	assert.Equal(t, "upload.json", ds.FileInfo.Filename)

	semi := DefaultReaderConfig()
	semi.Delimiter = ';'
	ds, err = NewReader(semi).ReadDataset("upload.csv", bytes.NewBufferString("a;b\n1;2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ds.Headers)
}

func TestFileType(t *testing.T) {
	assert.Equal(t, FileTypeCSV, FileType("x.CSV"))
	assert.Equal(t, FileTypeXLSX, FileType("/tmp/x.xlsx"))
	assert.Equal(t, FileTypeJSON, FileType("x.json"))
	assert.Equal(t, "", FileType("x.xls"))
}
