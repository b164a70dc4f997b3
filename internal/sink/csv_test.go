package sink

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"songrank/internal/model"
)

var testRows = []model.ChartRow{
	{CurrentRank: "1", PreviousRank: "2", Title: "Song A", Artist: "Artist A"},
	{CurrentRank: "NEW", PreviousRank: "-", Title: "Song B", Artist: "Artist B"},
	{CurrentRank: "3", PreviousRank: "3", Title: `Hello, "World"`, Artist: "周杰倫 Jay Chou"},
}

func TestEncodeCSVExcelDialect(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, testRows[:2]))

	want := "今日排行,前日排行,曲目,歌手\r\n" +
		"1,2,Song A,Artist A\r\n" +
		"NEW,-,Song B,Artist B\r\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.csv")
	require.NoError(t, WriteCSV(path, testRows))

	got, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, testRows, got)
}

func TestWriteCSVCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "chart.csv")
	require.NoError(t, WriteCSV(path, testRows[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "今日排行,前日排行,曲目,歌手\r\n"))
}

func TestWriteCSVHeaderOnlyForNoRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.csv")
	require.NoError(t, WriteCSV(path, nil))

	got, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteCSVUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := WriteCSV(filepath.Join(blocker, "chart.csv"), testRows)

	var sinkErr *Error
	require.ErrorAs(t, err, &sinkErr)
	assert.Equal(t, "create directory for", sinkErr.Op)
}

func TestDecodeCSVRejectsForeignHeader(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("url,title,a,b\r\n"))
	assert.ErrorContains(t, err, "unexpected csv header")
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	d := model.TargetDate{Year: "2024", Month: "03", Day: "05"}

	assert.Equal(t, filepath.Join(dir, "kkbox-newrelease-2024-03-05.csv"), ResolvePath(dir, d))
	assert.Equal(t, filepath.Join("out", "kkbox-newrelease-2024-03-05.csv"), ResolvePath("out/", d))
	assert.Equal(t, filepath.Join(dir, "mine.csv"), ResolvePath(filepath.Join(dir, "mine.csv"), d))
}
