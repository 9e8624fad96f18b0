package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/lorekeeper/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sample = []core.Entry{
	core.NewEntry("Aria", "Aria,knight", "A knight <of> the north."),
	{Name: "城", Key: "城", Content: "古い城。", Priority: 90, Enabled: false, Comment: "castle"},
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sample))

	out := buf.String()
	assert.Contains(t, out, "\n  {\n    \"name\": \"Aria\"")
	assert.Contains(t, out, "A knight <of> the north.")
	assert.Contains(t, out, "古い城。")

	n, err := Verify(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, sample))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], `{"name":"城"`))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, xlsxHeaders, rows[0])
	assert.Equal(t, "Aria", rows[1][0])
	assert.Equal(t, "10", rows[1][4])
	assert.Equal(t, "古い城。", rows[2][2])
}

func TestVerify_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"object instead of array", `{"name":"Aria"}`},
		{"missing field", `[{"name":"Aria","key":"Aria","content":"x","comment":"","priority":10}]`},
		{"wrong type", `[{"name":"Aria","key":"Aria","content":"x","comment":"","priority":"high","enabled":true}]`},
		{"empty name", `[{"name":"","key":"","content":"x","comment":"","priority":1,"enabled":true}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Verify([]byte(tt.data))
			assert.ErrorIs(t, err, ErrSchemaViolation)
		})
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"out/lore.json", "out/lore.jsonl", "out/lore.xlsx"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveFile(path, FormatFromPath(path), sample))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	n, err := VerifyFile(filepath.Join(dir, "out", "lore.json"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = VerifyFile(filepath.Join(dir, "out", "lore.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temporary files left behind")
}

func TestVerifyLines(t *testing.T) {
	n, err := VerifyLines([]byte("\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = VerifyLines([]byte(`{"name":"Aria"}` + "\n{broken\n"))
	assert.ErrorIs(t, err, ErrSchemaViolation)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("csv"), sample)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
