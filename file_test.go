package eurotab

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

const masterFixture = "testdata/MASTER_EUROSTAT.csv"

// compress returns data compressed with ct.
func compress(t *testing.T, data []byte, ct CompressionType) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, closeWriter, err := NewCompressionHandler(ct).CreateWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, closeWriter())
	return buf.Bytes()
}

// workbook builds an XLSX file holding rows on sheet.
func workbook(t *testing.T, sheet string, rows [][]string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadLines(t *testing.T) {
	t.Parallel()

	t.Run("utf-8 with BOM and CRLF", func(t *testing.T) {
		t.Parallel()
		input := "\xEF\xBB\xBFCountry;Currency and deposits\r\nItaly;1.577,4\r\n"
		lines, err := readLines(strings.NewReader(input), EncodingUTF8)
		require.NoError(t, err)
		assert.Equal(t, []string{"Country;Currency and deposits", "Italy;1.577,4"}, lines)
	})

	t.Run("windows-1252", func(t *testing.T) {
		t.Parallel()
		encoded, err := charmap.Windows1252.NewEncoder().String("Côte d'Ivoire;1,5 €\n")
		require.NoError(t, err)
		lines, err := readLines(strings.NewReader(encoded), EncodingWindows1252)
		require.NoError(t, err)
		assert.Equal(t, []string{"Côte d'Ivoire;1,5 €"}, lines)
	})

	t.Run("latin-1 alias", func(t *testing.T) {
		t.Parallel()
		lines, err := readLines(strings.NewReader("Espa\xf1a;2,0"), "latin1")
		require.NoError(t, err)
		assert.Equal(t, []string{"España;2,0"}, lines)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		t.Parallel()
		_, err := readLines(strings.NewReader("x"), "koi8")
		assert.ErrorIs(t, err, ErrInvalidSource)
	})
}

func TestReadXLSXLines(t *testing.T) {
	t.Parallel()

	data := workbook(t, "Data", [][]string{
		{"Country", "Currency and deposits"},
		{"Italy", "1.577,4"},
	})

	lines, err := readXLSXLines(bytes.NewReader(data), "Data", ";")
	require.NoError(t, err)
	assert.Equal(t, []string{"Country;Currency and deposits", "Italy;1.577,4"}, lines)

	// the default sheet of a new workbook is empty
	lines, err = readXLSXLines(bytes.NewReader(data), "", ";")
	require.NoError(t, err)
	assert.Empty(t, lines)

	_, err = readXLSXLines(bytes.NewReader(data), "Missing", ";")
	assert.ErrorIs(t, err, ErrInvalidSource)

	_, err = readXLSXLines(strings.NewReader("not a workbook"), "", ";")
	assert.Error(t, err)
}

func TestReadRawTableFrom(t *testing.T) {
	t.Parallel()

	raw, err := os.ReadFile(masterFixture)
	require.NoError(t, err)

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{name: "plain", file: "MASTER_EUROSTAT.csv", data: raw},
		{name: "gzip", file: "MASTER_EUROSTAT.csv.gz", data: compress(t, raw, CompressionGZ)},
		{name: "xz", file: "MASTER_EUROSTAT.csv.xz", data: compress(t, raw, CompressionXZ)},
		{name: "zstd", file: "MASTER_EUROSTAT.csv.zst", data: compress(t, raw, CompressionZSTD)},
		{name: "txt", file: "MASTER_EUROSTAT.txt", data: raw},
		{name: "gzip saved as csv", file: "MASTER_EUROSTAT.csv", data: compress(t, raw, CompressionGZ)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			table, err := readRawTableFrom(bytes.NewReader(tt.data), tt.file, EurostatMaster())
			require.NoError(t, err)
			assert.Equal(t, "MASTER_EUROSTAT", table.Name())
			assert.Equal(t, 11, table.Len())
			assert.True(t, strings.HasPrefix(table.Lines()[3], "Country;Currency and deposits;"))
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()
		_, err := readRawTableFrom(bytes.NewReader(raw), "master.json", EurostatMaster())
		assert.ErrorIs(t, err, ErrUnsupportedFormat)

		_, err = readRawTableFrom(bytes.NewReader(raw), "master.xlsx.gz", EurostatMaster())
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		_, err := readRawTableFrom(strings.NewReader(""), "empty.csv", EurostatMaster())
		assert.ErrorIs(t, err, ErrEmptyData)
	})

	t.Run("xlsx", func(t *testing.T) {
		t.Parallel()
		data := workbook(t, "Sheet1", [][]string{{"Country", "Currency and deposits"}, {"EU", "11.627,3"}})
		table, err := readRawTableFrom(bytes.NewReader(data), "master.xlsx", EurostatMaster())
		require.NoError(t, err)
		assert.Equal(t, []string{"Country;Currency and deposits", "EU;11.627,3"}, table.Lines())
	})
}

func TestReadRawTable(t *testing.T) {
	t.Parallel()

	table, err := readRawTable(masterFixture, EurostatMaster())
	require.NoError(t, err)
	assert.Equal(t, "MASTER_EUROSTAT", table.Name())

	_, err = readRawTable(filepath.Join(t.TempDir(), "missing.csv"), EurostatMaster())
	require.ErrorIs(t, err, ErrFileNotFound)
	assert.Contains(t, err.Error(), "read failed")

	_, err = readRawTable("master.pdf", EurostatMaster())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadRawTableFS(t *testing.T) {
	t.Parallel()

	raw, err := os.ReadFile(masterFixture)
	require.NoError(t, err)
	fsys := fstest.MapFS{
		"exports/master.csv.gz": {Data: compress(t, raw, CompressionGZ)},
	}

	table, err := readRawTableFS(fsys, "exports/master.csv.gz", EurostatMaster())
	require.NoError(t, err)
	assert.Equal(t, "master", table.Name())
	assert.Equal(t, 11, table.Len())

	_, err = readRawTableFS(fsys, "exports/other.csv", EurostatMaster())
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = readRawTableFS(fsys, "exports/master.ods", EurostatMaster())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
