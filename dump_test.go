package eurotab

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/eurotab/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func dumpFixture() *model.ResultSet {
	return &model.ResultSet{
		Name:   "ratios",
		Source: SourceEurostatMaster,
		Fields: []string{FieldCADOnINS, FieldFAOnGDP},
		Rows: []model.DataRow{
			{Entity: "Italy", Values: map[string]model.Value{FieldCADOnINS: model.NewValue(150.2), FieldFAOnGDP: model.NewValue(3.1)}},
			{Entity: "EU", Values: map[string]model.Value{FieldCADOnINS: model.NewValue(116), FieldFAOnGDP: model.MissingValue()}},
		},
	}
}

func TestDumpDelimited(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		options   DumpOptions
		file      string
		delimiter rune
	}{
		{name: "csv", options: NewDumpOptions(), file: "ratios.csv", delimiter: ','},
		{name: "tsv gzip", options: NewDumpOptions().WithFormat(OutputFormatTSV).WithCompression(CompressionGZ), file: "ratios.tsv.gz", delimiter: '\t'},
		{name: "csv xz", options: NewDumpOptions().WithCompression(CompressionXZ), file: "ratios.csv.xz", delimiter: ','},
		{name: "csv zstd", options: NewDumpOptions().WithCompression(CompressionZSTD), file: "ratios.csv.zst", delimiter: ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := filepath.Join(t.TempDir(), "out")
			path, err := Dump(dumpFixture(), dir, tt.options)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.file), path)

			r, closeReader, err := NewCompressionFactory().CreateReaderForFile(path)
			require.NoError(t, err)
			defer closeReader()

			cr := csv.NewReader(r)
			cr.Comma = tt.delimiter
			records, err := cr.ReadAll()
			require.NoError(t, err)
			assert.Equal(t, [][]string{
				{"entity", FieldCADOnINS, FieldFAOnGDP},
				{"Italy", "150.2", "3.1"},
				{"EU", "116", ""},
			}, records)
		})
	}
}

func TestDumpDecimals(t *testing.T) {
	t.Parallel()

	path, err := Dump(dumpFixture(), t.TempDir(), NewDumpOptions().WithDecimals(2))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "entity,CAD on INS,FA ON GDP\nItaly,150.20,3.10\nEU,116.00,\n", string(data))
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1577.4", formatValue(model.NewValue(1577.4), 0))
	assert.Equal(t, "0.69", formatValue(model.NewValue(0.69), -3))
	assert.Equal(t, "69.0", formatValue(model.NewValue(69), 1))
	assert.Equal(t, "", formatValue(model.MissingValue(), 2))
}

func TestDumpParquet(t *testing.T) {
	t.Parallel()

	path, err := Dump(dumpFixture(), t.TempDir(), NewDumpOptions().WithFormat(OutputFormatParquet).WithCompression(CompressionGZ))
	require.NoError(t, err)
	assert.Equal(t, ".parquet", filepath.Ext(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	table, err := pqarrow.ReadTable(t.Context(), f, parquet.NewReaderProperties(memory.DefaultAllocator),
		pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)
	defer table.Release()

	require.Equal(t, int64(2), table.NumRows())
	require.Equal(t, int64(3), table.NumCols())
	assert.Equal(t, "entity", table.Schema().Field(0).Name)
	assert.Equal(t, FieldFAOnGDP, table.Schema().Field(2).Name)

	entities := table.Column(0).Data().Chunk(0).(*array.String)
	assert.Equal(t, "Italy", entities.Value(0))
	assert.Equal(t, "EU", entities.Value(1))

	cad := table.Column(1).Data().Chunk(0).(*array.Float64)
	assert.InDelta(t, 150.2, cad.Value(0), 1e-9)
	assert.InDelta(t, 116.0, cad.Value(1), 1e-9)

	fa := table.Column(2).Data().Chunk(0).(*array.Float64)
	assert.False(t, fa.IsNull(0))
	assert.True(t, fa.IsNull(1), "missing values are written as nulls")
}

func TestDumpXLSX(t *testing.T) {
	t.Parallel()

	path, err := Dump(dumpFixture(), t.TempDir(), NewDumpOptions().WithFormat(OutputFormatXLSX))
	require.NoError(t, err)

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(dumpSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"entity", FieldCADOnINS, FieldFAOnGDP}, rows[0])
	assert.Equal(t, []string{"Italy", "150.2", "3.1"}, rows[1])
	assert.Equal(t, []string{"EU", "116"}, rows[2])
}

func TestDumpErrors(t *testing.T) {
	t.Parallel()

	_, err := Dump(&model.ResultSet{}, t.TempDir())
	require.ErrorIs(t, err, ErrInvalidSource)

	_, err = Dump(dumpFixture(), t.TempDir(), NewDumpOptions().WithCompression(CompressionBZ2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dump failed")

	_, err = Dump(dumpFixture(), t.TempDir(), DumpOptions{Format: OutputFormat(42)})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
