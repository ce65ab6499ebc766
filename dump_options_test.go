package eurotab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpOptionsFileExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		options DumpOptions
		want    string
	}{
		{name: "default", options: NewDumpOptions(), want: ".csv"},
		{name: "tsv gzip", options: NewDumpOptions().WithFormat(OutputFormatTSV).WithCompression(CompressionGZ), want: ".tsv.gz"},
		{name: "csv zstd", options: NewDumpOptions().WithCompression(CompressionZSTD), want: ".csv.zst"},
		{name: "csv xz", options: NewDumpOptions().WithCompression(CompressionXZ), want: ".csv.xz"},
		{name: "parquet ignores compression", options: NewDumpOptions().WithFormat(OutputFormatParquet).WithCompression(CompressionGZ), want: ".parquet"},
		{name: "xlsx ignores compression", options: NewDumpOptions().WithFormat(OutputFormatXLSX).WithCompression(CompressionXZ), want: ".xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.options.FileExtension())
		})
	}
}

func TestDumpOptionsAreValues(t *testing.T) {
	t.Parallel()

	base := NewDumpOptions()
	changed := base.WithFormat(OutputFormatXLSX)

	assert.Equal(t, OutputFormatCSV, base.Format, "WithFormat must not modify the receiver")
	assert.Equal(t, OutputFormatXLSX, changed.Format)
	assert.Equal(t, CompressionNone, changed.Compression)

	rounded := base.WithDecimals(2)
	assert.Equal(t, 0, base.Decimals)
	assert.Equal(t, 2, rounded.Decimals)
}

func TestOutputFormatNames(t *testing.T) {
	t.Parallel()

	for _, f := range []OutputFormat{OutputFormatCSV, OutputFormatTSV, OutputFormatParquet, OutputFormatXLSX} {
		parsed, err := ParseOutputFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
		assert.Equal(t, "."+f.String(), f.Extension())
	}

	got, err := ParseOutputFormat(" Parquet ")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatParquet, got)

	got, err = ParseOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatCSV, got)

	_, err = ParseOutputFormat("ltsv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestCompressionTypeNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "gz", CompressionGZ.String())
	assert.Equal(t, "bz2", CompressionBZ2.String())
	assert.Equal(t, "xz", CompressionXZ.String())
	assert.Equal(t, "zstd", CompressionZSTD.String())
	assert.Equal(t, "", CompressionNone.Extension())
	assert.Equal(t, ".bz2", CompressionBZ2.Extension())
	assert.Equal(t, ".zst", CompressionZSTD.Extension())
	assert.Equal(t, "none", CompressionType(9).String())
	assert.Equal(t, "", CompressionType(-1).Extension())
	assert.Equal(t, "csv", OutputFormat(7).String())
}
