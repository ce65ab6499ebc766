package eurotab

import (
	"fmt"
	"strings"
)

// OutputFormat is the file format written by Dump.
type OutputFormat int

const (
	// OutputFormatCSV writes comma separated values
	OutputFormatCSV OutputFormat = iota
	// OutputFormatTSV writes tab separated values
	OutputFormatTSV
	// OutputFormatParquet writes Apache Parquet with one nullable DOUBLE per field
	OutputFormatParquet
	// OutputFormatXLSX writes an Excel workbook with a single sheet
	OutputFormatXLSX
)

// outputFormatNames is indexed by OutputFormat. The name is also the
// extension without the dot.
var outputFormatNames = [...]string{
	OutputFormatCSV:     "csv",
	OutputFormatTSV:     "tsv",
	OutputFormatParquet: "parquet",
	OutputFormatXLSX:    "xlsx",
}

func (f OutputFormat) valid() bool {
	return f >= 0 && int(f) < len(outputFormatNames)
}

// String returns the format name; unknown formats report "csv".
func (f OutputFormat) String() string {
	if !f.valid() {
		return outputFormatNames[OutputFormatCSV]
	}
	return outputFormatNames[f]
}

// Extension returns the file extension of the format
func (f OutputFormat) Extension() string {
	return "." + f.String()
}

// isText reports whether the format is delimited text, the only kind that
// is compressed.
func (f OutputFormat) isText() bool {
	return f == OutputFormatCSV || f == OutputFormatTSV
}

// ParseOutputFormat converts a format name into an OutputFormat. An empty
// name selects CSV.
func ParseOutputFormat(name string) (OutputFormat, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return OutputFormatCSV, nil
	}
	for f, n := range outputFormatNames {
		if n == name {
			return OutputFormat(f), nil
		}
	}
	return OutputFormatCSV, fmt.Errorf("%w: unknown output format %q", ErrUnsupportedFormat, name)
}

// CompressionType is a compression of input or output files.
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression, read only
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

var compressionNames = [...]struct{ name, ext string }{
	CompressionNone: {"none", ""},
	CompressionGZ:   {"gz", ".gz"},
	CompressionBZ2:  {"bz2", ".bz2"},
	CompressionXZ:   {"xz", ".xz"},
	CompressionZSTD: {"zstd", ".zst"},
}

// String returns the compression name; unknown values report "none".
func (c CompressionType) String() string {
	if c < 0 || int(c) >= len(compressionNames) {
		return compressionNames[CompressionNone].name
	}
	return compressionNames[c].name
}

// Extension returns the file extension, "" for CompressionNone
func (c CompressionType) Extension() string {
	if c < 0 || int(c) >= len(compressionNames) {
		return ""
	}
	return compressionNames[c].ext
}

// DumpOptions configures how result sets are written by Dump.
//
//	options := NewDumpOptions().
//		WithFormat(OutputFormatTSV).
//		WithCompression(CompressionGZ)
//
//	path, err := Dump(rs, "./output", options)
type DumpOptions struct {
	// Format specifies the output file format
	Format OutputFormat
	// Compression applies to CSV and TSV only. Parquet and XLSX are
	// written uncompressed.
	Compression CompressionType
	// Decimals fixes the number of decimals of CSV and TSV values.
	// 0 writes the shortest text that parses back to the same float.
	Decimals int
}

// NewDumpOptions returns CSV without compression.
func NewDumpOptions() DumpOptions {
	return DumpOptions{
		Format:      OutputFormatCSV,
		Compression: CompressionNone,
	}
}

// WithFormat sets the output file format.
func (o DumpOptions) WithFormat(format OutputFormat) DumpOptions {
	o.Format = format
	return o
}

// WithCompression sets the compression of text outputs. Bzip2 can only be
// read, so Dump rejects it.
func (o DumpOptions) WithCompression(compression CompressionType) DumpOptions {
	o.Compression = compression
	return o
}

// WithDecimals fixes the number of decimals of text outputs.
func (o DumpOptions) WithDecimals(decimals int) DumpOptions {
	o.Decimals = decimals
	return o
}

// FileExtension returns the complete file extension including compression
func (o DumpOptions) FileExtension() string {
	if !o.Format.isText() {
		return o.Format.Extension()
	}
	return o.Format.Extension() + o.Compression.Extension()
}
