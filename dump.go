package eurotab

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/eurotab/domain/model"
	"github.com/xuri/excelize/v2"
)

// Dump writes rs to outputDir as rs.Name plus the extension of the options
// and returns the written path. The first column is the entity; missing
// values are written as empty cells or nulls.
//
//	path, err := eurotab.Dump(rs, "./out", eurotab.NewDumpOptions().WithFormat(eurotab.OutputFormatParquet))
func Dump(rs *model.ResultSet, outputDir string, opts ...DumpOptions) (string, error) {
	options := NewDumpOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if rs.Name == "" {
		return "", fmt.Errorf("%w: result set has no name", ErrInvalidSource)
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(outputDir, rs.Name+options.FileExtension())
	var err error
	switch options.Format {
	case OutputFormatCSV:
		err = dumpDelimited(rs, outputPath, ',', options)
	case OutputFormatTSV:
		err = dumpDelimited(rs, outputPath, '\t', options)
	case OutputFormatParquet:
		err = dumpParquet(rs, outputPath)
	case OutputFormatXLSX:
		err = dumpXLSX(rs, outputPath)
	default:
		err = fmt.Errorf("%w: %v", ErrUnsupportedFormat, options.Format)
	}
	if err != nil {
		return "", NewErrorContext("dump", outputPath).WithSource(rs.Source).Error(err)
	}
	return outputPath, nil
}

// dumpHeader returns the output column names.
func dumpHeader(rs *model.ResultSet) []string {
	return append([]string{model.ColumnEntity}, rs.Fields...)
}

// formatValue renders a value for text outputs. decimals <= 0 selects the
// shortest exact form.
func formatValue(v model.Value, decimals int) string {
	if v.Missing {
		return ""
	}
	if decimals <= 0 {
		decimals = -1
	}
	return strconv.FormatFloat(v.Float, 'f', decimals, 64)
}

func dumpDelimited(rs *model.ResultSet, outputPath string, delimiter rune, options DumpOptions) error {
	writer, closer, err := NewCompressionFactory().CreateWriterForFile(outputPath, options.Compression)
	if err != nil {
		return err
	}

	if err := writeDelimited(writer, rs, delimiter, options.Decimals); err != nil {
		_ = closer() // Ignore close error, the write error is reported
		return err
	}
	return closer()
}

// writeDelimited writes rs as delimited text to w.
func writeDelimited(w io.Writer, rs *model.ResultSet, delimiter rune, decimals int) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	if err := cw.Write(dumpHeader(rs)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rs.Rows {
		record := make([]string, 0, len(rs.Fields)+1)
		record = append(record, row.Entity)
		for _, f := range rs.Fields {
			record = append(record, formatValue(row.Value(f), decimals))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %s: %w", row.Entity, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// parquetSchema returns an arrow schema with a string entity column and one
// nullable float64 column per field.
func parquetSchema(rs *model.ResultSet) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(rs.Fields)+1)
	fields = append(fields, arrow.Field{Name: model.ColumnEntity, Type: arrow.BinaryTypes.String})
	for _, f := range rs.Fields {
		fields = append(fields, arrow.Field{Name: f, Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}

// nopCloser keeps pqarrow from closing the destination file.
type nopCloser struct {
	io.Writer
}

func dumpParquet(rs *model.ResultSet, outputPath string) error {
	f, err := os.Create(outputPath) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := writeParquet(nopCloser{f}, rs); err != nil {
		_ = f.Close() // Ignore close error, the write error is reported
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// writeParquet writes rs as a single parquet row group.
func writeParquet(w io.Writer, rs *model.ResultSet) error {
	schema := parquetSchema(rs)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	entities := builder.Field(0).(*array.StringBuilder)
	for _, row := range rs.Rows {
		entities.Append(row.Entity)
		for i, f := range rs.Fields {
			col := builder.Field(i + 1).(*array.Float64Builder)
			v := row.Value(f)
			if v.Missing {
				col.AppendNull()
				continue
			}
			col.Append(v.Float)
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	fw, err := pqarrow.NewFileWriter(schema, w, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := fw.Write(record); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to write parquet record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// dumpSheetName is the sheet written by dumpXLSX
const dumpSheetName = "Sheet1"

func dumpXLSX(rs *model.ResultSet, outputPath string) error {
	book := excelize.NewFile()
	defer func() {
		_ = book.Close() // Ignore close error
	}()

	for i, label := range dumpHeader(rs) {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := book.SetCellValue(dumpSheetName, cell, label); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, row := range rs.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := book.SetCellValue(dumpSheetName, cell, row.Entity); err != nil {
			return fmt.Errorf("failed to write row %s: %w", row.Entity, err)
		}
		for c, f := range rs.Fields {
			v := row.Value(f)
			if v.Missing {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+2, r+2)
			if err != nil {
				return err
			}
			if err := book.SetCellValue(dumpSheetName, cell, v.Float); err != nil {
				return fmt.Errorf("failed to write row %s: %w", row.Entity, err)
			}
		}
	}

	if err := book.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
