package eurotab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/nao1215/eurotab/domain/model"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names the character set of a text input.
type Encoding string

const (
	// EncodingUTF8 is the default; a leading byte order mark is dropped
	EncodingUTF8 Encoding = "utf-8"
	// EncodingWindows1252 is the usual encoding of spreadsheet CSV exports
	EncodingWindows1252 Encoding = "windows-1252"
	// EncodingISO88591 is Latin-1
	EncodingISO88591 Encoding = "iso-8859-1"
)

// maxLineSize bounds a single input line
const maxLineSize = 4 * 1024 * 1024

// decoder returns the transformer decoding the encoding into UTF-8.
func (e Encoding) decoder() (transform.Transformer, error) {
	switch Encoding(strings.ToLower(string(e))) {
	case "", EncodingUTF8, "utf8":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case EncodingWindows1252, "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case EncodingISO88591, "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", string(e))
	}
}

// readLines decodes r and splits it into lines without terminators.
func readLines(r io.Reader, enc Encoding) ([]string, error) {
	dec, err := enc.decoder()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	scanner := bufio.NewScanner(transform.NewReader(r, dec))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return lines, nil
}

// readXLSXLines reads one sheet and joins each row with delimiter, so that a
// workbook goes through the same pipeline as a text export.
func readXLSXLines(r io.Reader, sheet, delimiter string) ([]string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = book.Close() // Ignore close error
	}()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyData
	}
	if sheet == "" {
		sheet = sheets[0]
	}
	if idx, err := book.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q not found", ErrInvalidSource, sheet)
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, delimiter))
	}
	return lines, nil
}

// readRawTableFrom reads a RawTable from an already opened input. name is
// used for type detection and the table name; compressed inputs are
// decompressed according to their extension or, failing that, their magic
// number.
func readRawTableFrom(r io.Reader, name string, src Source) (*model.RawTable, error) {
	fileType := model.DetectFileType(name)
	if fileType == model.FileTypeUnsupported {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	reader, cleanup, err := NewCompressionFactory().NewReader(r, name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cleanup() // Ignore close error of read-only decompressors
	}()

	var lines []string
	if fileType == model.FileTypeXLSX {
		lines, err = readXLSXLines(reader, src.Sheet, src.delimiter())
	} else {
		lines, err = readLines(reader, src.Encoding)
	}
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyData
	}
	return model.NewRawTable(model.TableFromFilePath(name), lines), nil
}

// readRawTable reads a RawTable from a file path.
func readRawTable(path string, src Source) (*model.RawTable, error) {
	if !model.IsSupportedFile(path) {
		return nil, NewErrorContext("read", path).Error(ErrUnsupportedFormat)
	}
	f, err := os.Open(path) //nolint:gosec // User-provided path is necessary for file operations
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewErrorContext("read", path).Error(ErrFileNotFound)
		}
		return nil, NewErrorContext("read", path).Error(err)
	}
	defer f.Close()

	table, err := readRawTableFrom(f, path, src)
	if err != nil {
		return nil, NewErrorContext("read", path).WithSource(src.Name).Error(err)
	}
	return table, nil
}

// readRawTableFS reads a RawTable from a file of fsys.
func readRawTableFS(fsys fs.FS, path string, src Source) (*model.RawTable, error) {
	if !model.IsSupportedFile(path) {
		return nil, NewErrorContext("read", path).Error(ErrUnsupportedFormat)
	}
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewErrorContext("read", path).Error(ErrFileNotFound)
		}
		return nil, NewErrorContext("read", path).Error(err)
	}
	defer f.Close()

	table, err := readRawTableFrom(f, path, src)
	if err != nil {
		return nil, NewErrorContext("read", path).WithSource(src.Name).Error(err)
	}
	return table, nil
}
