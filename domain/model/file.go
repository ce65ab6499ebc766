package model

import (
	"path/filepath"
	"strings"
)

// FileType represents supported file types
type FileType int

const (
	// FileTypeCSV represents semicolon or comma separated text
	FileTypeCSV FileType = iota
	// FileTypeTSV represents tab separated text
	FileTypeTSV
	// FileTypeTXT represents plain text exports with an explicit delimiter
	FileTypeTXT
	// FileTypeXLSX represents Excel workbooks
	FileTypeXLSX
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTSV is the TSV file extension
	ExtTSV = ".tsv"
	// ExtTXT is the plain text file extension
	ExtTXT = ".txt"
	// ExtXLSX is the Excel file extension
	ExtXLSX = ".xlsx"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

// String returns the file type name
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeTXT:
		return "txt"
	case FileTypeXLSX:
		return "xlsx"
	default:
		return "unsupported"
	}
}

// IsText reports whether the file type is read as delimited text lines.
func (ft FileType) IsText() bool {
	return ft == FileTypeCSV || ft == FileTypeTSV || ft == FileTypeTXT
}

// File represents an input file of the extractor
type File struct {
	path     string
	fileType FileType
}

// NewFile creates a new File
func NewFile(path string) *File {
	return &File{
		path:     path,
		fileType: DetectFileType(path),
	}
}

// Path returns file path
func (f *File) Path() string {
	return f.path
}

// Type returns file type
func (f *File) Type() FileType {
	return f.fileType
}

// IsCompressed returns true if file is compressed
func (f *File) IsCompressed() bool {
	return CompressionExtension(f.path) != ""
}

// CompressionExtension returns the compression suffix of path (".gz", ".bz2",
// ".xz", ".zst") or an empty string.
func CompressionExtension(path string) string {
	lower := strings.ToLower(path)
	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// IsSupportedFile checks if the file has a supported extension
func IsSupportedFile(fileName string) bool {
	return DetectFileType(fileName) != FileTypeUnsupported
}

// DetectFileType detects file type from extension, considering compressed files.
// Compressed workbooks are not supported.
func DetectFileType(path string) FileType {
	comp := CompressionExtension(path)
	basePath := path[:len(path)-len(comp)]

	switch strings.ToLower(filepath.Ext(basePath)) {
	case ExtCSV:
		return FileTypeCSV
	case ExtTSV:
		return FileTypeTSV
	case ExtTXT:
		return FileTypeTXT
	case ExtXLSX:
		if comp != "" {
			return FileTypeUnsupported
		}
		return FileTypeXLSX
	default:
		return FileTypeUnsupported
	}
}
