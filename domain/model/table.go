package model

import (
	"path/filepath"
	"strings"
)

// RawTable holds the raw text lines of one delimited source.
// It is read once, parsed once, and then discarded.
type RawTable struct {
	// name is derived from the source file path.
	name string
	// lines are the raw lines without line terminators.
	lines []string
}

// NewRawTable create new RawTable.
func NewRawTable(name string, lines []string) *RawTable {
	return &RawTable{
		name:  name,
		lines: lines,
	}
}

// Name return table name.
func (t *RawTable) Name() string {
	return t.name
}

// Lines return raw lines.
func (t *RawTable) Lines() []string {
	return t.lines
}

// Len returns the number of lines.
func (t *RawTable) Len() int {
	return len(t.lines)
}

// Equal compare RawTable.
func (t *RawTable) Equal(t2 *RawTable) bool {
	if t.Name() != t2.Name() {
		return false
	}
	if len(t.lines) != len(t2.lines) {
		return false
	}
	for i, line := range t.lines {
		if line != t2.lines[i] {
			return false
		}
	}
	return true
}

// TableFromFilePath creates table name from file path
func TableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	// Remove compression extensions first
	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(strings.ToLower(fileName), ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	// Then remove the file type extension
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
