package eurotab

import (
	"strings"

	"github.com/nao1215/eurotab/domain/model"
)

// RowFilter selects the data lines of a table and the rows of the requested
// entities.
type RowFilter struct {
	// Keys are the entity values to keep. Empty keeps every entity.
	Keys []string
	// StopMarkers end the data block at the first line containing any of them.
	StopMarkers []string
	// EntityColumn is the column holding the entity key.
	EntityColumn int
	// HeaderLabel is the header text of the entity column. A data line
	// repeating it is a repeated header and is skipped.
	HeaderLabel string
}

// IsStop reports whether line ends the data block.
func (f RowFilter) IsStop(line string) bool {
	for _, m := range f.StopMarkers {
		if m != "" && strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// IsDataLine reports whether a split line is a data row: blank lines, rows
// with a blank entity cell, and repeated header rows are not.
func (f RowFilter) IsDataLine(fields model.Record) bool {
	if len(fields) == 0 {
		return false
	}
	entity := strings.TrimSpace(fields.Cell(f.EntityColumn))
	if entity == "" {
		return false
	}
	if f.HeaderLabel != "" && entity == strings.TrimSpace(f.HeaderLabel) {
		return false
	}
	return true
}

// Keep reports whether entity is selected. Matching is exact and case sensitive.
func (f RowFilter) Keep(entity string) bool {
	if len(f.Keys) == 0 {
		return true
	}
	for _, k := range f.Keys {
		if k == entity {
			return true
		}
	}
	return false
}

// Apply returns the rows whose entity is selected, in their original order.
func (f RowFilter) Apply(rows []model.DataRow) []model.DataRow {
	out := make([]model.DataRow, 0, len(rows))
	for _, row := range rows {
		if f.Keep(row.Entity) {
			out = append(out, row)
		}
	}
	return out
}
