// Package model provides domain model for eurotab
package model

import (
	"fmt"
	"math"
	"strings"
)

// Header is the delimiter-split header row.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// Index returns the position of the first cell equal to label after trimming
// surrounding whitespace, or -1.
func (h Header) Index(label string) int {
	for i, v := range h {
		if strings.TrimSpace(v) == label {
			return i
		}
	}
	return -1
}

// Record is one delimiter-split data line.
type Record []string

// NewRecord create new Record.
func NewRecord(r []string) Record {
	return Record(r)
}

// Equal compare Record.
func (r Record) Equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if v != r2[i] {
			return false
		}
	}
	return true
}

// Cell returns the cell at index i, or an empty string when the record is
// shorter than i+1.
func (r Record) Cell(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Value is a normalized numeric cell: a finite float or an explicit missing marker.
type Value struct {
	// Float is the normalized number. It is zero when Missing is true.
	Float float64
	// Missing reports that the cell carried no number.
	Missing bool
}

// NewValue creates a present Value. Non-finite input becomes a missing Value.
func NewValue(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return MissingValue()
	}
	return Value{Float: f}
}

// MissingValue returns the missing marker.
func MissingValue() Value {
	return Value{Missing: true}
}

// Float64 returns the number, or 0 for a missing value.
func (v Value) Float64() float64 {
	if v.Missing {
		return 0
	}
	return v.Float
}

// String returns the value as text; missing values render as an empty string.
func (v Value) String() string {
	if v.Missing {
		return ""
	}
	return fmt.Sprintf("%g", v.Float)
}

// Strategy identifies how logical fields are mapped to column positions.
type Strategy int

const (
	// StrategyLabel resolves fields by exact header label match
	StrategyLabel Strategy = iota
	// StrategyOffset resolves fields through a fixed field -> index table
	StrategyOffset
)

// String returns the strategy name
func (s Strategy) String() string {
	switch s {
	case StrategyLabel:
		return "label"
	case StrategyOffset:
		return "offset"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "label":
		return StrategyLabel, nil
	case "offset":
		return StrategyOffset, nil
	default:
		return StrategyLabel, fmt.Errorf("unknown column strategy %q", name)
	}
}

// ColumnMap maps logical field names to column indexes, keeping insertion order.
type ColumnMap struct {
	strategy Strategy
	fields   []string
	index    map[string]int
}

// NewColumnMap creates an empty ColumnMap produced by the given strategy.
func NewColumnMap(strategy Strategy) *ColumnMap {
	return &ColumnMap{
		strategy: strategy,
		index:    make(map[string]int),
	}
}

// Set maps field to column. A field that is already mapped keeps its first position.
func (m *ColumnMap) Set(field string, column int) error {
	if _, ok := m.index[field]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateField, field)
	}
	m.fields = append(m.fields, field)
	m.index[field] = column
	return nil
}

// Index returns the column index of field.
func (m *ColumnMap) Index(field string) (int, bool) {
	i, ok := m.index[field]
	return i, ok
}

// Fields returns the resolved field names in resolution order.
func (m *ColumnMap) Fields() []string {
	out := make([]string, len(m.fields))
	copy(out, m.fields)
	return out
}

// Len returns the number of resolved fields.
func (m *ColumnMap) Len() int {
	return len(m.fields)
}

// Strategy returns the strategy that produced the map.
func (m *ColumnMap) Strategy() Strategy {
	return m.strategy
}
