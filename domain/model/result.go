package model

import "fmt"

// DataRow is one parsed record keyed by its entity (e.g. a country name).
type DataRow struct {
	// Entity is the trimmed first-column value.
	Entity string
	// Line is the 0-based index of the source line.
	Line int
	// Values holds one normalized value per resolved field.
	Values map[string]Value
}

// Value returns the value of field; unknown fields are reported as missing.
func (r DataRow) Value(field string) Value {
	v, ok := r.Values[field]
	if !ok {
		return MissingValue()
	}
	return v
}

// clone returns a deep copy of the row.
func (r DataRow) clone() DataRow {
	values := make(map[string]Value, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return DataRow{Entity: r.Entity, Line: r.Line, Values: values}
}

// Diagnostic records one cell that could not be converted and was replaced
// by the fallback value.
type Diagnostic struct {
	Line    int
	Entity  string
	Field   string
	Raw     string
	Message string
}

// String returns a human readable form of the diagnostic.
func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d, entity %q, field %q: %s (raw %q)", d.Line+1, d.Entity, d.Field, d.Message, d.Raw)
}

// ResultSet is the ordered collection of DataRows produced by one extraction.
type ResultSet struct {
	// Name is the table name, usually derived from the input file name.
	Name string
	// Source is the name of the data source definition that produced the set.
	Source string
	// Fields are the resolved logical fields, in resolution order.
	Fields []string
	// Rows are the selected rows in file order.
	Rows []DataRow
	// Diagnostics lists cells recovered with the fallback value.
	Diagnostics []Diagnostic
	// Unresolved lists requested fields that could not be mapped to a column.
	Unresolved []string
	// FallbackCause is set when the set is a default dataset substituted for
	// a failed extraction.
	FallbackCause error
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	return len(rs.Rows)
}

// IsFallback reports whether the set replaced a failed extraction.
func (rs *ResultSet) IsFallback() bool {
	return rs.FallbackCause != nil
}

// Entity returns the first row for key.
func (rs *ResultSet) Entity(key string) (DataRow, bool) {
	for _, row := range rs.Rows {
		if row.Entity == key {
			return row, true
		}
	}
	return DataRow{}, false
}

// Entities returns the entity keys in row order.
func (rs *ResultSet) Entities() []string {
	out := make([]string, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		out = append(out, row.Entity)
	}
	return out
}

// MissingEntities returns the keys that have no row in the set.
func (rs *ResultSet) MissingEntities(keys []string) []string {
	var missing []string
	for _, key := range keys {
		if _, ok := rs.Entity(key); !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// HasField reports whether field was resolved.
func (rs *ResultSet) HasField(field string) bool {
	for _, f := range rs.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Column returns the values of field for every row, in row order.
func (rs *ResultSet) Column(field string) []Value {
	out := make([]Value, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		out = append(out, row.Value(field))
	}
	return out
}

// ToMap returns entity -> field -> float. Missing values are omitted.
// When an entity appears more than once, the first row wins.
func (rs *ResultSet) ToMap() map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(rs.Rows))
	for _, row := range rs.Rows {
		if _, seen := out[row.Entity]; seen {
			continue
		}
		fields := make(map[string]float64, len(row.Values))
		for _, field := range rs.Fields {
			v := row.Value(field)
			if v.Missing {
				continue
			}
			fields[field] = v.Float
		}
		out[row.Entity] = fields
	}
	return out
}

// Clone returns a deep copy of the set.
func (rs *ResultSet) Clone() *ResultSet {
	out := &ResultSet{
		Name:          rs.Name,
		Source:        rs.Source,
		Fields:        append([]string(nil), rs.Fields...),
		Diagnostics:   append([]Diagnostic(nil), rs.Diagnostics...),
		Unresolved:    append([]string(nil), rs.Unresolved...),
		FallbackCause: rs.FallbackCause,
	}
	out.Rows = make([]DataRow, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		out.Rows = append(out.Rows, row.clone())
	}
	return out
}
