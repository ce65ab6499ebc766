package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawTable(t *testing.T) {
	t.Parallel()

	lines := []string{"preamble", "Country;Insurance", "Italy;1.050,4"}
	table := NewRawTable("master", lines)

	assert.Equal(t, "master", table.Name())
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, lines, table.Lines())
	assert.True(t, table.Equal(NewRawTable("master", []string{"preamble", "Country;Insurance", "Italy;1.050,4"})))
	assert.False(t, table.Equal(NewRawTable("other", lines)))
	assert.False(t, table.Equal(NewRawTable("master", lines[:2])))
}

func testResultSet() *ResultSet {
	return &ResultSet{
		Name:   "master",
		Source: "eurostat-master",
		Fields: []string{"Insurance", "FA ON GDP"},
		Rows: []DataRow{
			{Entity: "Italy", Line: 3, Values: map[string]Value{"Insurance": NewValue(1050.4), "FA ON GDP": NewValue(3.1)}},
			{Entity: "EU", Line: 4, Values: map[string]Value{"Insurance": NewValue(10020.7), "FA ON GDP": MissingValue()}},
			{Entity: "Italy", Line: 9, Values: map[string]Value{"Insurance": NewValue(1), "FA ON GDP": NewValue(1)}},
		},
	}
}

func TestResultSet_Lookup(t *testing.T) {
	t.Parallel()

	rs := testResultSet()

	row, ok := rs.Entity("Italy")
	require.True(t, ok)
	assert.Equal(t, 3, row.Line, "the first matching row wins")

	_, ok = rs.Entity("France")
	assert.False(t, ok)

	assert.Equal(t, []string{"Italy", "EU", "Italy"}, rs.Entities())
	assert.Equal(t, []string{"France"}, rs.MissingEntities([]string{"Italy", "France", "EU"}))
	assert.Nil(t, rs.MissingEntities([]string{"EU"}))
	assert.True(t, rs.HasField("Insurance"))
	assert.False(t, rs.HasField("Currency and deposits"))
	assert.Equal(t, 3, rs.Len())
	assert.False(t, rs.IsFallback())
}

func TestResultSet_Column(t *testing.T) {
	t.Parallel()

	rs := testResultSet()
	col := rs.Column("FA ON GDP")
	require.Len(t, col, 3)
	assert.InDelta(t, 3.1, col[0].Float, 1e-9)
	assert.True(t, col[1].Missing)

	unknown := rs.Column("unknown")
	for _, v := range unknown {
		assert.True(t, v.Missing)
	}
}

func TestResultSet_ToMap(t *testing.T) {
	t.Parallel()

	got := testResultSet().ToMap()
	assert.Equal(t, map[string]map[string]float64{
		"Italy": {"Insurance": 1050.4, "FA ON GDP": 3.1},
		"EU":    {"Insurance": 10020.7},
	}, got)
}

func TestResultSet_Clone(t *testing.T) {
	t.Parallel()

	rs := testResultSet()
	rs.FallbackCause = errors.New("boom")
	clone := rs.Clone()

	clone.Rows[0].Values["Insurance"] = NewValue(0)
	clone.Fields[0] = "changed"

	assert.InDelta(t, 1050.4, rs.Rows[0].Values["Insurance"].Float, 1e-9)
	assert.Equal(t, "Insurance", rs.Fields[0])
	assert.True(t, clone.IsFallback())
}

func TestDiagnostic_String(t *testing.T) {
	t.Parallel()

	d := Diagnostic{Line: 4, Entity: "Italy", Field: "AIC ON GPD", Raw: "n/a", Message: "not a number"}
	assert.Equal(t, `line 5, entity "Italy", field "AIC ON GPD": not a number (raw "n/a")`, d.String())
}

func TestSQLQueries(t *testing.T) {
	t.Parallel()

	fields := []string{"Insurance, pensions", `odd"name`}
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "master" ("entity" TEXT, "line" INTEGER, "Insurance, pensions" REAL, "odd""name" REAL)`,
		CreateTableQuery("master", fields))
	assert.Equal(t,
		`INSERT INTO "master" ("entity", "line", "Insurance, pensions", "odd""name") VALUES (?, ?, ?, ?)`,
		InsertQuery("master", fields))

	row := DataRow{Entity: "EU", Line: 2, Values: map[string]Value{"Insurance, pensions": NewValue(2.5)}}
	assert.Equal(t, []any{"EU", int64(2), 2.5, nil}, RowArgs(row, fields))
}
