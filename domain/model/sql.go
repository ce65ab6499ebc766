package model

import (
	"fmt"
	"strings"
)

// Reserved column names of a result table.
const (
	// ColumnEntity holds DataRow.Entity
	ColumnEntity = "entity"
	// ColumnLine holds DataRow.Line
	ColumnLine = "line"
)

// QuoteIdent quotes an SQLite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateTableQuery returns the CREATE TABLE statement for rs. Field columns
// are REAL; missing values are stored as NULL.
func CreateTableQuery(table string, fields []string) string {
	columns := make([]string, 0, len(fields)+2)
	columns = append(columns, QuoteIdent(ColumnEntity)+" TEXT", QuoteIdent(ColumnLine)+" INTEGER")
	for _, f := range fields {
		columns = append(columns, QuoteIdent(f)+" REAL")
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", QuoteIdent(table), strings.Join(columns, ", "))
}

// InsertQuery returns the parameterized INSERT statement matching RowArgs.
func InsertQuery(table string, fields []string) string {
	columns := make([]string, 0, len(fields)+2)
	columns = append(columns, QuoteIdent(ColumnEntity), QuoteIdent(ColumnLine))
	for _, f := range fields {
		columns = append(columns, QuoteIdent(f))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", QuoteIdent(table), strings.Join(columns, ", "), placeholders)
}

// RowArgs returns the INSERT arguments for row. Every argument is a valid
// database/sql/driver.Value.
func RowArgs(row DataRow, fields []string) []any {
	args := make([]any, 0, len(fields)+2)
	args = append(args, row.Entity, int64(row.Line))
	for _, f := range fields {
		v := row.Value(f)
		if v.Missing {
			args = append(args, nil)
			continue
		}
		args = append(args, v.Float)
	}
	return args
}
