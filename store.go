package eurotab

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/nao1215/eurotab/domain/model"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// sqliteDriverName is the database/sql name of modernc.org/sqlite
const sqliteDriverName = "sqlite"

// openMemoryDB opens a private in-memory SQLite database. Every connection
// of ":memory:" is a new database, so the pool is pinned to one connection.
func openMemoryDB() (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

// LoadIntoDB creates table rs.Name and inserts every row. Missing values are
// stored as NULL.
func LoadIntoDB(ctx context.Context, db *sql.DB, rs *model.ResultSet) error {
	if rs.Name == "" {
		return fmt.Errorf("%w: result set has no name", ErrInvalidSource)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if _, err := tx.ExecContext(ctx, model.CreateTableQuery(rs.Name, rs.Fields)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", rs.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, model.InsertQuery(rs.Name, rs.Fields))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rs.Rows {
		if _, err := stmt.ExecContext(ctx, model.RowArgs(row, rs.Fields)...); err != nil {
			return fmt.Errorf("failed to insert entity %s: %w", row.Entity, err)
		}
	}
	return tx.Commit()
}

// ReadResultSet reads a table written by LoadIntoDB back into a ResultSet.
func ReadResultSet(ctx context.Context, db *sql.DB, table string) (*model.ResultSet, error) {
	xdb := sqlx.NewDb(db, sqliteDriverName)

	rows, err := xdb.QueryxContext(ctx, "SELECT * FROM "+model.QuoteIdent(table)+" ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	rs := &model.ResultSet{Name: table}
	for _, c := range columns {
		if c != model.ColumnEntity && c != model.ColumnLine {
			rs.Fields = append(rs.Fields, c)
		}
	}

	for rows.Next() {
		m := make(map[string]any, len(columns))
		if err := rows.MapScan(m); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := model.DataRow{
			Entity: asString(m[model.ColumnEntity]),
			Values: make(map[string]model.Value, len(rs.Fields)),
		}
		line, _ := asFloat(m[model.ColumnLine])
		row.Line = int(line)
		for _, f := range rs.Fields {
			if v, ok := asFloat(m[f]); ok {
				row.Values[f] = model.NewValue(v)
			} else {
				row.Values[f] = model.MissingValue()
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return rs, nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int64:
		return float64(t), true
	case []byte:
		f, err := strconv.ParseFloat(string(t), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
