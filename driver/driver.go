package driver

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/eurotab/domain/model"
	"modernc.org/sqlite"
)

// DSN is a parsed data source name.
type DSN struct {
	// Paths are the export files, separated by ';' in the DSN
	Paths []string
	// Source is the source definition name. Empty means the loader default.
	Source string
	// Entities restricts the rows; empty keeps every entity
	Entities []string
	// Workers is the normalization parallelism; 0 means the loader default
	Workers int
}

// ParseDSN parses "path[;path...][?source=..&entity=..&workers=..]".
func ParseDSN(dsn string) (DSN, error) {
	var out DSN
	pathPart, query, hasQuery := strings.Cut(dsn, "?")

	for _, p := range strings.Split(pathPart, ";") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if err := ValidatePath(p); err != nil {
			return DSN{}, fmt.Errorf("%w: %s", err, SanitizeForLog(p))
		}
		out.Paths = append(out.Paths, p)
	}
	if len(out.Paths) == 0 {
		return DSN{}, ErrNoPathsProvided
	}
	if err := ValidateFileCount(len(out.Paths)); err != nil {
		return DSN{}, err
	}

	if !hasQuery {
		return out, nil
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return DSN{}, fmt.Errorf("%w: %w", ErrInvalidDSN, err)
	}
	for key := range values {
		switch key {
		case "source", "entity", "workers":
		default:
			return DSN{}, fmt.Errorf("%w: unknown parameter %q", ErrInvalidDSN, key)
		}
	}
	out.Source = values.Get("source")
	for _, e := range values["entity"] {
		if err := ValidateEntity(e); err != nil {
			return DSN{}, fmt.Errorf("%w: %w %q", ErrInvalidDSN, err, SanitizeForLog(e))
		}
		out.Entities = append(out.Entities, e)
	}
	if w := values.Get("workers"); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil || n < 0 {
			return DSN{}, fmt.Errorf("%w: workers %q", ErrInvalidDSN, w)
		}
		out.Workers = n
	}
	return out, nil
}

// Loader extracts the exports named by a DSN.
type Loader func(ctx context.Context, dsn DSN) ([]*model.ResultSet, error)

// Driver implements database/sql/driver.Driver interface for exports.
// It serves as the entry point for creating connections.
type Driver struct {
	loader Loader
}

// Connector implements database/sql/driver.Connector interface.
// It holds the parsed DSN and manages the creation of database connections.
type Connector struct {
	driver *Driver
	dsn    DSN
}

// Connection implements database/sql/driver.Conn interface.
// It wraps an underlying SQLite connection that contains the extracted tables.
type Connection struct {
	conn   driver.Conn // Underlying SQLite connection with loaded tables
	tables []string
}

// Transaction implements database/sql/driver.Tx interface.
// It wraps an underlying SQLite transaction for atomic operations.
type Transaction struct {
	tx driver.Tx // Underlying SQLite transaction
}

// NewDriver creates a new driver that extracts with loader
func NewDriver(loader Loader) *Driver {
	return &Driver{loader: loader}
}

// Open implements driver.Driver interface
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	connector, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector implements driver.DriverContext interface
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	parsed, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	return &Connector{
		driver: d,
		dsn:    parsed,
	}, nil
}

// Connect implements driver.Connector interface
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	if c.driver.loader == nil {
		return nil, ErrNoLoader
	}
	sets, err := c.driver.loader(ctx, c.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to extract: %w", err)
	}
	if len(sets) == 0 {
		return nil, ErrNoFilesLoaded
	}

	sqliteDriver := &sqlite.Driver{}
	conn, err := sqliteDriver.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}

	tables, err := c.loadResultSets(ctx, conn, sets)
	if err != nil {
		_ = conn.Close() // Ignore close error since we're already returning an error
		return nil, err
	}
	return &Connection{conn: conn, tables: tables}, nil
}

// Driver implements driver.Connector interface
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// loadResultSets creates one table per result set.
func (c *Connector) loadResultSets(ctx context.Context, conn driver.Conn, sets []*model.ResultSet) ([]string, error) {
	seen := make(map[string]bool, len(sets))
	tables := make([]string, 0, len(sets))
	for _, rs := range sets {
		if seen[rs.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTableName, rs.Name)
		}
		seen[rs.Name] = true

		if err := ValidateColumnCount(len(rs.Fields) + 2); err != nil {
			return nil, fmt.Errorf("%w: %s", err, rs.Name)
		}
		if err := c.executeStatement(ctx, conn, model.CreateTableQuery(rs.Name, rs.Fields), nil); err != nil {
			return nil, fmt.Errorf("failed to create table %s: %w", rs.Name, err)
		}
		if err := c.insertRows(ctx, conn, rs); err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", rs.Name, err)
		}
		tables = append(tables, rs.Name)
	}
	return tables, nil
}

// insertRows inserts all rows using one prepared statement
func (c *Connector) insertRows(ctx context.Context, conn driver.Conn, rs *model.ResultSet) error {
	if len(rs.Rows) == 0 {
		return nil
	}
	stmt, err := conn.Prepare(model.InsertQuery(rs.Name, rs.Fields))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rs.Rows {
		if err := c.executeStatement(ctx, stmt, "", model.RowArgs(row, rs.Fields)); err != nil {
			return err
		}
	}
	return nil
}

// executeStatement executes a statement with proper context support
func (c *Connector) executeStatement(ctx context.Context, target any, query string, args []any) error {
	switch stmt := target.(type) {
	case driver.Conn:
		preparedStmt, err := stmt.Prepare(query)
		if err != nil {
			return err
		}
		defer preparedStmt.Close()
		return c.executeStatement(ctx, preparedStmt, "", args)

	case driver.Stmt:
		if stmtExecCtx, ok := stmt.(driver.StmtExecContext); ok {
			_, err := stmtExecCtx.ExecContext(ctx, toNamedValues(args))
			return err
		}
		return ErrStmtExecContextNotSupported

	default:
		return errors.New("unsupported statement type")
	}
}

// toNamedValues converts arguments to driver.NamedValue slice
func toNamedValues(args []any) []driver.NamedValue {
	namedArgs := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		namedArgs[i] = driver.NamedValue{
			Ordinal: i + 1,
			Value:   arg,
		}
	}
	return namedArgs
}

// Tables returns the names of the tables loaded by the connection.
func (conn *Connection) Tables() []string {
	return append([]string(nil), conn.tables...)
}

// Close implements driver.Conn interface
func (conn *Connection) Close() error {
	if conn.conn != nil {
		return conn.conn.Close()
	}
	return nil
}

// Begin implements driver.Conn interface (deprecated, use BeginTx instead)
func (conn *Connection) Begin() (driver.Tx, error) {
	return conn.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx implements driver.ConnBeginTx interface
func (conn *Connection) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if connBeginTx, ok := conn.conn.(driver.ConnBeginTx); ok {
		tx, err := connBeginTx.BeginTx(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &Transaction{tx: tx}, nil
	}
	return nil, ErrBeginTxNotSupported
}

// Commit implements driver.Tx interface
func (t *Transaction) Commit() error {
	return t.tx.Commit()
}

// Rollback implements driver.Tx interface
func (t *Transaction) Rollback() error {
	return t.tx.Rollback()
}

// Prepare implements driver.Conn interface (deprecated, use PrepareContext instead)
func (conn *Connection) Prepare(query string) (driver.Stmt, error) {
	return conn.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext interface
func (conn *Connection) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if connPrepareCtx, ok := conn.conn.(driver.ConnPrepareContext); ok {
		return connPrepareCtx.PrepareContext(ctx, query)
	}
	return nil, ErrPrepareContextNotSupported
}
