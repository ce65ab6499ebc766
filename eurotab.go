package eurotab

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nao1215/eurotab/domain/model"
	eurotabdriver "github.com/nao1215/eurotab/driver"
)

const (
	// DriverName is the name for the eurotab driver
	DriverName = "eurotab"
)

// Register registers the eurotab driver with database/sql
func Register() {
	sql.Register(DriverName, eurotabdriver.NewDriver(loadDSN))
}

func init() {
	// Auto-register the driver on import
	Register()
}

// loadDSN extracts every file named by dsn with the built-in source it
// selects (eurostat-master when none is given).
func loadDSN(ctx context.Context, dsn eurotabdriver.DSN) ([]*model.ResultSet, error) {
	name := dsn.Source
	if name == "" {
		name = SourceEurostatMaster
	}
	src, err := FindSource(name)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithEntities(dsn.Entities...)}
	if dsn.Workers > 0 {
		opts = append(opts, WithWorkers(dsn.Workers))
	}

	b, err := NewBuilder().AddPaths(dsn.Paths...).WithSource(src).WithOptions(opts...).Build(ctx)
	if err != nil {
		return nil, err
	}
	return b.ExtractAll(ctx)
}

// Open opens a database connection using the eurotab driver.
//
// The DSN names one or more exports (files or directories, separated by ';')
// and optionally the source definition and the entities to keep:
//
//	db, err := eurotab.Open("MASTER_EUROSTAT.csv?source=eurostat-master&entity=Italy&entity=EU")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	var ratio float64
//	err = db.QueryRow(`SELECT "CAD on INS" FROM MASTER_EUROSTAT WHERE entity = 'Italy'`).Scan(&ratio)
//
// Each file becomes a table named after the file without extensions, with an
// entity column, a line column, and one REAL column per extracted field.
// Missing values are NULL. The tables live in memory; the input files are
// never modified.
func Open(dsn string) (*sql.DB, error) {
	return OpenContext(context.Background(), dsn)
}

// OpenContext is Open with a context. The extraction runs when the first
// connection is established, so ctx bounds it.
func OpenContext(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}
	// Every connection holds its own in-memory copy; keep one.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("%w (close: %w)", err, closeErr)
		}
		return nil, err
	}
	return db, nil
}
