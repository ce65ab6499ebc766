// Package driver provides the eurotab database/sql driver.
//
// A DSN names one or more exports plus extraction parameters:
//
//	MASTER_EUROSTAT.csv?source=eurostat-master&entity=Italy&entity=EU
//	a.csv;b.csv.gz?source=eurostat-master-offsets
//
// Every connection extracts the exports with the Loader given to NewDriver
// and loads each ResultSet into its own in-memory SQLite database as a
// table named after the file. Field columns are REAL; missing values are
// NULL.
//
// Usage:
//
//	import _ "github.com/nao1215/eurotab"
//	db, err := sql.Open("eurotab", "MASTER_EUROSTAT.csv?entity=Italy&entity=EU")
package driver
