// Package eurotab extracts numeric tables from European formatted
// spreadsheet exports such as the Eurostat household financial assets
// master file.
//
// Those exports carry a title block above the real header, use ';' as the
// cell separator, '.' as the thousands separator and ',' as the decimal
// separator, and append '%' to ratios. eurotab finds the header line by a
// marker text, maps the wanted fields to columns by label or by a fixed
// offset table, keeps the requested entities (countries or aggregates) and
// converts every cell to a float64.
//
// # Features
//
//   - Header detection below arbitrary preamble lines
//   - Label and offset column strategies, chosen per source definition
//   - European number parsing with per-cell diagnostics
//   - Entity filtering and a stop marker for trailing junk
//   - Compressed input (gzip, bzip2, xz, zstandard) and XLSX sheets
//   - Fallback to a built-in dataset when an export is unusable
//   - Output as CSV, TSV, Parquet or XLSX, or as SQLite tables
//
// # Basic Usage
//
//	e, err := eurotab.NewExtractor(eurotab.EurostatMaster(),
//		eurotab.WithEntities("Italy", "EU"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	rs, err := e.Extract(ctx, "MASTER_EUROSTAT.csv")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(rs.ToMap()["Italy"]["CAD on INS"])
//
// # Number Format
//
// ParseEuropean removes every '.' before turning ',' into the decimal point.
// "1.234,5" is 1234.5, but a value already written with a decimal point,
// such as "1234.5", becomes 12345. Cells that cannot be converted become 0
// and are reported in ResultSet.Diagnostics; empty cells follow the source's
// missing policy.
//
// # SQL Access
//
// The package registers a database/sql driver named "eurotab". Every
// extracted export becomes a table named after its file:
//
//	db, err := eurotab.Open("MASTER_EUROSTAT.csv.gz?entity=Italy&entity=EU")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	rows, err := db.Query(`SELECT entity, "FA ON GDP" FROM MASTER_EUROSTAT`)
//
// The first column is "entity", followed by one REAL column per field;
// missing values are NULL. Builder offers the same over directories and
// fs.FS inputs.
package eurotab
