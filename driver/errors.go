package driver

import "errors"

// Predefined errors
var (
	// ErrNoPathsProvided is returned when the DSN names no file
	ErrNoPathsProvided = errors.New("eurotab driver: no paths provided")

	// ErrNoFilesLoaded is returned when the loader produced no result set
	ErrNoFilesLoaded = errors.New("eurotab driver: no files were loaded")

	// ErrNoLoader is returned when the driver was created without a loader
	ErrNoLoader = errors.New("eurotab driver: no loader configured")

	// ErrInvalidDSN is returned for malformed DSN parameters
	ErrInvalidDSN = errors.New("eurotab driver: invalid DSN")

	// ErrStmtExecContextNotSupported is returned when statement does not support ExecContext
	ErrStmtExecContextNotSupported = errors.New("eurotab driver: statement does not support ExecContext")

	// ErrBeginTxNotSupported is returned when underlying connection does not support BeginTx
	ErrBeginTxNotSupported = errors.New("eurotab driver: underlying connection does not support BeginTx")

	// ErrPrepareContextNotSupported is returned when underlying connection does not support PrepareContext
	ErrPrepareContextNotSupported = errors.New("eurotab driver: underlying connection does not support PrepareContext")

	// ErrDuplicateTableName is returned when multiple files would create the same table name
	ErrDuplicateTableName = errors.New("eurotab driver: duplicate table name")
)
