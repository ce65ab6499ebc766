package eurotab

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/nao1215/eurotab/domain/model"
	eurotabdriver "github.com/nao1215/eurotab/driver"
)

// Builder collects exports from paths and filesystems and extracts them
// with one source definition.
//
// The typical usage pattern is:
//
//	builder, err := eurotab.NewBuilder().
//		AddPath("exports/").
//		WithSource(eurotab.EurostatMaster()).
//		Build(ctx)
//	if err != nil {
//		return err
//	}
//	db, err := builder.Open(ctx)
//	defer db.Close()
type Builder struct {
	// paths contains regular file or directory paths
	paths []string
	// filesystems contains fs.FS instances
	filesystems []fs.FS
	// source is the source definition used for every file
	source Source
	// options are passed to NewExtractor
	options []Option
	// collectedPaths contains all paths after Build validation
	collectedPaths []string
	// collectedFS contains all fs.FS files after Build validation
	collectedFS []fsFile
	built       bool
}

// NewBuilder creates a new builder. The source defaults to EurostatMaster.
func NewBuilder() *Builder {
	return &Builder{
		source: EurostatMaster(),
	}
}

// AddPath adds a regular file or directory path to the builder.
// Directories are scanned recursively for supported files
// (.csv, .tsv, .txt, .xlsx and compressed text exports).
//
// Returns the builder for method chaining.
func (b *Builder) AddPath(path string) *Builder {
	b.paths = append(b.paths, path)
	return b
}

// AddPaths adds multiple regular file or directory paths to the builder.
//
// Returns the builder for method chaining.
func (b *Builder) AddPaths(paths ...string) *Builder {
	b.paths = append(b.paths, paths...)
	return b
}

// AddFS adds all supported files from an fs.FS filesystem to the builder.
// This method is particularly useful for embedded filesystems using go:embed.
//
// Returns the builder for method chaining.
func (b *Builder) AddFS(filesystem fs.FS) *Builder {
	b.filesystems = append(b.filesystems, filesystem)
	return b
}

// WithSource sets the source definition used for every file.
func (b *Builder) WithSource(src Source) *Builder {
	b.source = src
	return b
}

// WithOptions appends extractor options.
func (b *Builder) WithOptions(opts ...Option) *Builder {
	b.options = append(b.options, opts...)
	return b
}

// Build validates all configured inputs and collects the files to extract.
// It must be called before ExtractAll or Open.
func (b *Builder) Build(ctx context.Context) (*Builder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(b.paths) == 0 && len(b.filesystems) == 0 {
		return nil, fmt.Errorf("%w: at least one path must be provided", ErrNoInput)
	}
	if err := b.source.Validate(); err != nil {
		return nil, err
	}

	fp := newFileProcessor()
	paths, err := fp.collectFilesFromPaths(b.paths)
	if err != nil {
		return nil, err
	}
	var fsFiles []fsFile
	for _, filesystem := range b.filesystems {
		files, err := fp.collectFSFiles(filesystem)
		if err != nil {
			return nil, fmt.Errorf("failed to process FS input: %w", err)
		}
		fsFiles = append(fsFiles, files...)
	}

	if err := fp.validator.validateFinalState(len(paths)+len(fsFiles), b.paths); err != nil {
		return nil, err
	}
	if err := eurotabdriver.ValidateFileCount(len(paths) + len(fsFiles)); err != nil {
		return nil, err
	}

	b.collectedPaths = paths
	b.collectedFS = fsFiles
	b.built = true
	return b, nil
}

// ExtractAll extracts every collected file, in collection order: paths first,
// then filesystems.
func (b *Builder) ExtractAll(ctx context.Context) ([]*model.ResultSet, error) {
	if !b.built {
		return nil, fmt.Errorf("%w: did you call Build()?", ErrNoInput)
	}
	extractor, err := NewExtractor(b.source, b.options...)
	if err != nil {
		return nil, err
	}

	sets := make([]*model.ResultSet, 0, len(b.collectedPaths)+len(b.collectedFS))
	for _, path := range b.collectedPaths {
		rs, err := extractor.Extract(ctx, path)
		if err != nil {
			return nil, err
		}
		sets = append(sets, rs)
	}
	for _, f := range b.collectedFS {
		rs, err := extractor.ExtractFS(ctx, f.fsys, f.path)
		if err != nil {
			return nil, err
		}
		sets = append(sets, rs)
	}
	return sets, nil
}

// Open extracts every collected file and loads each ResultSet as a table of
// a new in-memory SQLite database. Table names are derived from file names
// without extensions: "MASTER_EUROSTAT.csv.gz" becomes "MASTER_EUROSTAT".
func (b *Builder) Open(ctx context.Context) (*sql.DB, error) {
	sets, err := b.ExtractAll(ctx)
	if err != nil {
		return nil, err
	}

	db, err := openMemoryDB()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(sets))
	for _, rs := range sets {
		if seen[rs.Name] {
			return nil, closeWith(db, fmt.Errorf("%w: %s", eurotabdriver.ErrDuplicateTableName, rs.Name))
		}
		seen[rs.Name] = true
		if err := LoadIntoDB(ctx, db, rs); err != nil {
			return nil, closeWith(db, err)
		}
	}
	return db, nil
}

// closeWith closes db and joins a close failure to err.
func closeWith(db *sql.DB, err error) error {
	if closeErr := db.Close(); closeErr != nil {
		return errors.Join(err, fmt.Errorf("failed to close database: %w", closeErr))
	}
	return err
}
