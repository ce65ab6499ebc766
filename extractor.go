package eurotab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/nao1215/eurotab/domain/model"
	"golang.org/x/sync/errgroup"
)

// DefaultParallelThreshold is the number of selected rows from which
// normalization is spread over the configured workers.
const DefaultParallelThreshold = 256

// Extractor turns one kind of export into ResultSets. It holds no mutable
// state and is safe for concurrent use.
type Extractor struct {
	source            Source
	resolver          ColumnResolver
	logger            *slog.Logger
	entities          []string
	requireEntities   bool
	workers           int
	parallelThreshold int
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEntities keeps only the rows of the given entities, in file order.
func WithEntities(keys ...string) Option {
	return func(e *Extractor) {
		e.entities = append(e.entities, keys...)
	}
}

// RequireEntities makes the extraction fail with ErrEntityNotFound when a key
// passed to WithEntities has no row.
func RequireEntities() Option {
	return func(e *Extractor) {
		e.requireEntities = true
	}
}

// WithWorkers normalizes rows with up to n goroutines. n <= 1 disables
// parallel normalization.
func WithWorkers(n int) Option {
	return func(e *Extractor) {
		e.workers = n
	}
}

// WithParallelThreshold overrides DefaultParallelThreshold.
func WithParallelThreshold(rows int) Option {
	return func(e *Extractor) {
		if rows > 0 {
			e.parallelThreshold = rows
		}
	}
}

// WithResolver replaces the resolver derived from the source strategy.
func WithResolver(r ColumnResolver) Option {
	return func(e *Extractor) {
		if r != nil {
			e.resolver = r
		}
	}
}

// NewExtractor validates src and creates an Extractor for it.
func NewExtractor(src Source, opts ...Option) (*Extractor, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	resolver, err := newResolver(src.Strategy, src.Offsets)
	if err != nil {
		return nil, err
	}
	e := &Extractor{
		source:            src,
		resolver:          resolver,
		logger:            slog.Default(),
		workers:           1,
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("source", src.Name))
	return e, nil
}

// Source returns the source definition of the extractor.
func (e *Extractor) Source() Source {
	return e.source
}

// Extract reads the file at path and extracts its data block.
func (e *Extractor) Extract(ctx context.Context, path string) (*model.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := readRawTable(path, e.source)
	if err != nil {
		return nil, err
	}
	return e.extract(ctx, table, path)
}

// ExtractFS reads path from fsys and extracts its data block.
func (e *Extractor) ExtractFS(ctx context.Context, fsys fs.FS, path string) (*model.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := readRawTableFS(fsys, path, e.source)
	if err != nil {
		return nil, err
	}
	return e.extract(ctx, table, path)
}

// ExtractReader extracts from r. name provides the file type, compression,
// and table name (for example "master.csv.gz").
func (e *Extractor) ExtractReader(ctx context.Context, r io.Reader, name string) (*model.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := readRawTableFrom(r, name, e.source)
	if err != nil {
		return nil, NewErrorContext("read", name).WithSource(e.source.Name).Error(err)
	}
	return e.extract(ctx, table, name)
}

// ExtractTable extracts from lines that are already in memory.
func (e *Extractor) ExtractTable(ctx context.Context, table *model.RawTable) (*model.ResultSet, error) {
	return e.extract(ctx, table, table.Name())
}

// dataLine is a candidate data row before normalization.
type dataLine struct {
	line   int
	entity string
	record model.Record
}

// normalizedRow is one worker slot.
type normalizedRow struct {
	row   model.DataRow
	diags []model.Diagnostic
}

func (e *Extractor) extract(ctx context.Context, table *model.RawTable, origin string) (*model.ResultSet, error) {
	src := e.source
	lines := table.Lines()
	if len(lines) == 0 {
		return nil, NewErrorContext("extract", origin).WithSource(src.Name).Error(ErrEmptyData)
	}

	headerIdx, err := LocateHeaderFunc(lines, src.HeaderMatch, src.HeaderMarker)
	if err != nil {
		return nil, NewErrorContext("locate header", origin).WithSource(src.Name).Error(err)
	}
	delim := src.delimiter()
	header := model.NewHeader(strings.Split(lines[headerIdx], delim))
	e.logger.Debug("header located", slog.String("table", table.Name()), slog.Int("line", headerIdx+1), slog.Int("columns", len(header)))

	filter := RowFilter{
		Keys:         e.entities,
		StopMarkers:  src.StopMarkers,
		EntityColumn: src.EntityColumn,
		HeaderLabel:  model.Record(header).Cell(src.EntityColumn),
	}

	var block []dataLine
	for i := headerIdx + 1; i < len(lines); i++ {
		if filter.IsStop(lines[i]) {
			e.logger.Debug("data block ends", slog.Int("line", i+1))
			break
		}
		record := model.NewRecord(strings.Split(lines[i], delim))
		if !filter.IsDataLine(record) {
			continue
		}
		block = append(block, dataLine{
			line:   i,
			entity: strings.TrimSpace(record.Cell(src.EntityColumn)),
			record: record,
		})
	}

	fields := src.fieldList()
	if len(fields) == 0 && e.resolver.Strategy() == model.StrategyLabel {
		records := make([]model.Record, 0, len(block))
		for _, d := range block {
			records = append(records, d.record)
		}
		fields = inferNumericFields(header, records, src.EntityColumn, src.NullTokens)
		e.logger.Debug("numeric columns inferred", slog.Any("fields", fields))
	}
	if len(fields) == 0 {
		return nil, NewErrorContext("resolve columns", origin).WithSource(src.Name).
			Error(fmt.Errorf("%w: no fields to extract", ErrColumnNotFound))
	}

	columns, resolveErr := e.resolver.Resolve(header, fields)
	var unresolved []string
	if resolveErr != nil {
		if src.Strict {
			return nil, NewErrorContext("resolve columns", origin).WithSource(src.Name).Error(resolveErr)
		}
		for _, f := range fields {
			if _, ok := columns.Index(f); !ok {
				unresolved = append(unresolved, f)
			}
		}
		e.logger.Warn("unresolved fields", slog.Any("fields", unresolved), slog.Any("error", resolveErr))
	}
	if columns.Len() == 0 {
		return nil, NewErrorContext("resolve columns", origin).WithSource(src.Name).
			Error(errors.Join(ErrColumnNotFound, resolveErr))
	}

	selected := make([]dataLine, 0, len(block))
	for _, d := range block {
		if filter.Keep(d.entity) {
			selected = append(selected, d)
		}
	}

	slots, err := e.normalizeAll(ctx, selected, columns)
	if err != nil {
		return nil, err
	}

	rs := &model.ResultSet{
		Name:       table.Name(),
		Source:     src.Name,
		Fields:     columns.Fields(),
		Rows:       make([]model.DataRow, 0, len(slots)),
		Unresolved: unresolved,
	}
	for _, s := range slots {
		rs.Rows = append(rs.Rows, s.row)
		rs.Diagnostics = append(rs.Diagnostics, s.diags...)
	}

	if e.requireEntities {
		if missing := rs.MissingEntities(e.entities); len(missing) > 0 {
			return nil, NewErrorContext("extract", origin).WithSource(src.Name).
				WithDetails(strings.Join(missing, ", ")).Error(ErrEntityNotFound)
		}
	}

	e.logger.Info("extracted",
		slog.String("table", rs.Name),
		slog.Int("rows", rs.Len()),
		slog.Int("fields", len(rs.Fields)),
		slog.Int("diagnostics", len(rs.Diagnostics)))
	return rs, nil
}

// normalizeAll converts the selected lines into rows, preserving their order.
func (e *Extractor) normalizeAll(ctx context.Context, selected []dataLine, columns *model.ColumnMap) ([]normalizedRow, error) {
	normalizer := NewNormalizer(e.source.numberOptions(), e.logger)
	fields := columns.Fields()
	slots := make([]normalizedRow, len(selected))

	if e.workers <= 1 || len(selected) < e.parallelThreshold {
		for i, d := range selected {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			slots[i] = normalizeLine(normalizer, d, fields, columns)
		}
		return slots, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, d := range selected {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = normalizeLine(normalizer, d, fields, columns)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}

// normalizeLine converts the resolved cells of one data line.
func normalizeLine(n *Normalizer, d dataLine, fields []string, columns *model.ColumnMap) normalizedRow {
	out := normalizedRow{
		row: model.DataRow{
			Entity: d.entity,
			Line:   d.line,
			Values: make(map[string]model.Value, len(fields)),
		},
	}
	for _, field := range fields {
		idx, _ := columns.Index(field)
		if idx >= len(d.record) {
			// the row is shorter than the offset table
			out.row.Values[field] = model.MissingValue()
			continue
		}
		v, diag := n.NormalizeCell(d.line, d.entity, field, d.record.Cell(idx))
		out.row.Values[field] = v
		if diag != nil {
			out.diags = append(out.diags, *diag)
		}
	}
	return out
}

// Select returns a copy of rs holding only the rows of keys, in their
// original order.
func Select(rs *model.ResultSet, keys ...string) *model.ResultSet {
	out := rs.Clone()
	out.Rows = RowFilter{Keys: keys}.Apply(out.Rows)
	return out
}
