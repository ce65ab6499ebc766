package eurotab

import (
	"context"
	"log/slog"

	"github.com/nao1215/eurotab/domain/model"
)

// Default dataset entities.
const (
	EntityItaly = "Italy"
	EntityEU    = "EU"
)

// DefaultDataset returns the Italy and EU reference figures used when the
// master export cannot be read. Field names follow the offset source.
func DefaultDataset() *model.ResultSet {
	fields := []string{
		FieldCurrencyDeposits,
		FieldInsuranceShort,
		FieldAICOnGDP,
		FieldAICOnCAD,
		FieldCADOnINS,
		FieldInsOnFA,
		FieldFAOnGDP,
	}
	row := func(entity string, values ...float64) model.DataRow {
		r := model.DataRow{Entity: entity, Line: -1, Values: make(map[string]model.Value, len(fields))}
		for i, f := range fields {
			r.Values[f] = model.NewValue(values[i])
		}
		return r
	}
	return &model.ResultSet{
		Name:   "default",
		Source: SourceEurostatMasterOffsets,
		Fields: fields,
		Rows: []model.DataRow{
			row(EntityItaly, 1577.4, 1050.4, 69.0, 78.4, 150.2, 19.0, 3.1),
			row(EntityEU, 11627.3, 10020.7, 66.0, 80.4, 116.0, 27.0, 2.6),
		},
	}
}

// ExtractOrDefault extracts path and, when that fails, returns a copy of def
// whose FallbackCause holds the failure. Context cancellation is returned as
// an error, not replaced.
func (e *Extractor) ExtractOrDefault(ctx context.Context, path string, def *model.ResultSet) (*model.ResultSet, error) {
	rs, err := e.Extract(ctx, path)
	if err == nil {
		return rs, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if def == nil {
		def = DefaultDataset()
	}
	e.logger.Warn("extraction failed, using default dataset",
		slog.String("path", path),
		slog.String("default", def.Name),
		slog.Any("error", err))
	out := def.Clone()
	out.FallbackCause = err
	return out, nil
}
