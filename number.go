package eurotab

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/nao1215/eurotab/domain/model"
)

// MissingPolicy decides what an empty cell becomes.
type MissingPolicy int

const (
	// MissingAsZero turns empty cells into 0.0
	MissingAsZero MissingPolicy = iota
	// MissingAsNull turns empty cells into the missing marker
	MissingAsNull
)

// ParseEuropean converts a European formatted number ("1.234,5", "69,0%")
// into a float. The second result reports whether the text carried a
// trailing percent sign; the magnitude is never rescaled.
//
// Every '.' is removed before ',' becomes the decimal point, so "1234.5"
// parses as 12345.
func ParseEuropean(raw string) (float64, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, ErrEmptyCell
	}

	percent := false
	if strings.HasSuffix(s, "%") {
		percent = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}

	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	if strings.Trim(s, ".") == "" {
		return 0, percent, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, percent, &ConversionError{Raw: raw, Err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, percent, &ConversionError{Raw: raw}
	}
	return f, percent, nil
}

// NumberOptions configures a Normalizer.
type NumberOptions struct {
	// Missing decides what an empty cell becomes
	Missing MissingPolicy
	// NullTokens are cell texts that mean "no data" (Eurostat uses ":")
	NullTokens []string
	// PercentAsFraction divides percent values by 100
	PercentAsFraction bool
}

// Normalizer turns raw cells into Values. It never fails: cells that cannot
// be converted become 0.0 and are reported as diagnostics.
type Normalizer struct {
	opts   NumberOptions
	nulls  map[string]struct{}
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer. A nil logger means slog.Default().
func NewNormalizer(opts NumberOptions, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	nulls := make(map[string]struct{}, len(opts.NullTokens))
	for _, tok := range opts.NullTokens {
		nulls[strings.TrimSpace(tok)] = struct{}{}
	}
	return &Normalizer{opts: opts, nulls: nulls, logger: logger}
}

// Normalize converts one cell. The returned diagnostic is non-nil only when
// the cell failed conversion and was replaced with 0.0.
func (n *Normalizer) Normalize(raw string) (model.Value, *model.Diagnostic) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		if n.opts.Missing == MissingAsNull {
			return model.MissingValue(), nil
		}
		return model.NewValue(0), nil
	}
	if _, ok := n.nulls[trimmed]; ok {
		return model.MissingValue(), nil
	}

	f, percent, err := ParseEuropean(trimmed)
	if err != nil {
		n.logger.Warn("cannot convert cell, using 0", slog.String("raw", raw), slog.Any("error", err))
		return model.NewValue(0), &model.Diagnostic{Raw: raw, Message: err.Error()}
	}
	if percent && n.opts.PercentAsFraction {
		f /= 100
	}
	return model.NewValue(f), nil
}

// NormalizeCell is Normalize with the diagnostic filled in with the cell
// position.
func (n *Normalizer) NormalizeCell(line int, entity, field, raw string) (model.Value, *model.Diagnostic) {
	v, diag := n.Normalize(raw)
	if diag != nil {
		diag.Line = line
		diag.Entity = entity
		diag.Field = field
		n.logger.Debug("recovered cell", slog.Int("line", line+1), slog.String("entity", entity), slog.String("field", field))
	}
	return v, diag
}
