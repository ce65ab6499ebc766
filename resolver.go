package eurotab

import (
	"errors"
	"fmt"

	"github.com/nao1215/eurotab/domain/model"
)

// ColumnResolver maps logical field names to column positions of a header.
//
// Resolve returns the fields it could map even when others fail; the error
// joins one *ColumnError per unresolved field.
type ColumnResolver interface {
	Resolve(header model.Header, fields []string) (*model.ColumnMap, error)
	Strategy() model.Strategy
}

// LabelResolver finds each field by exact match against the trimmed header
// cells. The first occurrence of a label wins.
type LabelResolver struct{}

// NewLabelResolver creates a LabelResolver.
func NewLabelResolver() *LabelResolver {
	return &LabelResolver{}
}

// Strategy returns model.StrategyLabel.
func (r *LabelResolver) Strategy() model.Strategy {
	return model.StrategyLabel
}

// Resolve implements ColumnResolver.
func (r *LabelResolver) Resolve(header model.Header, fields []string) (*model.ColumnMap, error) {
	cm := model.NewColumnMap(model.StrategyLabel)
	var errs []error
	for _, field := range fields {
		idx := header.Index(field)
		if idx < 0 {
			errs = append(errs, &ColumnError{
				Field:    field,
				Strategy: model.StrategyLabel,
				Offset:   -1,
				Reason:   "no header cell has this label",
			})
			continue
		}
		if err := cm.Set(field, idx); err != nil {
			errs = append(errs, err)
		}
	}
	return cm, errors.Join(errs...)
}

// OffsetResolver maps fields through a fixed field -> column index table.
// Offsets beyond the header width are accepted; rows shorter than an offset
// yield empty cells.
type OffsetResolver struct {
	Offsets map[string]int
}

// NewOffsetResolver creates an OffsetResolver over a copy of offsets.
func NewOffsetResolver(offsets map[string]int) *OffsetResolver {
	cp := make(map[string]int, len(offsets))
	for k, v := range offsets {
		cp[k] = v
	}
	return &OffsetResolver{Offsets: cp}
}

// Strategy returns model.StrategyOffset.
func (r *OffsetResolver) Strategy() model.Strategy {
	return model.StrategyOffset
}

// Resolve implements ColumnResolver. The header is not consulted.
func (r *OffsetResolver) Resolve(_ model.Header, fields []string) (*model.ColumnMap, error) {
	cm := model.NewColumnMap(model.StrategyOffset)
	var errs []error
	for _, field := range fields {
		offset, ok := r.Offsets[field]
		switch {
		case !ok:
			errs = append(errs, &ColumnError{
				Field:    field,
				Strategy: model.StrategyOffset,
				Offset:   -1,
				Reason:   "no offset configured",
			})
		case offset < 0:
			errs = append(errs, &ColumnError{
				Field:    field,
				Strategy: model.StrategyOffset,
				Offset:   offset,
				Reason:   "negative offset",
			})
		default:
			if err := cm.Set(field, offset); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return cm, errors.Join(errs...)
}

// newResolver returns the resolver for a strategy.
func newResolver(strategy model.Strategy, offsets map[string]int) (ColumnResolver, error) {
	switch strategy {
	case model.StrategyLabel:
		return NewLabelResolver(), nil
	case model.StrategyOffset:
		return NewOffsetResolver(offsets), nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %v", ErrInvalidSource, strategy)
	}
}
