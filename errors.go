package eurotab

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/eurotab/domain/model"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrHeaderNotFound indicates that no line contains the header marker
	ErrHeaderNotFound = errors.New("eurotab: header not found")

	// ErrColumnNotFound indicates that a logical field could not be mapped to a column
	ErrColumnNotFound = errors.New("eurotab: column not found")

	// ErrCellConversion indicates that a cell is not a European formatted number
	ErrCellConversion = errors.New("eurotab: cell conversion failed")

	// ErrEmptyCell indicates that a cell carries no text
	ErrEmptyCell = errors.New("eurotab: empty cell")

	// ErrEntityNotFound indicates that a requested entity has no row
	ErrEntityNotFound = errors.New("eurotab: entity not found")

	// ErrEmptyData indicates that the data source contains no lines
	ErrEmptyData = errors.New("eurotab: empty data source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("eurotab: unsupported file format")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("eurotab: file not found")

	// ErrInvalidSource indicates a malformed data source definition
	ErrInvalidSource = errors.New("eurotab: invalid source definition")

	// ErrFieldNotFound indicates that a field is not part of a result set
	ErrFieldNotFound = errors.New("eurotab: field not found")

	// ErrNoInput indicates that a builder or DSN names no usable file
	ErrNoInput = errors.New("eurotab: no input files")
)

// ColumnError describes one field the resolver could not map.
type ColumnError struct {
	Field    string
	Strategy model.Strategy
	// Offset is the configured position for the offset strategy, -1 otherwise.
	Offset int
	Reason string
}

// Error implements error.
func (e *ColumnError) Error() string {
	if e.Strategy == model.StrategyOffset && e.Offset >= 0 {
		return fmt.Sprintf("eurotab: column %q (offset %d): %s", e.Field, e.Offset, e.Reason)
	}
	return fmt.Sprintf("eurotab: column %q (%s): %s", e.Field, e.Strategy, e.Reason)
}

// Unwrap returns ErrColumnNotFound.
func (e *ColumnError) Unwrap() error {
	return ErrColumnNotFound
}

// ConversionError is returned by ParseEuropean for text that is not a number.
type ConversionError struct {
	Raw string
	Err error
}

// Error implements error.
func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("eurotab: cannot convert %q: %v", e.Raw, e.Err)
	}
	return fmt.Sprintf("eurotab: cannot convert %q", e.Raw)
}

// Unwrap returns ErrCellConversion and the underlying parse error.
func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCellConversion}
	}
	return []error{ErrCellConversion, e.Err}
}

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	Source    string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithSource adds data source context to the error
func (ec *ErrorContext) WithSource(source string) *ErrorContext {
	ec.Source = source
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("eurotab: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.Source != "" {
		parts = append(parts, "source: "+ec.Source)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
