package eurotab

import (
	"bytes"
	"errors"
	"log/slog"
	"strconv"
	"testing"

	"github.com/nao1215/eurotab/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEuropean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		raw         string
		want        float64
		wantPercent bool
	}{
		{name: "thousands and decimal", raw: "1.234,5", want: 1234.5},
		{name: "percent", raw: "69,0%", want: 69.0, wantPercent: true},
		{name: "percent with space", raw: "78,4 %", want: 78.4, wantPercent: true},
		{name: "several groups", raw: "11.627,3", want: 11627.3},
		{name: "millions", raw: "1.234.567", want: 1234567},
		{name: "plain integer", raw: "42", want: 42},
		{name: "negative", raw: "-3,25", want: -3.25},
		{name: "surrounding whitespace", raw: "  150,2\t", want: 150.2},
		{name: "leading comma", raw: ",5", want: 0.5},
		{name: "lone dot", raw: ".", want: 0},
		{name: "lone comma", raw: ",", want: 0},
		{name: "lone percent", raw: "%", want: 0, wantPercent: true},
		{name: "dots only", raw: "...", want: 0},
		// '.' is always a thousands separator, even in English formatted text
		{name: "english decimal is read as thousands", raw: "1234.5", want: 12345},
		{name: "short english decimal", raw: "3.1", want: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, percent, err := ParseEuropean(tt.raw)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Equal(t, tt.wantPercent, percent)
		})
	}
}

func TestParseEuropeanErrors(t *testing.T) {
	t.Parallel()

	t.Run("empty and whitespace", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{"", "   ", "\t"} {
			_, _, err := ParseEuropean(raw)
			assert.ErrorIs(t, err, ErrEmptyCell, strconv.Quote(raw))
		}
	})

	t.Run("not a number", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{"abc", "1,2,3", "12a", "n/a"} {
			_, _, err := ParseEuropean(raw)
			require.ErrorIs(t, err, ErrCellConversion, raw)

			var convErr *ConversionError
			require.True(t, errors.As(err, &convErr), raw)
			assert.Equal(t, raw, convErr.Raw)
		}
	})

	t.Run("non finite", func(t *testing.T) {
		t.Parallel()
		for _, raw := range []string{"NaN", "Inf", "-inf"} {
			_, _, err := ParseEuropean(raw)
			assert.ErrorIs(t, err, ErrCellConversion, raw)
		}
	})
}

func TestNormalizer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     NumberOptions
		raw      string
		want     model.Value
		wantDiag bool
	}{
		{name: "number", raw: "1.577,4", want: model.NewValue(1577.4)},
		{name: "empty as zero", raw: "", want: model.NewValue(0)},
		{name: "whitespace as zero", raw: "  ", want: model.NewValue(0)},
		{name: "empty as missing", opts: NumberOptions{Missing: MissingAsNull}, raw: " ", want: model.MissingValue()},
		{name: "null token", opts: NumberOptions{NullTokens: []string{":"}}, raw: " : ", want: model.MissingValue()},
		{name: "percent kept", raw: "66,0%", want: model.NewValue(66)},
		{name: "percent as fraction", opts: NumberOptions{PercentAsFraction: true}, raw: "50%", want: model.NewValue(0.5)},
		{name: "garbage becomes zero", raw: "abc", want: model.NewValue(0), wantDiag: true},
		{name: "unknown token becomes zero", opts: NumberOptions{NullTokens: []string{":"}}, raw: "n.a.", want: model.NewValue(0), wantDiag: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := NewNormalizer(tt.opts, slog.New(slog.DiscardHandler))
			got, diag := n.Normalize(tt.raw)
			assert.Equal(t, tt.want.Missing, got.Missing)
			assert.InDelta(t, tt.want.Float, got.Float, 1e-9)
			if tt.wantDiag {
				require.NotNil(t, diag)
				assert.Equal(t, tt.raw, diag.Raw)
				assert.NotEmpty(t, diag.Message)
			} else {
				assert.Nil(t, diag)
			}
		})
	}
}

func TestNormalizerNormalizeCell(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	n := NewNormalizer(NumberOptions{}, logger)

	v, diag := n.NormalizeCell(7, "Italy", "CAD on INS", "x,y")
	assert.Equal(t, 0.0, v.Float)
	assert.False(t, v.Missing)
	require.NotNil(t, diag)
	assert.Equal(t, 7, diag.Line)
	assert.Equal(t, "Italy", diag.Entity)
	assert.Equal(t, "CAD on INS", diag.Field)
	assert.Contains(t, buf.String(), "cannot convert cell")

	_, diag = n.NormalizeCell(8, "EU", "CAD on INS", "116,0")
	assert.Nil(t, diag)
}

func TestNewNormalizerNilLogger(t *testing.T) {
	t.Parallel()

	n := NewNormalizer(NumberOptions{}, nil)
	v, diag := n.Normalize("2,6")
	assert.Nil(t, diag)
	assert.InDelta(t, 2.6, v.Float, 1e-9)
}
