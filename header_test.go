package eurotab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateHeader(t *testing.T) {
	t.Parallel()

	lines := []string{
		"Financial balance sheets;;",
		"Unit: million euro;;",
		"",
		"Country;Currency and deposits;Insurance, pensions and standardised guarantees;",
		"Italy;1.577,4;1.050,4;",
		"Country;Currency and deposits;Insurance, pensions and standardised guarantees;",
	}

	tests := []struct {
		name    string
		lines   []string
		marker  string
		want    int
		wantErr error
	}{
		{name: "marker after metadata", lines: lines, marker: "Country;Currency and deposits;", want: 3},
		{name: "first match wins", lines: lines, marker: "Insurance, pensions", want: 3},
		{name: "marker inside the line", lines: lines, marker: "million", want: 1},
		{name: "marker on first line", lines: lines, marker: "Financial", want: 0},
		{name: "absent marker", lines: lines, marker: "Země;", want: -1, wantErr: ErrHeaderNotFound},
		{name: "no lines", lines: nil, marker: "Country;", want: -1, wantErr: ErrHeaderNotFound},
		{name: "empty marker", lines: lines, marker: "", want: -1, wantErr: ErrInvalidSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LocateHeader(tt.lines, tt.marker)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocateHeaderFuncPrefix(t *testing.T) {
	t.Parallel()

	lines := []string{
		"Note: Country;values in %",
		"Country;;;;;Insurance",
		"Italy;1;2",
	}

	got, err := LocateHeaderFunc(lines, MatchPrefix, "Country;")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = LocateHeaderFunc(lines, MatchContains, "Country;")
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	_, err = LocateHeaderFunc(lines, MatchPrefix, "Italy;2")
	require.ErrorIs(t, err, ErrHeaderNotFound)
	assert.Contains(t, err.Error(), "starts with")
}

func TestParseHeaderMatch(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"", "contains", " Contains "} {
		m, err := parseHeaderMatch(name)
		require.NoError(t, err)
		assert.Equal(t, MatchContains, m)
	}

	m, err := parseHeaderMatch("prefix")
	require.NoError(t, err)
	assert.Equal(t, MatchPrefix, m)
	assert.Equal(t, "prefix", m.String())
	assert.Equal(t, "contains", MatchContains.String())

	_, err = parseHeaderMatch("regex")
	assert.ErrorIs(t, err, ErrInvalidSource)
}
