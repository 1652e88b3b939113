package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"1672531200", 1672531200},
		{"2023-01-01", 1672531200},
		{"2023-01-01 12:00:00", 1672574400},
		{"2023-01-01T12:00:00", 1672574400},
		{"2023-01-01T12:00:00Z", 1672574400},
		{"0", 0},
	}
	for _, tc := range cases {
		got, err := ParseTime(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseTimeInvalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "01/02/2023", "2023-13-45", "-5"} {
		_, err := ParseTime(in)
		assert.ErrorIs(t, err, ErrInvalidDate, "input %q", in)
	}
}

func TestParseDateRange(t *testing.T) {
	dr, err := ParseDateRange("2023-01-01", "2023-02-14")
	require.NoError(t, err)
	assert.Equal(t, uint64(1672531200), dr.From)
	assert.Equal(t, uint64(1676332800), dr.To)

	// Equal bounds are a valid (single-instant) range.
	dr, err = ParseDateRange("2023-01-01", "2023-01-01")
	require.NoError(t, err)
	assert.Equal(t, dr.From, dr.To)
}

func TestParseDateRangeInverted(t *testing.T) {
	_, err := ParseDateRange("2023-02-14", "2023-01-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestParseDateRangeMixedForms(t *testing.T) {
	dr, err := ParseDateRange("1672531200", "2023-01-02")
	require.NoError(t, err)
	assert.Less(t, dr.From, dr.To)
}
