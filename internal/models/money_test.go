package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMinor(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"100", 10000},
		{"100.00", 10000},
		{"100.5", 10050},
		{"0.29", 29},
		{"0.01", 1},
		{".50", 50},
		{"-2.50", -250},
		{"0", 0},
		{" 12.34 ", 1234},
		{"7,25", 725}, // comma as decimal separator
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMinor(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("rejects junk", func(t *testing.T) {
		for _, in := range []string{"", "abc", "1.234", "1.2.3", ".", "10x", "1e5"} {
			_, err := ParseMinor(in)
			assert.Error(t, err, "input %q", in)
		}
	})

	t.Run("rejects amounts that overflow int64 minor units", func(t *testing.T) {
		// 184467440737095517 * 100 wraps modulo 2^64 down to 84 cents;
		// it must error, not come back as pocket change
		for _, in := range []string{
			"184467440737095517",
			"92233720368547758.08", // MaxInt64 + 1 cent
			"99999999999999999999",
		} {
			_, err := ParseMinor(in)
			assert.Error(t, err, "input %q", in)
		}

		// The largest representable amount still parses
		got, err := ParseMinor("92233720368547758.07")
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64), got)
	})
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "0.00", FormatMinor(0))
	assert.Equal(t, "100.00", FormatMinor(10000))
	assert.Equal(t, "100.50", FormatMinor(10050))
	assert.Equal(t, "0.29", FormatMinor(29))
	assert.Equal(t, "-2.50", FormatMinor(-250))

	// int64 extremes must not wrap during sign handling
	assert.Equal(t, "92233720368547758.07", FormatMinor(math.MaxInt64))
	assert.Equal(t, "-92233720368547758.08", FormatMinor(math.MinInt64))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, 99, 100, 10000, -250, 123456789, math.MaxInt64} {
		got, err := ParseMinor(FormatMinor(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
