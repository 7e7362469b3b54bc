//go:build unit

package intent_test

import (
	"testing"

	"affiliate-notify/internal/domain/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPrice(t *testing.T) {
	type want struct {
		min int64
		max *int64
	}
	p := func(v int64) *int64 { return &v }

	cases := []struct {
		name string
		text string
		want want
	}{
		{name: "k suffix", text: "under 50k", want: want{max: p(50000)}},
		{name: "fractional lakh", text: "budget 1.5 lakh", want: want{max: p(150000)}},
		{name: "lower bound only", text: "above 2 lakhs", want: want{min: 200000}},
		{name: "inverted range", text: "80000 to 50000", want: want{min: 50000, max: p(80000)}},
		{name: "comma separators", text: "within 50,000", want: want{max: p(50000)}},
		{name: "indian grouping", text: "budget 1,50,000", want: want{max: p(150000)}},
		{name: "currency symbol", text: "₹50,000 to ₹80,000 phone", want: want{min: 50000, max: p(80000)}},
		{name: "glued currency", text: "under rs.45000", want: want{max: p(45000)}},
		{name: "range inherits unit", text: "20 to 50k", want: want{min: 20000, max: p(50000)}},
		{name: "between and", text: "between 40000 and 60000", want: want{min: 40000, max: p(60000)}},
		{name: "dash range", text: "30k-45k", want: want{min: 30000, max: p(45000)}},
		{name: "from to prefers range", text: "from 20k to 50k", want: want{min: 20000, max: p(50000)}},
		{name: "keyword bounds swapped", text: "above 80000 under 50000", want: want{min: 50000, max: p(80000)}},
		{name: "largest ceiling wins", text: "under 30k or maybe under 35k", want: want{max: p(35000)}},
		{name: "postfix ceiling", text: "60000 max", want: want{max: p(60000)}},
		{name: "postfix floor", text: "25k onwards", want: want{min: 25000}},
		{name: "million", text: "upto 1.2 million", want: want{max: p(1200000)}},
		{name: "up to with space", text: "up to 15 thousand", want: want{max: p(15000)}},
		{name: "heuristic single", text: "laptop 55000", want: want{max: p(55000)}},
		{name: "heuristic ignores small numbers", text: "pack of 3 for 1200", want: want{max: p(1200)}},
		{name: "heuristic pair", text: "something 30000 45000", want: want{min: 30000, max: p(45000)}},
		{name: "specs are not prices", text: "phone with 6000 mah and 128 gb", want: want{}},
		{name: "no price", text: "red shoes", want: want{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actual := intent.ExtractPrice(tc.text)

			assert.Equal(t, tc.want.min, actual.Min)
			if tc.want.max == nil {
				assert.Nil(t, actual.Max)
				return
			}
			require.NotNil(t, actual.Max)
			assert.Equal(t, *tc.want.max, *actual.Max)
		})
	}
}

func TestExtractPriceOrdering(t *testing.T) {
	inputs := []string{
		"80000 to 50000",
		"above 90k under 10k",
		"9 lakh - 2 lakh",
		"50000 40000 30000",
	}
	for _, in := range inputs {
		actual := intent.ExtractPrice(in)
		require.NotNil(t, actual.Max, in)
		assert.LessOrEqual(t, actual.Min, *actual.Max, in)
	}
}

func TestRangeBounds(t *testing.T) {
	t.Run("small bare numbers still form a range", func(t *testing.T) {
		actual, ok := intent.RangeBounds("3 to 4 cameras")
		require.True(t, ok)
		assert.Equal(t, int64(3), actual.Min)
		require.NotNil(t, actual.Max)
		assert.Equal(t, int64(4), *actual.Max)
	})

	t.Run("units make small numbers a range", func(t *testing.T) {
		actual, ok := intent.RangeBounds("1 to 1.5 lakh")
		require.True(t, ok)
		assert.Equal(t, int64(100000), actual.Min)
		require.NotNil(t, actual.Max)
		assert.Equal(t, int64(150000), *actual.Max)
	})
}

func TestKeywordBounds(t *testing.T) {
	actual, ok := intent.KeywordBounds("at least 10k but not more than 20k")
	require.True(t, ok)
	assert.Equal(t, int64(10000), actual.Min)
	require.NotNil(t, actual.Max)
	assert.Equal(t, int64(20000), *actual.Max)

	_, ok = intent.KeywordBounds("just a phone")
	assert.False(t, ok)
}

func TestHeuristicBounds(t *testing.T) {
	_, ok := intent.HeuristicBounds("2 pairs size 9")
	assert.False(t, ok)

	actual, ok := intent.HeuristicBounds("around 2k")
	require.True(t, ok)
	require.NotNil(t, actual.Max)
	assert.Equal(t, int64(2000), *actual.Max)
}
