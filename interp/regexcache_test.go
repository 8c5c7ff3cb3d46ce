package interp

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegexCacheEviction(t *testing.T) {
	c := newRegexCache(3)
	for i := 0; i < 5; i++ {
		require.NoError(t, c.validate(fmt.Sprintf("a{%d}", i), ""))
	}
	require.Equal(t, 3, c.Len())

	// Oldest entries were evicted; the newest are still present.
	_, ok := c.cache[regexKey("a{0}", "")]
	require.False(t, ok)
	_, ok = c.cache[regexKey("a{4}", "")]
	require.True(t, ok)
}

func TestRegexCacheKeepsFailures(t *testing.T) {
	c := newRegexCache(0)
	require.ErrorIs(t, c.validate("(", ""), ErrInvalidRegex)
	require.ErrorIs(t, c.validate("(", ""), ErrInvalidRegex)
	require.Equal(t, 1, c.Len())

	// Same pattern under different flags is a separate entry.
	require.NoError(t, c.validate("x", ""))
	require.NoError(t, c.validate("x", "i"))
	require.Equal(t, 3, c.Len())
}
