package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher(t *testing.T) {
	m, err := NewMatcher("^abc")
	require.NoError(t, err)

	assert.True(t, m.Match([]byte("abcdefghijklmnopqrstuvwx")))
	assert.False(t, m.Match([]byte("xabcdefghijklmnopqrstuvw")))
}

func TestMatcherDeterministic(t *testing.T) {
	m, err := NewMatcher("a.c|zz$")
	require.NoError(t, err)

	candidate := []byte("aocdefghijklmnopqrstuvzz")
	first := m.Match(candidate)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, m.Match(candidate))
	}
}

func TestMatcherInvalidPatternIsConfigError(t *testing.T) {
	_, err := NewMatcher("(unclosed")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestMatcherEmptyPatternMatchesEverything(t *testing.T) {
	m, err := NewMatcher("")
	require.NoError(t, err)
	assert.True(t, m.Match([]byte("aaaaaaaaaaaaaaaaaaaaaaaa")))
}

func TestMatcherLiteralPrefix(t *testing.T) {
	m, err := NewMatcher("abc.*")
	require.NoError(t, err)
	assert.Equal(t, "abc", m.LiteralPrefix())
}
