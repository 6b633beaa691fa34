package randutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()
	a, b := New(42), New(42)
	for range 10 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
	assert.NotEqual(t, New(1).Uint64(), New(2).Uint64())
}

func TestSplit(t *testing.T) {
	t.Parallel()
	first := Split(New(7), 4)
	second := Split(New(7), 4)
	require.Len(t, first, 4)

	seen := make(map[uint64]bool)
	for i := range first {
		x := first[i].Uint64()
		assert.Equal(t, x, second[i].Uint64(), "child %d not reproducible", i)
		assert.False(t, seen[x], "children %d share a stream", i)
		seen[x] = true
	}
}

func TestFromOptional(t *testing.T) {
	t.Parallel()
	seed := int64(9)
	assert.Equal(t, New(9).Uint64(), FromOptional(&seed).Uint64())
	assert.NotNil(t, FromOptional(nil))
	assert.NotNil(t, OrNew(nil))
}
