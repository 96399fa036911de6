package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparseRankSelect(t *testing.T) {
	s := New()
	positions := []uint64{2, 5, 5, 9, 100}
	for _, p := range positions {
		s.Set(p)
	}
	s.Freeze()

	assert.EqualValues(t, 4, s.Cardinality())

	got, ok := s.Select(0)
	require.True(t, ok)
	assert.EqualValues(t, 2, got)

	got, ok = s.Select(1)
	require.True(t, ok)
	assert.EqualValues(t, 5, got)

	got, ok = s.Select(3)
	require.True(t, ok)
	assert.EqualValues(t, 100, got)

	_, ok = s.Select(4)
	assert.False(t, ok)

	assert.EqualValues(t, 0, s.Rank(0))
	assert.EqualValues(t, 0, s.Rank(2))
	assert.EqualValues(t, 1, s.Rank(3))
	assert.EqualValues(t, 2, s.Rank(9))
	assert.EqualValues(t, 3, s.Rank(10))
	assert.EqualValues(t, 4, s.Rank(1000))
}

func TestSparseSetAfterFreezePanics(t *testing.T) {
	s := New()
	s.Set(1)
	s.Freeze()
	assert.Panics(t, func() { s.Set(2) })
}

func TestSparseMarshalRoundTrip(t *testing.T) {
	s := FromPositions([]uint64{0, 3, 7, 42})
	data, err := s.MarshalBinary()
	require.NoError(t, err)

	got := &Sparse{}
	require.NoError(t, got.UnmarshalBinary(data))

	assert.EqualValues(t, s.Cardinality(), got.Cardinality())
	for i, want := range []uint64{0, 3, 7, 42} {
		v, ok := got.Select(uint64(i))
		require.True(t, ok)
		assert.Equal(t, want, v)
	}
}
