package gbwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeReproducesSourceSequences(t *testing.T) {
	source := NewDynamicGBWT(WithSampleInterval(1))
	source.Insert([]uint64{1, 3, 5, 0, 2, 4, 0}, 0)
	built := source.Build()

	dest := NewDynamicGBWT(WithSampleInterval(1))
	dest.Merge(built, 0)

	require.Equal(t, uint64(2), dest.Sequences())
	merged := dest.Build()

	var extracted [][]uint64
	for row := uint64(0); row < 2; row++ {
		extracted = append(extracted, merged.Extract(row))
	}
	assert.Contains(t, extracted, []uint64{1, 3, 5})
	assert.Contains(t, extracted, []uint64{2, 4})
}

func TestMergeIntoNonEmptyIndexAppendsSequences(t *testing.T) {
	dest := NewDynamicGBWT(WithSampleInterval(1))
	dest.Insert([]uint64{1, 3, 5, 0}, 0)

	source := NewDynamicGBWT(WithSampleInterval(1))
	source.Insert([]uint64{2, 4, 0}, 0)
	built := source.Build()

	dest.Merge(built, 0)
	require.Equal(t, uint64(2), dest.Sequences())

	merged := dest.Build()
	seen := map[uint64]bool{}
	for row := uint64(0); row < 2; row++ {
		seq := merged.Extract(row)
		if len(seq) > 0 {
			seen[seq[0]] = true
		}
	}
	assert.True(t, seen[1])
	assert.True(t, seen[2])
}

func TestMergeRespectsBatchSize(t *testing.T) {
	source := NewDynamicGBWT(WithSampleInterval(1))
	source.Insert([]uint64{1, 0, 2, 0, 3, 0}, 0)
	built := source.Build()

	dest := NewDynamicGBWT(WithSampleInterval(1))
	dest.Merge(built, 1)

	assert.Equal(t, uint64(3), dest.Sequences())
}
