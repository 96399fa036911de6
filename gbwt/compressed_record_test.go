package gbwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMutable(t *testing.T, edges []uint64, rows []uint64) *MutableRecord {
	t.Helper()
	r := NewMutableRecord()
	ranks := make(map[uint64]int)
	for _, v := range edges {
		ranks[v] = r.EnsureOutgoing(v)
	}
	r.Recode()
	for _, v := range edges {
		ranks[v] = r.EdgeTo(v)
	}
	for _, v := range rows {
		r.InsertRun(r.Size(), ranks[v])
	}
	return r
}

func TestCompressedRecordRoundTripsAgainstMutable(t *testing.T) {
	mutable := buildMutable(t, []uint64{2, 5, 9}, []uint64{5, 5, 2, 9, 5})
	mutable.SetOffset(mutable.EdgeTo(2), 100)
	mutable.SetOffset(mutable.EdgeTo(5), 200)
	mutable.SetOffset(mutable.EdgeTo(9), 300)

	data := EncodeRecord(mutable)
	compressed := NewCompressedRecord(data)

	require.Equal(t, mutable.Outdegree(), compressed.Outdegree())
	assert.Equal(t, mutable.Size(), compressed.Size())
	assert.Equal(t, mutable.Runs(), compressed.Runs())

	for i := uint64(0); i < mutable.Size(); i++ {
		assert.Equalf(t, mutable.At(i), compressed.At(i), "row %d", i)
	}
	for _, v := range []uint64{2, 5, 9} {
		for i := uint64(0); i < mutable.Size(); i++ {
			assert.Equal(t, mutable.LFTo(i, v), compressed.LFTo(i, v))
		}
	}
}

// TestCompressedRecordLFRangeMatchesLFToEndpoints exercises spec section
// 8 property 10 against the compressed record, mirroring the mutable
// record's coverage of the same property.
func TestCompressedRecordLFRangeMatchesLFToEndpoints(t *testing.T) {
	mutable := buildMutable(t, []uint64{2, 5, 9}, []uint64{5, 5, 2, 9, 5})
	mutable.SetOffset(mutable.EdgeTo(2), 100)
	mutable.SetOffset(mutable.EdgeTo(5), 200)
	mutable.SetOffset(mutable.EdgeTo(9), 300)

	compressed := NewCompressedRecord(EncodeRecord(mutable))

	for _, v := range []uint64{2, 5, 9} {
		rng := Range{Start: 1, End: mutable.Size()}
		got := compressed.LFRange(rng, v)
		want := Range{Start: compressed.LFTo(rng.Start, v), End: compressed.LFTo(rng.End, v)}
		assert.Equal(t, want, got)
	}
}

func TestCompressedRecordLFRangeEmptyForUnknownSuccessor(t *testing.T) {
	mutable := buildMutable(t, []uint64{2}, []uint64{2})
	compressed := NewCompressedRecord(EncodeRecord(mutable))

	assert.Equal(t, EmptyRange, compressed.LFRange(Range{Start: 0, End: 1}, 99))
}

// TestEncodeRecordInterleavesGapAndOffset pins the on-disk edge header
// to spec section 6's documented layout — one (gap, offset) pair per
// edge — by decoding the raw bytes independently of
// NewCompressedRecord, so a regression back to "every gap, then every
// offset" fails even though that layout would still round-trip against
// itself.
func TestEncodeRecordInterleavesGapAndOffset(t *testing.T) {
	r := NewMutableRecord()
	rank2 := r.EnsureOutgoing(2)
	rank9 := r.EnsureOutgoing(9)
	r.SetOffset(rank2, 100)
	r.SetOffset(rank9, 300)
	r.InsertRun(0, rank2)

	data := EncodeRecord(r)

	pos := 0
	require.Equal(t, uint64(2), readVarint(data, &pos))
	require.Equal(t, uint64(2), readVarint(data, &pos), "first edge's gap")
	require.Equal(t, uint64(100), readVarint(data, &pos), "first edge's own offset, right after its gap")
	require.Equal(t, uint64(7), readVarint(data, &pos), "second edge's gap (9-2)")
	require.Equal(t, uint64(300), readVarint(data, &pos), "second edge's own offset, right after its gap")
}

func TestCompressedRecordEmptyOutdegree(t *testing.T) {
	mutable := NewMutableRecord()
	data := EncodeRecord(mutable)
	compressed := NewCompressedRecord(data)

	assert.True(t, compressed.Empty())
	assert.Equal(t, uint64(0), compressed.Size())
	assert.Equal(t, EndMarker, compressed.At(0))
}
