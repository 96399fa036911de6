package gbwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutableRecordEnsureOutgoingIsIdempotent(t *testing.T) {
	r := NewMutableRecord()
	first := r.EnsureOutgoing(5)
	second := r.EnsureOutgoing(5)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.Outdegree())
}

func TestMutableRecordInsertRunMergesAdjacent(t *testing.T) {
	r := NewMutableRecord()
	rank := r.EnsureOutgoing(3)
	r.InsertRun(0, rank)
	r.InsertRun(1, rank)
	r.InsertRun(2, rank)

	assert.Equal(t, 1, r.Runs())
	assert.Equal(t, uint64(3), r.Size())
}

func TestMutableRecordInsertRunSplitsMiddle(t *testing.T) {
	r := NewMutableRecord()
	a := r.EnsureOutgoing(1)
	b := r.EnsureOutgoing(2)

	r.InsertRun(0, a)
	r.InsertRun(1, a)
	r.InsertRun(2, a) // body: [a x3]
	r.InsertRun(1, b) // splits: [a, b, a]

	assert.Equal(t, 3, r.Runs())
	assert.Equal(t, uint64(4), r.Size())
	assert.Equal(t, uint64(1), r.At(0))
	assert.Equal(t, uint64(2), r.At(1))
	assert.Equal(t, uint64(1), r.At(2))
	assert.Equal(t, uint64(1), r.At(3))
}

func TestMutableRecordShiftSamplesOnInsert(t *testing.T) {
	r := NewMutableRecord()
	rank := r.EnsureOutgoing(9)
	r.InsertRun(0, rank)
	r.AddSample(0, 42)

	r.InsertRun(0, rank) // new row pushes the old row 0 sample to row 1
	assert.Equal(t, uint64(1), r.Samples()[0].Offset)
}

func TestMutableRecordIncrementSortsPredecessors(t *testing.T) {
	r := NewMutableRecord()
	r.Increment(7)
	r.Increment(3)
	r.Increment(7)

	assert.Equal(t, 2, r.Indegree())
	assert.Equal(t, uint64(3), r.Predecessor(0))
	assert.Equal(t, uint64(7), r.Predecessor(1))
	assert.Equal(t, uint64(2), r.Count(1))
}

func TestMutableRecordRecodeSortsOutgoingAndFixesRuns(t *testing.T) {
	r := NewMutableRecord()
	rankHigh := r.EnsureOutgoing(9)
	rankLow := r.EnsureOutgoing(2)
	r.InsertRun(0, rankHigh)
	r.InsertRun(1, rankLow)

	r.Recode()

	assert.True(t, r.Sorted())
	assert.Equal(t, uint64(2), r.Successor(0))
	assert.Equal(t, uint64(9), r.Successor(1))
	assert.Equal(t, uint64(9), r.At(0))
	assert.Equal(t, uint64(2), r.At(1))
}

func TestMutableRecordLFRoundTripsThroughIterator(t *testing.T) {
	r := NewMutableRecord()
	rank := r.EnsureOutgoing(4)
	r.SetOffset(rank, 10)
	r.InsertRun(0, rank)
	r.InsertRun(1, rank)

	edge := r.LF(1)
	assert.Equal(t, uint64(4), edge.Node)
	assert.Equal(t, uint64(11), edge.Offset)
}

func TestMutableRecordLFToUnknownSuccessorIsInvalid(t *testing.T) {
	r := NewMutableRecord()
	rank := r.EnsureOutgoing(4)
	r.InsertRun(0, rank)

	assert.Equal(t, InvalidOffset, r.LFTo(0, 99))
}

// TestMutableRecordLFRangeMatchesLFToEndpoints exercises spec section 8
// property 10: LF(v, [a,b], w) == [LF(v, a, w), LF(v, b, w)].
func TestMutableRecordLFRangeMatchesLFToEndpoints(t *testing.T) {
	r := NewMutableRecord()
	rank4 := r.EnsureOutgoing(4)
	rank9 := r.EnsureOutgoing(9)
	r.SetOffset(rank4, 100)
	r.SetOffset(rank9, 0)

	for _, succ := range []uint64{4, 4, 9, 4, 4, 9} {
		rank := rank4
		if succ == 9 {
			rank = rank9
		}
		r.InsertRun(r.Size(), rank)
	}

	rng := Range{Start: 1, End: 4}
	got := r.LFRange(rng, 4)
	want := Range{Start: r.LFTo(rng.Start, 4), End: r.LFTo(rng.End, 4)}
	assert.Equal(t, want, got)

	full := Range{Start: 0, End: r.Size()}
	gotFull := r.LFRange(full, 9)
	wantFull := Range{Start: r.LFTo(full.Start, 9), End: r.LFTo(full.End, 9)}
	assert.Equal(t, wantFull, gotFull)
}

func TestMutableRecordLFRangeEmptyForUnknownSuccessor(t *testing.T) {
	r := NewMutableRecord()
	rank := r.EnsureOutgoing(4)
	r.InsertRun(0, rank)

	assert.Equal(t, EmptyRange, r.LFRange(Range{Start: 0, End: 1}, 99))
}

func TestMutableRecordLFRangeEmptyForEmptyInputRange(t *testing.T) {
	r := NewMutableRecord()
	rank := r.EnsureOutgoing(4)
	r.InsertRun(0, rank)

	assert.Equal(t, EmptyRange, r.LFRange(Range{Start: 3, End: 1}, 4))
}
