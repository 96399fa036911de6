package gbwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeSimpleRecord(t *testing.T, successors ...uint64) []byte {
	t.Helper()
	r := NewMutableRecord()
	for _, v := range successors {
		rank := r.EnsureOutgoing(v)
		r.InsertRun(r.Size(), rank)
	}
	r.Recode()
	return EncodeRecord(r)
}

func TestRecordArrayBuildAndLookup(t *testing.T) {
	records := [][]byte{
		encodeSimpleRecord(t, 1, 2),
		encodeSimpleRecord(t),
		encodeSimpleRecord(t, 3),
	}

	arr := BuildRecordArray(records)
	require.Equal(t, 3, arr.Size())

	rec0, err := arr.Record(0)
	require.NoError(t, err)
	assert.Equal(t, 2, rec0.Outdegree())

	rec1, err := arr.Record(1)
	require.NoError(t, err)
	assert.True(t, rec1.Empty())

	rec2, err := arr.Record(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), rec2.Successor(0))
}

func TestRecordArrayOutOfRangeErrors(t *testing.T) {
	arr := BuildRecordArray([][]byte{encodeSimpleRecord(t, 1)})
	_, err := arr.Record(5)
	assert.Error(t, err)
}

func TestRecordArrayMarshalRoundTrip(t *testing.T) {
	records := [][]byte{
		encodeSimpleRecord(t, 4, 5),
		encodeSimpleRecord(t, 6),
	}
	arr := BuildRecordArray(records)

	data, err := arr.MarshalBinary()
	require.NoError(t, err)

	got := &RecordArray{}
	require.NoError(t, got.UnmarshalBinary(data))
	require.Equal(t, arr.Size(), got.Size())

	rec, err := got.Record(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), rec.Successor(0))
}
