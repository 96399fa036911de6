package gbwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRecordCacheReturnsSameResultsAsUncached(t *testing.T) {
	d := NewDynamicGBWT()
	d.Insert([]uint64{3, 5, 0, 3, 7, 0}, 0)

	plain := d.Build()
	cached := d.Build(WithRecordCache(8))

	rec3, err := plain.Record(3)
	require.NoError(t, err)
	cachedRec3, err := cached.Record(3)
	require.NoError(t, err)
	assert.Equal(t, rec3.Outdegree(), cachedRec3.Outdegree())

	// Second lookup exercises the cache hit path; result must be
	// identical to the first.
	cachedRec3Again, err := cached.Record(3)
	require.NoError(t, err)
	assert.Same(t, cachedRec3, cachedRec3Again)

	assert.Equal(t, plain.LF(3, 0), cached.LF(3, 0))
	assert.Equal(t, plain.LF(3, 1), cached.LF(3, 1))
}

func TestRecodeTouchedSortsEveryRecordAboveThreshold(t *testing.T) {
	records := make([]*MutableRecord, 0, parallelRecodeThreshold+5)
	for i := 0; i < parallelRecodeThreshold+5; i++ {
		r := NewMutableRecord()
		rank := r.EnsureOutgoing(uint64(i%3) + 1)
		r.InsertRun(0, rank)
		records = append(records, r)
	}

	recodeTouched(records)

	for _, r := range records {
		assert.True(t, r.Sorted())
	}
}
