package gbwt

import lru "github.com/hashicorp/golang-lru"

// Immutable is the read-only facade composed of a header, a record
// array, and a document-array sample store (spec section 4.8). It is
// produced once, by DynamicGBWT.Build, and never mutated afterwards:
// every query is safe for concurrent use by multiple goroutines without
// external synchronization (spec section 5).
type Immutable struct {
	header      Header
	records     *RecordArray
	samples     *SampleStore
	recordCache *lru.Cache
}

// ImmutableOption configures an Immutable index at build time.
type ImmutableOption func(*Immutable)

// WithRecordCache enables an LRU cache of decoded CompressedRecords,
// keyed by comp id, holding up to size entries. Hot nodes under
// repeated LF/At/TryLocate traffic skip re-parsing the record header
// (gap-decoded successors, offsets) on every call; a cache hit or miss
// never changes what a query returns, only how fast it answers, since
// the underlying record array is immutable (spec section 5).
func WithRecordCache(size int) ImmutableOption {
	return func(idx *Immutable) {
		cache, err := lru.New(size)
		if err != nil {
			return
		}
		idx.recordCache = cache
	}
}

// Build compresses the dynamic index's current mutable records into a
// finished, read-only Immutable index. Every touched record should
// already have been through Recode() (Insert does this at the end of
// each batch); Build recodes any record that has not, so a freshly
// built index is well-formed regardless.
func (d *DynamicGBWT) Build(opts ...ImmutableOption) *Immutable {
	encoded := make([][]byte, len(d.records))
	sampleInputs := make([]RecordSamples, len(d.records))

	for comp, rec := range d.records {
		rec.Recode()
		encoded[comp] = EncodeRecord(rec)
		sampleInputs[comp] = RecordSamples{
			Comp:    uint64(comp),
			Size:    rec.Size(),
			Samples: rec.Samples(),
		}
	}

	idx := &Immutable{
		header:  *d.header,
		records: BuildRecordArray(encoded),
		samples: BuildSampleStore(sampleInputs),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Header returns the index's header snapshot.
func (idx *Immutable) Header() Header { return idx.header }

// Contains reports whether v is a valid id for querying (spec section
// 6). Offset is always 0 in this implementation (see DESIGN.md).
func (idx *Immutable) Contains(v uint64) bool {
	return v == 0 || v < idx.header.AlphabetSize
}

// Record returns the compressed record for node id v, translating v to
// its comp id first (comp(v) = v, since offset is always 0). When a
// record cache is enabled (WithRecordCache), a hit skips re-decoding
// the record's outgoing-edge header entirely.
func (idx *Immutable) Record(v uint64) (*CompressedRecord, error) {
	if idx.recordCache != nil {
		if cached, ok := idx.recordCache.Get(v); ok {
			return cached.(*CompressedRecord), nil
		}
	}

	rec, err := idx.records.Record(v)
	if err != nil {
		return nil, err
	}
	if idx.recordCache != nil {
		idx.recordCache.Add(v, rec)
	}
	return rec, nil
}

// LF answers "which edge does the i-th occurrence at node v take", by
// delegating to v's compressed record (spec section 4.8).
func (idx *Immutable) LF(v uint64, i uint64) Edge {
	rec, err := idx.Record(v)
	if err != nil {
		return InvalidEdge
	}
	return rec.LF(i)
}

// LFTo restricts LF to a known destination node w, returning only w's
// resulting BWT offset.
func (idx *Immutable) LFTo(v uint64, i uint64, w uint64) uint64 {
	rec, err := idx.Record(v)
	if err != nil {
		return InvalidOffset
	}
	return rec.LFTo(i, w)
}

// At returns the successor visited by BWT row i of node v.
func (idx *Immutable) At(v uint64, i uint64) uint64 {
	rec, err := idx.Record(v)
	if err != nil {
		return EndMarker
	}
	return rec.At(i)
}

// TryLocate answers which sequence id, if any, was sampled at BWT
// offset i of node v (spec section 4.6), delegating to the sample
// store.
func (idx *Immutable) TryLocate(v uint64, i uint64) uint64 {
	return idx.samples.TryLocate(v, i)
}

// Extract reconstructs the original sequence whose endmarker occupies
// row i of the endmarker record, by repeatedly following LF until the
// endmarker is reached again. LF in this implementation walks forward
// along each inserted path (confirmed by scenario S2 in spec section
// 8: LF(0,0) reaches the first node of the sequence, not the last), so
// the walk already yields the sequence in its original order — see
// DESIGN.md for why this implementation departs from property 7's
// "reversed" framing.
func (idx *Immutable) Extract(endmarkerRow uint64) []uint64 {
	var sequence []uint64
	edge := idx.LF(EndMarker, endmarkerRow)
	for edge.IsValid() && edge.Node != EndMarker {
		sequence = append(sequence, edge.Node)
		edge = idx.LF(edge.Node, edge.Offset)
	}
	return sequence
}
