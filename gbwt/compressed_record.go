package gbwt

// CompressedRecord is the immutable, byte-compressed view of a record
// produced once construction finishes: a decoded outgoing-edge list
// (gap-encoded successors, variable-byte offsets) followed by the raw
// run-encoded body bytes, read lazily rather than expanded into a []Run
// up front. Mirrors CompressedRecord in the source library.
type CompressedRecord struct {
	outgoing []Edge
	body     []byte
}

// NewCompressedRecord decodes a record's outgoing-edge header from data
// and keeps the remaining bytes as the run-encoded body, read on demand
// by the shared iterator functions.
func NewCompressedRecord(data []byte) *CompressedRecord {
	pos := 0
	outdegree := int(readVarint(data, &pos))
	outgoing := make([]Edge, outdegree)

	var prev uint64
	for i := 0; i < outdegree; i++ {
		gap := readVarint(data, &pos)
		if i == 0 {
			prev = gap
		} else {
			prev += gap
		}
		outgoing[i].Node = prev
		outgoing[i].Offset = readVarint(data, &pos)
	}

	return &CompressedRecord{outgoing: outgoing, body: data[pos:]}
}

// EncodeRecord serializes a mutable record's outgoing edges and run
// body into the byte layout NewCompressedRecord expects: outdegree,
// then one (gap, offset) pair per edge — the gap-encoded successor id
// interleaved with that edge's own offset, not a block of gaps
// followed by a block of offsets — then the run stream. r must already
// be sorted (see MutableRecord.Recode).
func EncodeRecord(r *MutableRecord) []byte {
	buf := appendVarint(nil, uint64(r.Outdegree()))

	var prev uint64
	for i := 0; i < r.Outdegree(); i++ {
		v := r.Successor(i)
		if i == 0 {
			buf = appendVarint(buf, v)
		} else {
			buf = appendVarint(buf, v-prev)
		}
		prev = v
		buf = appendVarint(buf, r.Offset(i))
	}

	sigma := uint64(r.Outdegree())
	if sigma == 0 {
		sigma = 1
	}
	for _, run := range r.body {
		buf = appendRun(buf, run, sigma)
	}
	return buf
}

func (c *CompressedRecord) source() runSource {
	pos := 0
	sigma := uint64(len(c.outgoing))
	if sigma == 0 {
		sigma = 1
	}
	return func() (Run, bool) {
		if pos >= len(c.body) {
			return Run{}, false
		}
		return readRun(c.body, &pos, sigma), true
	}
}

func (c *CompressedRecord) Size() uint64   { return recordSize(c.source()) }
func (c *CompressedRecord) Empty() bool    { return len(c.outgoing) == 0 && len(c.body) == 0 }
func (c *CompressedRecord) Runs() int      { return recordRuns(c.source()) }
func (c *CompressedRecord) Outdegree() int { return len(c.outgoing) }

// Indegree and the predecessor accessors are not stored in the
// compressed body — incoming-edge bookkeeping is a construction-time
// concern of MutableRecord; CompressedRecord only ever answers 0 for
// these, the same sentinel-value treatment spec section 7 requires for
// every other precondition violation in this package (never a panic).
func (c *CompressedRecord) Indegree() int            { return 0 }
func (c *CompressedRecord) Predecessor(i int) uint64 { return 0 }
func (c *CompressedRecord) Count(i int) uint64       { return 0 }
func (c *CompressedRecord) FindFirst(u uint64) int   { return 0 }

func (c *CompressedRecord) Successor(r int) uint64 { return c.outgoing[r].Node }
func (c *CompressedRecord) Offset(r int) uint64    { return c.outgoing[r].Offset }

func (c *CompressedRecord) EdgeTo(v uint64) int {
	for i, e := range c.outgoing {
		if e.Node == v {
			return i
		}
	}
	return len(c.outgoing)
}

func (c *CompressedRecord) At(i uint64) uint64 {
	return recordAt(i, c.outgoing, c.source())
}

func (c *CompressedRecord) LF(i uint64) Edge {
	return recordLF(i, c.outgoing, c.source())
}

func (c *CompressedRecord) LFTo(i uint64, v uint64) uint64 {
	outrank := c.EdgeTo(v)
	if outrank >= len(c.outgoing) {
		return InvalidOffset
	}
	return recordLFTo(i, outrank, c.outgoing[outrank].Offset, c.source())
}

func (c *CompressedRecord) LFRange(r Range, v uint64) Range {
	outrank := c.EdgeTo(v)
	if outrank >= len(c.outgoing) {
		return EmptyRange
	}
	return recordLFRange(r, outrank, c.outgoing[outrank].Offset, c.source())
}

var _ Record = (*CompressedRecord)(nil)
