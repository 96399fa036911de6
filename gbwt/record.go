package gbwt

// Record is the query surface shared by MutableRecord (used during
// construction) and CompressedRecord (the read-only, byte-compressed
// view used after a build). Spec section 9 calls this out explicitly:
// "the natural abstraction is a capability set 'record query' with two
// concrete variants; higher layers are polymorphic over this set."
type Record interface {
	// Size returns the total number of BWT rows at this node — the sum
	// of all run lengths, equivalently the sum of all incoming counts.
	Size() uint64

	// Empty reports whether the record has no traversals at all.
	Empty() bool

	// Runs returns the number of runs in the body. Requires a full scan
	// for CompressedRecord.
	Runs() int

	// Outdegree returns the number of distinct successors.
	Outdegree() int

	// Indegree returns the number of distinct predecessors.
	Indegree() int

	// Successor returns the destination node of outgoing edge r.
	Successor(r int) uint64

	// Offset returns the cumulative starting BWT offset of outgoing
	// edge r in its destination record.
	Offset(r int) uint64

	// EdgeTo returns the outrank of the edge to v, or Outdegree() if v
	// is not among this record's successors.
	EdgeTo(v uint64) int

	// Predecessor returns the node of incoming edge i.
	Predecessor(i int) uint64

	// Count returns the traversal count of incoming edge i.
	Count(i int) uint64

	// FindFirst returns the smallest incoming-edge index i with
	// Predecessor(i) >= u, or Indegree() if none exists.
	FindFirst(u uint64) int

	// At returns the successor at BWT row i (operator[] in the source),
	// or the endmarker if i >= Size().
	At(i uint64) uint64

	// LF returns the outgoing edge reached by the i-th occurrence at
	// this record: the successor and the BWT offset it maps to. Returns
	// InvalidEdge if i is out of range.
	LF(i uint64) Edge

	// LFTo returns only the destination offset of the i-th occurrence,
	// given that its successor is known to be v. Returns InvalidOffset
	// if v is not a successor; for i >= Size() it returns v's base
	// offset plus the total number of occurrences of v in the body.
	LFTo(i uint64, v uint64) uint64

	// LFRange extends LF/LFTo to a range: the image, under LF, of the
	// occurrences of v within r. Returns EmptyRange if v is not a
	// successor, r is empty, or the body has no runs; when v is a
	// successor with no occurrence inside r, the result has
	// Start == End rather than being the EmptyRange sentinel.
	LFRange(r Range, v uint64) Range
}
