package gbwt

import "sort"

// IncomingEdge is a (predecessor, count) pair: how many times
// predecessor -> this node is traversed across all inserted sequences.
type IncomingEdge struct {
	Predecessor uint64
	Count       uint64
}

// Sample is a (position, sequence) pair recording which inserted
// sequence occupies a given BWT row of a record.
type Sample struct {
	Offset   uint64
	Sequence uint64
}

// MutableRecord is the per-node BWT record used during construction: an
// unsorted outgoing-edge list, a sorted incoming-edge list, and a
// run-encoded body kept as a plain slice of runs rather than compressed
// bytes. It implements Record so higher layers stay polymorphic over
// mutable and compressed records alike (spec section 9).
type MutableRecord struct {
	outgoing []Edge
	incoming []IncomingEdge
	body     []Run
	samples  []Sample
	sorted   bool // whether outgoing is currently sorted by successor
}

// NewMutableRecord returns an empty record.
func NewMutableRecord() *MutableRecord {
	return &MutableRecord{sorted: true}
}

func (r *MutableRecord) source() runSource {
	i := 0
	return func() (Run, bool) {
		if i >= len(r.body) {
			return Run{}, false
		}
		run := r.body[i]
		i++
		return run, true
	}
}

func (r *MutableRecord) Size() uint64  { return recordSize(r.source()) }
func (r *MutableRecord) Empty() bool   { return len(r.outgoing) == 0 && len(r.body) == 0 }
func (r *MutableRecord) Runs() int     { return len(r.body) }
func (r *MutableRecord) Outdegree() int { return len(r.outgoing) }
func (r *MutableRecord) Indegree() int { return len(r.incoming) }

func (r *MutableRecord) Successor(rank int) uint64 { return r.outgoing[rank].Node }
func (r *MutableRecord) Offset(rank int) uint64    { return r.outgoing[rank].Offset }

func (r *MutableRecord) SetOffset(rank int, offset uint64) {
	r.outgoing[rank].Offset = offset
}

func (r *MutableRecord) EdgeTo(v uint64) int {
	for i, e := range r.outgoing {
		if e.Node == v {
			return i
		}
	}
	return len(r.outgoing)
}

func (r *MutableRecord) Predecessor(i int) uint64 { return r.incoming[i].Predecessor }
func (r *MutableRecord) Count(i int) uint64       { return r.incoming[i].Count }

func (r *MutableRecord) FindFirst(u uint64) int {
	return sort.Search(len(r.incoming), func(i int) bool {
		return r.incoming[i].Predecessor >= u
	})
}

// Incoming returns the record's incoming-edge list, sorted by
// predecessor id. Callers must not mutate the returned slice.
func (r *MutableRecord) Incoming() []IncomingEdge { return r.incoming }

// Increment raises the incoming count for predecessor u by one,
// creating the entry (and re-sorting) if u is not yet a predecessor.
// Mirrors DynamicRecord::increment/addIncoming in the source library.
func (r *MutableRecord) Increment(u uint64) {
	for i := range r.incoming {
		if r.incoming[i].Predecessor == u {
			r.incoming[i].Count++
			return
		}
	}
	r.incoming = append(r.incoming, IncomingEdge{Predecessor: u, Count: 1})
	sort.Slice(r.incoming, func(i, j int) bool {
		return r.incoming[i].Predecessor < r.incoming[j].Predecessor
	})
}

// EnsureOutgoing returns the outrank of the edge to v, appending a new
// edge at the end of the outgoing list if one does not already exist.
// The new edge's offset is left at 0; the caller is responsible for
// setting it to the destination record's current size before any row
// is inserted against it (see insertSequence), since that size is only
// known to the caller, not to this record. The list is intentionally
// left unsorted during construction: only recode() sorts it, matching
// DynamicRecord's own deferred-sort design.
func (r *MutableRecord) EnsureOutgoing(v uint64) int {
	if outrank := r.EdgeTo(v); outrank < len(r.outgoing) {
		return outrank
	}
	r.outgoing = append(r.outgoing, Edge{Node: v, Offset: 0})
	r.sorted = false
	return len(r.outgoing) - 1
}

// InsertRun inserts one occurrence of outrank at BWT row p, merging with
// an adjacent run of the same outrank when possible and shifting every
// recorded sample at or after p by one row.
func (r *MutableRecord) InsertRun(p uint64, outrank int) {
	r.shiftSamples(p)

	var cum uint64
	for idx := range r.body {
		run := &r.body[idx]
		if p <= cum+run.Length {
			within := p - cum
			if run.Outrank == uint64(outrank) {
				run.Length++
				return
			}
			if within == 0 {
				if idx > 0 && r.body[idx-1].Outrank == uint64(outrank) {
					r.body[idx-1].Length++
					return
				}
				r.insertRunAt(idx, Run{Outrank: uint64(outrank), Length: 1})
				return
			}
			if within == run.Length {
				if idx+1 < len(r.body) && r.body[idx+1].Outrank == uint64(outrank) {
					r.body[idx+1].Length++
					return
				}
				r.insertRunAt(idx+1, Run{Outrank: uint64(outrank), Length: 1})
				return
			}

			left := Run{Outrank: run.Outrank, Length: within}
			right := Run{Outrank: run.Outrank, Length: run.Length - within}
			newBody := make([]Run, 0, len(r.body)+2)
			newBody = append(newBody, r.body[:idx]...)
			newBody = append(newBody, left, Run{Outrank: uint64(outrank), Length: 1}, right)
			newBody = append(newBody, r.body[idx+1:]...)
			r.body = newBody
			return
		}
		cum += run.Length
	}

	r.body = append(r.body, Run{Outrank: uint64(outrank), Length: 1})
}

func (r *MutableRecord) insertRunAt(idx int, run Run) {
	r.body = append(r.body, Run{})
	copy(r.body[idx+1:], r.body[idx:])
	r.body[idx] = run
}

// shiftSamples bumps every sample at row >= p up by one, since a new row
// is about to be inserted at p.
func (r *MutableRecord) shiftSamples(p uint64) {
	for i := range r.samples {
		if r.samples[i].Offset >= p {
			r.samples[i].Offset++
		}
	}
}

// AddSample records that BWT row p of this record belongs to sequence
// id, after any pending shift from InsertRun has already been applied
// (callers add the sample immediately after the InsertRun call that
// created row p).
func (r *MutableRecord) AddSample(p, sequence uint64) {
	r.samples = append(r.samples, Sample{Offset: p, Sequence: sequence})
}

// Samples returns the record's accumulated samples.
func (r *MutableRecord) Samples() []Sample { return r.samples }

func (r *MutableRecord) At(i uint64) uint64 {
	return recordAt(i, r.outgoing, r.source())
}

func (r *MutableRecord) LF(i uint64) Edge {
	return recordLF(i, r.outgoing, r.source())
}

func (r *MutableRecord) LFTo(i uint64, v uint64) uint64 {
	outrank := r.EdgeTo(v)
	if outrank >= len(r.outgoing) {
		return InvalidOffset
	}
	return recordLFTo(i, outrank, r.outgoing[outrank].Offset, r.source())
}

func (r *MutableRecord) LFRange(rng Range, v uint64) Range {
	outrank := r.EdgeTo(v)
	if outrank >= len(r.outgoing) {
		return EmptyRange
	}
	return recordLFRange(rng, outrank, r.outgoing[outrank].Offset, r.source())
}

// Recode sorts the outgoing list by successor id and rewrites every run's
// outrank to match, coalescing adjacent runs that end up sharing an
// outrank. A record that is already sorted is left untouched, so a
// second call is a no-op (spec section 8, property 8). Sorting only
// permutes the outgoing list; each edge's Offset travels with it and is
// never recomputed here (see insertSequence for how offsets are set).
func (r *MutableRecord) Recode() {
	if r.sorted || r.Empty() {
		r.sorted = true
		return
	}

	type indexed struct {
		edge     Edge
		oldRank  int
	}
	perm := make([]indexed, len(r.outgoing))
	for i, e := range r.outgoing {
		perm[i] = indexed{edge: e, oldRank: i}
	}
	sort.Slice(perm, func(i, j int) bool {
		return perm[i].edge.Node < perm[j].edge.Node
	})

	oldToNew := make([]int, len(r.outgoing))
	newOutgoing := make([]Edge, len(r.outgoing))
	for newRank, p := range perm {
		oldToNew[p.oldRank] = newRank
		newOutgoing[newRank] = p.edge
	}
	r.outgoing = newOutgoing

	for i := range r.body {
		r.body[i].Outrank = uint64(oldToNew[r.body[i].Outrank])
	}
	r.coalesce()
	r.sorted = true
}

// coalesce merges adjacent runs that share an outrank, restoring
// invariant 4 (spec section 3) after Recode rewrites outranks.
func (r *MutableRecord) coalesce() {
	if len(r.body) < 2 {
		return
	}
	out := r.body[:1]
	for _, run := range r.body[1:] {
		last := &out[len(out)-1]
		if last.Outrank == run.Outrank {
			last.Length += run.Length
			continue
		}
		out = append(out, run)
	}
	r.body = out
}

// Sorted reports whether the outgoing list is currently sorted by
// successor id.
func (r *MutableRecord) Sorted() bool { return r.sorted }

var _ Record = (*MutableRecord)(nil)
