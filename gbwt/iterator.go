package gbwt

// The mutable and compressed record types share the exact same LF /
// operator[] / ranged-LF algorithms; only how they produce the next Run
// differs (a plain slice walk for MutableRecord, a byte-cursor decode for
// CompressedRecord). Rather than duplicate the three iterator flavors the
// source keeps (bare, full, rank — spec section 4.4 and the "Iterator
// duplication" design note in section 9), both record types drive these
// free functions through a single runSource callback, consolidating the
// walk into one place.

// runSource yields the body's runs in order. ok is false once the body is
// exhausted.
type runSource func() (run Run, ok bool)

// recordSize sums every run's length.
func recordSize(source runSource) uint64 {
	var total uint64
	for {
		run, ok := source()
		if !ok {
			return total
		}
		total += run.Length
	}
}

// recordRuns counts the runs in the body.
func recordRuns(source runSource) int {
	var n int
	for {
		_, ok := source()
		if !ok {
			return n
		}
		n++
	}
}

// recordAt implements operator[]: the successor visited by BWT row i, or
// the endmarker if i is beyond the record's rows.
func recordAt(i uint64, outgoing []Edge, source runSource) uint64 {
	var cum uint64
	for {
		run, ok := source()
		if !ok {
			return EndMarker
		}
		cum += run.Length
		if cum > i {
			return outgoing[run.Outrank].Node
		}
	}
}

// recordLF implements LF(i): the outgoing edge reached by the i-th
// occurrence, translated directly from DynamicRecord::LF in the source
// library — walk the body accumulating, per outrank, the total run
// length seen so far (starting from that edge's own stored offset), then
// correct the winning outrank's total back down to row i once its run is
// found.
func recordLF(i uint64, outgoing []Edge, source runSource) Edge {
	if len(outgoing) == 0 {
		return InvalidEdge
	}

	acc := make([]uint64, len(outgoing))
	for r, e := range outgoing {
		acc[r] = e.Offset
	}
	var cum uint64
	lastOutrank := -1

	for {
		run, ok := source()
		if !ok {
			return InvalidEdge
		}
		lastOutrank = int(run.Outrank)
		acc[run.Outrank] += run.Length
		cum += run.Length
		if cum > i {
			break
		}
	}

	return Edge{
		Node:   outgoing[lastOutrank].Node,
		Offset: acc[lastOutrank] - (cum - i),
	}
}

// recordLFTo implements LF(i, to): only the destination offset of the
// i-th occurrence, assuming (or hypothesizing) that occurrence's
// successor is the node at outrank `outrank`, whose base offset is
// `base`. Mirrors DynamicRecord::LF(size_type, node_type) — note that,
// unlike recordLF, this never returns an explicit "out of range"
// sentinel: if i is beyond the record's size, the accumulated total
// count for `outrank` is returned as-is, matching the source exactly.
func recordLFTo(i uint64, outrank int, base uint64, source runSource) uint64 {
	result := base
	var cum uint64
	for {
		run, ok := source()
		if !ok {
			return result
		}
		if int(run.Outrank) == outrank {
			result += run.Length
		}
		cum += run.Length
		if cum >= i {
			if int(run.Outrank) == outrank {
				result -= cum - i
			}
			return result
		}
	}
}

// recordLFRange implements the ranged LF: a single two-pointer walk
// across the body resolving both endpoints of r for occurrences of the
// node at outrank `outrank` (base offset `base`). Mirrors
// DynamicRecord::LF(range_type, node_type).
func recordLFRange(r Range, outrank int, base uint64, source runSource) Range {
	if r.Empty() {
		return EmptyRange
	}

	run, ok := source()
	if !ok {
		return EmptyRange
	}

	result := base
	if int(run.Outrank) == outrank {
		result += run.Length
	}
	offset := run.Length

	for offset < r.Start {
		next, ok := source()
		if !ok {
			break
		}
		run = next
		if int(run.Outrank) == outrank {
			result += run.Length
		}
		offset += run.Length
	}
	start := result
	if int(run.Outrank) == outrank {
		start = result - (offset - r.Start)
	}

	for offset < r.End {
		next, ok := source()
		if !ok {
			break
		}
		run = next
		if int(run.Outrank) == outrank {
			result += run.Length
		}
		offset += run.Length
	}
	end := result
	if int(run.Outrank) == outrank {
		end = result - (offset - r.End)
	}

	return Range{Start: start, End: end}
}
