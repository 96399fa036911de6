// Package bitmap is the sparse bit-vector collaborator spec section 9
// treats as an abstract external library: "a sparse bitmap with
// select/rank". This module never reimplements succinct rank/select from
// scratch (that primitive is explicitly out of scope, spec section 1) —
// instead it layers rank/select over a real roaring bitmap, the same
// dependency the teacher storage engine uses for its own sparse sets
// (adapters/repos/db/roaringset).
package bitmap

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/weaviate/sroar"
)

// Sparse is a sparse bit vector supporting membership, rank, and select.
// It has two phases: while mutable, only Set/Get/Cardinality are valid;
// after Freeze it additionally supports Rank and Select in O(log n) via
// a snapshot of the set-bit positions, mirroring how the record array and
// DA-sample store build their select support once, after construction,
// and never mutate it again (spec sections 4.5, 4.6, 9).
type Sparse struct {
	bits   *sroar.Bitmap
	frozen []uint64 // sorted set-bit positions, valid once non-nil
}

// New returns an empty, mutable sparse bit vector.
func New() *Sparse {
	return &Sparse{bits: sroar.NewBitmap()}
}

// FromPositions returns a frozen sparse bit vector with exactly the given
// bits set.
func FromPositions(positions []uint64) *Sparse {
	bits := sroar.NewBitmap()
	for _, p := range positions {
		bits.Set(p)
	}
	s := &Sparse{bits: bits}
	s.Freeze()
	return s
}

// Set marks position i. Panics if the bit vector has already been frozen:
// the compressed structures built on top of Sparse never mutate after
// their one build pass.
func (s *Sparse) Set(i uint64) {
	if s.frozen != nil {
		panic("bitmap: Set called on a frozen Sparse")
	}
	s.bits.Set(i)
}

// Get reports whether bit i is set.
func (s *Sparse) Get(i uint64) bool {
	return s.bits.Contains(i)
}

// Cardinality returns the number of set bits.
func (s *Sparse) Cardinality() uint64 {
	return uint64(s.bits.GetCardinality())
}

// Freeze snapshots the current set bits into the rank/select support. It
// is idempotent: calling it again just re-takes the snapshot, which is
// only useful if the caller mutated bits before the first freeze (Set
// panics afterwards, so in practice Freeze is called exactly once).
func (s *Sparse) Freeze() {
	s.frozen = s.bits.ToArray()
}

// frozenPositions returns the select-support snapshot, panicking if the
// bit vector was never frozen — every rank/select caller in this module
// works over immutable, already-frozen structures.
func (s *Sparse) frozenPositions() []uint64 {
	if s.frozen == nil {
		panic("bitmap: Rank/Select called before Freeze")
	}
	return s.frozen
}

// Rank returns the number of set bits at positions strictly less than i,
// i.e. rank_1(i) in the usual succinct-bitvector sense.
func (s *Sparse) Rank(i uint64) uint64 {
	positions := s.frozenPositions()
	return uint64(sort.Search(len(positions), func(k int) bool {
		return positions[k] >= i
	}))
}

// Select returns the position of the (k+1)-th set bit, 0-indexed by rank,
// and true — or (0, false) if fewer than k+1 bits are set. This matches
// the record array's use of select(comp(v)+1) to find a record's start
// offset (spec section 4.5).
func (s *Sparse) Select(k uint64) (uint64, bool) {
	positions := s.frozenPositions()
	if k >= uint64(len(positions)) {
		return 0, false
	}
	return positions[k], true
}

// MarshalBinary serializes the bit vector using the roaring bitmap's own
// compact on-disk format, matching spec section 4.9's requirement that
// serialization be byte-exact and self-describing.
func (s *Sparse) MarshalBinary() ([]byte, error) {
	return s.bits.ToBuffer(), nil
}

// UnmarshalBinary reconstructs and freezes a Sparse from bytes previously
// produced by MarshalBinary.
func (s *Sparse) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return errors.New("bitmap: empty buffer")
	}
	s.bits = sroar.FromBuffer(data)
	s.Freeze()
	return nil
}
