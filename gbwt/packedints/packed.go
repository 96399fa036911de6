// Package packedints implements a fixed-width bit-packed integer array,
// the storage backing the DA-sample store's sample values (spec section
// 4.6). No dependency in the reference corpus provides a general
// arbitrary-bit-width packed integer vector — the closest analogues
// (roaring bitmaps, bitset) are boolean-valued — so this stays a small,
// self-contained component built directly on encoding/binary, matching
// the byte-cursor style segmentindex.DiskTree uses for its own on-disk
// records.
package packedints

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const wordBits = 64

// Array is a packed vector of fixed-width unsigned integers.
type Array struct {
	width uint64 // bits per element, 1..64
	size  uint64 // number of elements
	data  []uint64
}

// New allocates a packed array of size elements, each width bits wide.
func New(width, size uint64) *Array {
	if width == 0 || width > wordBits {
		panic("packedints: width must be in [1, 64]")
	}
	words := (size*width + wordBits - 1) / wordBits
	return &Array{width: width, size: size, data: make([]uint64, words)}
}

// Width returns the number of bits used per element.
func (a *Array) Width() uint64 { return a.width }

// Len returns the number of elements.
func (a *Array) Len() uint64 { return a.size }

// Set stores value at index i. value must fit in Width() bits.
func (a *Array) Set(i, value uint64) {
	if i >= a.size {
		panic("packedints: index out of range")
	}
	if a.width < wordBits && value>>a.width != 0 {
		panic("packedints: value does not fit in element width")
	}

	bitPos := i * a.width
	word := bitPos / wordBits
	offset := bitPos % wordBits

	mask := uint64(1)<<a.width - 1
	if a.width == wordBits {
		mask = ^uint64(0)
	}
	value &= mask

	a.data[word] &^= mask << offset
	a.data[word] |= value << offset

	if spill := offset + a.width; spill > wordBits {
		spillBits := spill - wordBits
		a.data[word+1] &^= (uint64(1)<<spillBits - 1)
		a.data[word+1] |= value >> (a.width - spillBits)
	}
}

// Get returns the value stored at index i.
func (a *Array) Get(i uint64) uint64 {
	if i >= a.size {
		panic("packedints: index out of range")
	}

	bitPos := i * a.width
	word := bitPos / wordBits
	offset := bitPos % wordBits

	mask := uint64(1)<<a.width - 1
	if a.width == wordBits {
		mask = ^uint64(0)
	}

	value := (a.data[word] >> offset) & mask
	if spill := offset + a.width; spill > wordBits {
		spillBits := spill - wordBits
		value |= (a.data[word+1] & (uint64(1)<<spillBits - 1)) << (a.width - spillBits)
	}
	return value
}

// MarshalBinary encodes width, size, and the packed words, little-endian,
// matching the rest of the module's fixed-header-then-payload layout
// (spec section 4.9).
func (a *Array) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 16+8*len(a.data))
	binary.LittleEndian.PutUint64(buf[0:8], a.width)
	binary.LittleEndian.PutUint64(buf[8:16], a.size)
	for i, w := range a.data {
		binary.LittleEndian.PutUint64(buf[16+8*i:24+8*i], w)
	}
	return buf, nil
}

// UnmarshalBinary reconstructs an Array from bytes produced by
// MarshalBinary.
func (a *Array) UnmarshalBinary(data []byte) error {
	if len(data) < 16 {
		return errors.New("packedints: truncated header")
	}
	width := binary.LittleEndian.Uint64(data[0:8])
	size := binary.LittleEndian.Uint64(data[8:16])
	words := (size*width + wordBits - 1) / wordBits

	rest := data[16:]
	if uint64(len(rest)) < 8*words {
		return errors.New("packedints: truncated payload")
	}

	a.width = width
	a.size = size
	a.data = make([]uint64, words)
	for i := range a.data {
		a.data[i] = binary.LittleEndian.Uint64(rest[8*i : 8*i+8])
	}
	return nil
}
