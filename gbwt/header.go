package gbwt

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// magic and version identify the on-disk format (spec section 4.9's
// wire layout table). Both are checked on load: a mismatch is a fatal
// data-integrity failure, leaving the loaded index empty rather than
// half-populated (spec section 7).
const (
	headerMagic         uint64 = 0x6762_7774_2d67_6f00 // "gbwt-go\0"
	headerVersion       uint64 = 1
	headerSerializedLen        = 7 * 8
)

// FlagNarrow marks an index built with 32-bit-width offsets rather than
// the default 64-bit width (spec's original_source narrow-integer
// build toggle, carried forward as a header flag bit rather than a
// separate compiled variant — see DESIGN.md).
const FlagNarrow uint64 = 1 << 0

// Header is the global index header: aggregate counts plus the format
// identifiers, serialized first in every .gbwt file.
type Header struct {
	Size         uint64 // sum of record sizes
	Sequences    uint64 // number of sequences inserted
	AlphabetSize uint64
	Offset       uint64 // reserved alphabet zone; always 0 (see DESIGN.md)
	Flags        uint64
}

// NewHeader returns a zeroed header for a brand-new, empty index.
func NewHeader() *Header {
	return &Header{}
}

// Narrow reports whether FlagNarrow is set.
func (h *Header) Narrow() bool { return h.Flags&FlagNarrow != 0 }

// MarshalBinary writes magic, version, and every field, little-endian,
// fixed-width — matching the HEADER row of the wire-format table.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, headerSerializedLen)
	binary.LittleEndian.PutUint64(buf[0:8], headerMagic)
	binary.LittleEndian.PutUint64(buf[8:16], headerVersion)
	binary.LittleEndian.PutUint64(buf[16:24], h.Size)
	binary.LittleEndian.PutUint64(buf[24:32], h.Sequences)
	binary.LittleEndian.PutUint64(buf[32:40], h.AlphabetSize)
	binary.LittleEndian.PutUint64(buf[40:48], h.Offset)
	binary.LittleEndian.PutUint64(buf[48:56], h.Flags)
	return buf, nil
}

// UnmarshalBinary parses a header previously written by MarshalBinary,
// failing fatally (per spec section 7) on a magic or version mismatch
// or a truncated buffer.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < headerSerializedLen {
		return errors.New("gbwt: truncated header")
	}
	if magic := binary.LittleEndian.Uint64(data[0:8]); magic != headerMagic {
		return errors.Errorf("gbwt: bad magic %x, expected %x", magic, headerMagic)
	}
	if version := binary.LittleEndian.Uint64(data[8:16]); version != headerVersion {
		return errors.Errorf("gbwt: unsupported version %d, expected %d", version, headerVersion)
	}

	h.Size = binary.LittleEndian.Uint64(data[16:24])
	h.Sequences = binary.LittleEndian.Uint64(data[24:32])
	h.AlphabetSize = binary.LittleEndian.Uint64(data[32:40])
	h.Offset = binary.LittleEndian.Uint64(data[40:48])
	h.Flags = binary.LittleEndian.Uint64(data[48:56])
	return nil
}
