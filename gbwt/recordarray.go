package gbwt

import (
	"github.com/pkg/errors"

	"github.com/gbwt-go/gbwt/gbwt/bitmap"
)

// RecordArray is the concatenated, offset-indexed byte array that
// stores every node's compressed record contiguously (spec section
// 4.5). It plays the same role as segmentindex.DiskTree in the storage
// engine this module is modeled on: a read-only, offset-addressed view
// over a single flat byte buffer, except the sparse offset index here
// is a rank/select bitmap rather than a binary search tree, since
// record starts are dense integer comp ids rather than arbitrary byte
// keys.
type RecordArray struct {
	data    []byte
	starts  *bitmap.Sparse
	records int
}

// BuildRecordArray packs records, in comp-id order, into one
// contiguous buffer and records each record's starting byte offset in
// a sparse bitmap so a comp id can be resolved to its record via
// Select. Mirrors RecordArray's vector<DynamicRecord>-to-flat-buffer
// constructor in the source library.
func BuildRecordArray(encoded [][]byte) *RecordArray {
	positions := make([]uint64, 0, len(encoded))
	var total uint64
	for _, rec := range encoded {
		positions = append(positions, total)
		total += uint64(len(rec))
	}

	data := make([]byte, 0, total)
	for _, rec := range encoded {
		data = append(data, rec...)
	}

	starts := bitmap.FromPositions(positions)

	return &RecordArray{data: data, starts: starts, records: len(encoded)}
}

// Size returns the number of records stored.
func (a *RecordArray) Size() int { return a.records }

// Record returns the compressed record for comp id v.
func (a *RecordArray) Record(v uint64) (*CompressedRecord, error) {
	if v >= uint64(a.records) {
		return nil, errors.Errorf("gbwt: comp id %d out of range [0, %d)", v, a.records)
	}
	start, ok := a.starts.Select(v)
	if !ok {
		return nil, errors.Errorf("gbwt: no start offset for comp id %d", v)
	}

	var end uint64
	if v+1 < uint64(a.records) {
		end, ok = a.starts.Select(v + 1)
		if !ok {
			return nil, errors.Errorf("gbwt: no start offset for comp id %d", v+1)
		}
	} else {
		end = uint64(len(a.data))
	}

	return NewCompressedRecord(a.data[start:end]), nil
}

// Bytes returns the underlying concatenated buffer, for serialization.
func (a *RecordArray) Bytes() []byte { return a.data }

// MarshalBinary serializes the record count, the offset bitmap, and the
// raw record bytes, in that order.
func (a *RecordArray) MarshalBinary() ([]byte, error) {
	bitmapBytes, err := a.starts.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: marshal record array offset bitmap")
	}

	buf := make([]byte, 0, 8+8+len(bitmapBytes)+len(a.data))
	buf = appendFixedUint64(buf, uint64(a.records))
	buf = appendFixedUint64(buf, uint64(len(bitmapBytes)))
	buf = append(buf, bitmapBytes...)
	buf = append(buf, a.data...)
	return buf, nil
}

// UnmarshalBinary reconstructs a RecordArray from bytes produced by
// MarshalBinary.
func (a *RecordArray) UnmarshalBinary(data []byte) error {
	if len(data) < 16 {
		return errors.New("gbwt: truncated record array header")
	}
	records := readFixedUint64(data[0:8])
	bitmapLen := readFixedUint64(data[8:16])
	rest := data[16:]
	if uint64(len(rest)) < bitmapLen {
		return errors.New("gbwt: truncated record array offset bitmap")
	}

	starts := bitmap.New()
	if err := starts.UnmarshalBinary(rest[:bitmapLen]); err != nil {
		return errors.Wrap(err, "gbwt: unmarshal record array offset bitmap")
	}

	a.records = int(records)
	a.starts = starts
	a.data = append([]byte(nil), rest[bitmapLen:]...)
	return nil
}

func appendFixedUint64(buf []byte, x uint64) []byte {
	return append(buf,
		byte(x), byte(x>>8), byte(x>>16), byte(x>>24),
		byte(x>>32), byte(x>>40), byte(x>>48), byte(x>>56),
	)
}

func readFixedUint64(b []byte) uint64 {
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}
