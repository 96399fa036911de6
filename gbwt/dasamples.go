package gbwt

import (
	"github.com/pkg/errors"

	"github.com/gbwt-go/gbwt/gbwt/bitmap"
	"github.com/gbwt-go/gbwt/gbwt/packedints"
)

// RecordSamples is the input to BuildSampleStore: one record's total
// BWT size and the samples recorded in it during insertion, offsets in
// [0, Size).
type RecordSamples struct {
	Comp    uint64
	Size    uint64
	Samples []Sample
}

// SampleStore is the frozen, four-part document-array sample index
// described in spec section 4.6: sampledRecords marks which comp ids
// carry any sample at all, bwtRanges marks where each sampled record's
// coordinate range begins in the concatenated "sampled space",
// sampledOffsets marks the exact rows that carry a sample within that
// space, and values holds the sampled sequence ids in the traversal
// order of sampledOffsets's set bits.
type SampleStore struct {
	sampledRecords *bitmap.Sparse
	bwtRanges      *bitmap.Sparse
	sampledOffsets *bitmap.Sparse
	values         *packedints.Array
}

// BuildSampleStore constructs a SampleStore from every record's
// samples. records need not be sorted or complete: only comp ids with
// at least one sample contribute to the sampled space, in ascending
// comp order.
func BuildSampleStore(records []RecordSamples) *SampleStore {
	sampled := make([]RecordSamples, 0, len(records))
	for _, r := range records {
		if len(r.Samples) > 0 {
			sampled = append(sampled, r)
		}
	}
	insertionSortBy(len(sampled), func(i, j int) bool { return sampled[i].Comp < sampled[j].Comp },
		func(i, j int) { sampled[i], sampled[j] = sampled[j], sampled[i] })

	sampledRecordPositions := make([]uint64, 0, len(sampled))
	bwtRangePositions := make([]uint64, 0, len(sampled))
	var sampledOffsetPositions []uint64
	var values []uint64
	var maxSample uint64

	var base uint64
	for _, r := range sampled {
		sampledRecordPositions = append(sampledRecordPositions, r.Comp)
		bwtRangePositions = append(bwtRangePositions, base)

		samples := append([]Sample(nil), r.Samples...)
		insertionSortBy(len(samples), func(i, j int) bool { return samples[i].Offset < samples[j].Offset },
			func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })

		for _, s := range samples {
			sampledOffsetPositions = append(sampledOffsetPositions, base+s.Offset)
			values = append(values, s.Sequence)
			if s.Sequence > maxSample {
				maxSample = s.Sequence
			}
		}
		base += r.Size
	}

	width := bitLength(maxSample)
	if width == 0 {
		width = 1
	}
	packed := packedints.New(width, uint64(len(values)))
	for i, v := range values {
		packed.Set(uint64(i), v)
	}

	return &SampleStore{
		sampledRecords: bitmap.FromPositions(sampledRecordPositions),
		bwtRanges:      bitmap.FromPositions(bwtRangePositions),
		sampledOffsets: bitmap.FromPositions(sampledOffsetPositions),
		values:         packed,
	}
}

// TryLocate answers which sequence id, if any, was sampled at BWT
// offset i of record comp, following the four-step lookup in spec
// section 4.6. Returns InvalidSequence if the row was not sampled.
func (s *SampleStore) TryLocate(comp uint64, i uint64) uint64 {
	if !s.sampledRecords.Get(comp) {
		return InvalidSequence
	}
	group := s.sampledRecords.Rank(comp)
	base, ok := s.bwtRanges.Select(group)
	if !ok {
		return InvalidSequence
	}
	pos := base + i
	if !s.sampledOffsets.Get(pos) {
		return InvalidSequence
	}
	rank := s.sampledOffsets.Rank(pos)
	return s.values.Get(rank)
}

// MarshalBinary serializes the three bitmaps and the packed sample
// array, in the order the DA_SAMPLES row of the wire-format table
// lists them.
func (s *SampleStore) MarshalBinary() ([]byte, error) {
	sections := make([][]byte, 4)
	var err error
	if sections[0], err = s.sampledRecords.MarshalBinary(); err != nil {
		return nil, errors.Wrap(err, "gbwt: marshal sampled_records")
	}
	if sections[1], err = s.bwtRanges.MarshalBinary(); err != nil {
		return nil, errors.Wrap(err, "gbwt: marshal bwt_ranges")
	}
	if sections[2], err = s.sampledOffsets.MarshalBinary(); err != nil {
		return nil, errors.Wrap(err, "gbwt: marshal sampled_offsets")
	}
	if sections[3], err = s.values.MarshalBinary(); err != nil {
		return nil, errors.Wrap(err, "gbwt: marshal sample array")
	}

	var total int
	for _, sec := range sections {
		total += 8 + len(sec)
	}
	buf := make([]byte, 0, total)
	for _, sec := range sections {
		buf = appendFixedUint64(buf, uint64(len(sec)))
		buf = append(buf, sec...)
	}
	return buf, nil
}

// UnmarshalBinary reconstructs a SampleStore from bytes produced by
// MarshalBinary.
func (s *SampleStore) UnmarshalBinary(data []byte) error {
	readSection := func(data []byte) (section, rest []byte, err error) {
		if len(data) < 8 {
			return nil, nil, errors.New("gbwt: truncated sample store section header")
		}
		n := readFixedUint64(data[0:8])
		data = data[8:]
		if uint64(len(data)) < n {
			return nil, nil, errors.New("gbwt: truncated sample store section")
		}
		return data[:n], data[n:], nil
	}

	sampledRecordsBytes, rest, err := readSection(data)
	if err != nil {
		return err
	}
	bwtRangesBytes, rest, err := readSection(rest)
	if err != nil {
		return err
	}
	sampledOffsetsBytes, rest, err := readSection(rest)
	if err != nil {
		return err
	}
	valuesBytes, _, err := readSection(rest)
	if err != nil {
		return err
	}

	s.sampledRecords = bitmap.New()
	if err := s.sampledRecords.UnmarshalBinary(sampledRecordsBytes); err != nil {
		return errors.Wrap(err, "gbwt: unmarshal sampled_records")
	}
	s.bwtRanges = bitmap.New()
	if err := s.bwtRanges.UnmarshalBinary(bwtRangesBytes); err != nil {
		return errors.Wrap(err, "gbwt: unmarshal bwt_ranges")
	}
	s.sampledOffsets = bitmap.New()
	if err := s.sampledOffsets.UnmarshalBinary(sampledOffsetsBytes); err != nil {
		return errors.Wrap(err, "gbwt: unmarshal sampled_offsets")
	}
	s.values = &packedints.Array{}
	if err := s.values.UnmarshalBinary(valuesBytes); err != nil {
		return errors.Wrap(err, "gbwt: unmarshal sample array")
	}
	return nil
}

// insertionSortBy is a tiny dependency-free sort helper: the record and
// sample slices BuildSampleStore touches are only ever a handful of
// entries per call site, well under the threshold where reaching for
// sort.Slice's reflection overhead or a parallel sort primitive would
// pay for itself.
func insertionSortBy(n int, less func(i, j int) bool, swap func(i, j int)) {
	for i := 1; i < n; i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			swap(j, j-1)
		}
	}
}
