package gbwt

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Save writes idx to path in the on-disk layout of spec section 4.9:
// header, then record array, then DA-sample store, back to back with
// no padding.
func (idx *Immutable) Save(path string) error {
	data, err := idx.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "gbwt: marshal index")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "gbwt: write index file")
	}
	return nil
}

// MarshalBinary serializes the full index: the fixed-length header,
// then the record array and the DA-sample store, each of those two
// length-prefixed so Load can find its boundaries without re-deriving
// them from content.
func (idx *Immutable) MarshalBinary() ([]byte, error) {
	headerBytes, err := idx.header.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: marshal header")
	}
	recordBytes, err := idx.records.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: marshal record array")
	}
	sampleBytes, err := idx.samples.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: marshal sample store")
	}

	buf := make([]byte, 0, len(headerBytes)+16+len(recordBytes)+len(sampleBytes))
	buf = append(buf, headerBytes...)
	buf = appendFixedUint64(buf, uint64(len(recordBytes)))
	buf = append(buf, recordBytes...)
	buf = appendFixedUint64(buf, uint64(len(sampleBytes)))
	buf = append(buf, sampleBytes...)
	return buf, nil
}

// LoadOption configures how Load reads a .gbwt file.
type LoadOption func(*loadConfig)

type loadConfig struct {
	memoryMap bool
}

// WithMemoryMap loads the index by mapping the file into memory
// read-only via mmap-go and parsing directly from the mapping, rather
// than first reading the file into a heap buffer — the same technique
// the storage engine uses to read its own segment files
// (segment_precompute_for_compaction.go). The record array's bytes are
// copied out of the mapping while parsing, and the mapping is released
// before Load returns.
func WithMemoryMap() LoadOption {
	return func(c *loadConfig) { c.memoryMap = true }
}

// Load reads a .gbwt file written by Save. A magic/version mismatch or
// a truncated stream is a fatal data-integrity failure (spec section
// 7): the returned index is nil and the error identifies the cause.
func Load(path string, opts ...LoadOption) (*Immutable, error) {
	cfg := &loadConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.memoryMap {
		return loadMapped(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: read index file")
	}
	return UnmarshalBinary(data)
}

func loadMapped(path string) (*Immutable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: open index file")
	}
	defer file.Close()

	region, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return nil, errors.Wrap(err, "gbwt: mmap index file")
	}
	defer region.Unmap()

	return UnmarshalBinary([]byte(region))
}

// UnmarshalBinary parses bytes produced by MarshalBinary/Save.
func UnmarshalBinary(data []byte) (*Immutable, error) {
	if len(data) < headerSerializedLen {
		return nil, errors.New("gbwt: truncated index file")
	}

	header := &Header{}
	if err := header.UnmarshalBinary(data[:headerSerializedLen]); err != nil {
		return nil, errors.Wrap(err, "gbwt: unmarshal header")
	}
	rest := data[headerSerializedLen:]

	if len(rest) < 8 {
		return nil, errors.New("gbwt: truncated record array length")
	}
	recordLen := readFixedUint64(rest[:8])
	rest = rest[8:]
	if uint64(len(rest)) < recordLen {
		return nil, errors.New("gbwt: truncated record array")
	}
	records := &RecordArray{}
	if err := records.UnmarshalBinary(rest[:recordLen]); err != nil {
		return nil, errors.Wrap(err, "gbwt: unmarshal record array")
	}
	rest = rest[recordLen:]

	if len(rest) < 8 {
		return nil, errors.New("gbwt: truncated sample store length")
	}
	sampleLen := readFixedUint64(rest[:8])
	rest = rest[8:]
	if uint64(len(rest)) < sampleLen {
		return nil, errors.New("gbwt: truncated sample store")
	}
	samples := &SampleStore{}
	if err := samples.UnmarshalBinary(rest[:sampleLen]); err != nil {
		return nil, errors.Wrap(err, "gbwt: unmarshal sample store")
	}

	return &Immutable{header: *header, records: records, samples: samples}, nil
}
