package gbwt

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Default tuning constants (spec section 6, "Environment"). InsertBatchSize
// and MergeBatchSize bound work per internal pass; SampleInterval controls
// how densely tryLocate anchors are placed along each inserted path.
const (
	DefaultSampleInterval  uint64 = 1024
	DefaultInsertBatchSize uint64 = 100_000_000
	DefaultMergeBatchSize  uint64 = 2000
)

// parallelRecodeThreshold is the "conventionally ~1024 elements per
// thread" cutover spec section 5 gives for opportunistic parallel
// sorting/rebuild work inside recode(): below it, goroutine fan-out
// costs more in scheduling than it saves.
const parallelRecodeThreshold = 1024

// Option configures a DynamicGBWT at construction time, mirroring the
// functional-options pattern the storage engine uses for its own
// construction-time knobs.
type Option func(*DynamicGBWT)

// WithSampleInterval overrides the default document-array sampling
// interval.
func WithSampleInterval(interval uint64) Option {
	return func(d *DynamicGBWT) {
		if interval > 0 {
			d.sampleInterval = interval
		}
	}
}

// WithLogger attaches a structured logger; insertion and merge log batch
// progress through it the way the storage engine threads a
// logrus.FieldLogger through its own long-running background passes.
func WithLogger(log logrus.FieldLogger) Option {
	return func(d *DynamicGBWT) { d.log = log }
}

// DynamicGBWT owns the mutable, under-construction form of the index: a
// vector of per-node records addressed by comp id, plus the running
// header counts. It is the "algorithmic centerpiece" of spec section
// 4.7 — batched insertion of new path sequences.
type DynamicGBWT struct {
	header         *Header
	records        []*MutableRecord // records[0] is always the endmarker
	sampleInterval uint64
	log            logrus.FieldLogger
}

// NewDynamicGBWT returns an empty dynamic index with just the endmarker
// record allocated.
func NewDynamicGBWT(opts ...Option) *DynamicGBWT {
	d := &DynamicGBWT{
		header:         NewHeader(),
		records:        []*MutableRecord{NewMutableRecord()},
		sampleInterval: DefaultSampleInterval,
		log:            logrus.StandardLogger(),
	}
	d.header.AlphabetSize = 1
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Header returns the current header snapshot.
func (d *DynamicGBWT) Header() Header { return *d.header }

// Sequences returns the number of sequences inserted so far.
func (d *DynamicGBWT) Sequences() uint64 { return d.header.Sequences }

// Contains reports whether v is a valid id for querying: the endmarker,
// or an effective node within the current alphabet (spec section 6,
// "Invariants for callers"). Offset is always 0 in this implementation
// (see DESIGN.md), so every id below AlphabetSize is effective.
func (d *DynamicGBWT) Contains(v uint64) bool {
	return v == 0 || (v < d.header.AlphabetSize)
}

// resize grows the record vector and the header's alphabet size so that
// every id up to maxNode has a (possibly empty) record.
func (d *DynamicGBWT) resize(maxNode uint64) {
	if maxNode < d.header.AlphabetSize {
		return
	}
	grown := make([]*MutableRecord, maxNode+1)
	copy(grown, d.records)
	for i := len(d.records); i < len(grown); i++ {
		grown[i] = NewMutableRecord()
	}
	d.records = grown
	d.header.AlphabetSize = maxNode + 1
}

func (d *DynamicGBWT) record(v uint64) *MutableRecord { return d.records[v] }

// splitSequences breaks a flat, zero-terminated text buffer into
// individual sequences of effective node ids, endmarkers stripped
// (spec section 6, "Input text").
func splitSequences(text []uint64) [][]uint64 {
	var sequences [][]uint64
	var current []uint64
	for _, v := range text {
		if v == EndMarker {
			sequences = append(sequences, current)
			current = nil
			continue
		}
		current = append(current, v)
	}
	if len(current) > 0 {
		sequences = append(sequences, current)
	}
	return sequences
}

// Insert runs the batched insertion algorithm of spec section 4.7 over
// text, a flat concatenation of endmarker-terminated sequences.
// batchSize bounds how many sequences are processed, and their touched
// records recoded, before the next chunk begins; 0 means the entire
// input at once. Insert is not safe for concurrent use — the dynamic
// index requires exclusive access for the duration of a batch (spec
// section 5).
func (d *DynamicGBWT) Insert(text []uint64, batchSize uint64) {
	sequences := splitSequences(text)
	if batchSize == 0 {
		batchSize = uint64(len(sequences))
	}

	var maxNode uint64
	for _, seq := range sequences {
		for _, v := range seq {
			if v > maxNode {
				maxNode = v
			}
		}
	}
	d.resize(maxNode)

	for start := 0; start < len(sequences); {
		end := start + int(batchSize)
		if end > len(sequences) || batchSize == 0 {
			end = len(sequences)
		}
		touched := d.insertBatch(sequences[start:end])
		recodeTouched(touched)
		d.log.WithFields(logrus.Fields{
			"batch_sequences": end - start,
			"touched_records": len(touched),
		}).Debug("gbwt: inserted batch")
		start = end
	}
}

// recodeTouched runs Recode() over every record touched by a batch.
// Each record is disjoint, so once a batch touches enough of them to
// be worth the goroutine scheduling overhead, the fan-out is farmed
// out through an errgroup.Group rather than walked sequentially (spec
// section 5's "sorting inside recode() ... may be parallelized when
// the input crosses a threshold").
func recodeTouched(touched []*MutableRecord) {
	if len(touched) < parallelRecodeThreshold {
		for _, rec := range touched {
			rec.Recode()
		}
		return
	}

	var g errgroup.Group
	for _, rec := range touched {
		rec := rec
		g.Go(func() error {
			rec.Recode()
			return nil
		})
	}
	_ = g.Wait()
}

// insertBatch inserts each sequence in seqs sequentially, in order,
// assigning consecutive sequence ids starting at the header's current
// count. It returns every record touched, for the caller's post-pass
// recode() step (spec section 4.7 step 7).
//
// The reference algorithm processes all sequences currently arriving at
// a node together, round by round, to amortize offset fixups across an
// entire batch. This implementation instead completes one sequence's
// full path before starting the next: the resolved reading of Open
// Question (c) is that the exact fixup order does not affect
// correctness, only performance and intermediate observability, and the
// sequential form is far simpler to reason about and verify (see
// DESIGN.md).
func (d *DynamicGBWT) insertBatch(seqs [][]uint64) []*MutableRecord {
	touchedSet := make(map[uint64]*MutableRecord)

	for _, path := range seqs {
		seqID := d.header.Sequences
		d.insertSequence(path, seqID, touchedSet)
		d.header.Sequences++
		d.header.Size += uint64(len(path)) + 1
	}

	touched := make([]*MutableRecord, 0, len(touchedSet))
	for _, rec := range touchedSet {
		touched = append(touched, rec)
	}
	return touched
}

// insertSequence inserts one sequence's cyclic path
// [endmarker, path[0], ..., path[k-1], endmarker] into the record
// vector, edge by edge, following spec section 4.7 steps 2-6.
//
// Each step computes newP, the row a step's arrival will occupy in the
// destination record w — but that row is only real once w itself has
// gone through the InsertRun that creates it, which happens on the
// following iteration (when w becomes the new v). Sampling newP
// immediately, before that InsertRun runs, both samples a row that
// does not exist yet in a record with a single incoming edge, and
// corrupts the sample once it does exist: InsertRun's own
// shiftSamples(p) would see the just-added sample sitting at exactly p
// and bump it out from under the row it names. AddSample is therefore
// deferred one step, firing right after the InsertRun that actually
// creates the sampled row, never before it.
//
// newP itself depends on v's edge to w carrying the right base offset —
// per spec section 3, offset_v(r) is the row in w that edge r's first
// occurrence in v maps to, a fact about w, not something derivable from
// v's own body. The first time v ever routes to w, that row is simply
// w's current size (nothing has been inserted into w yet on w's own
// turn), so a newly created edge's offset is snapshotted from w.Size()
// at the moment EnsureOutgoing creates it, once, rather than rederived
// from v's run distribution afterwards.
func (d *DynamicGBWT) insertSequence(path []uint64, seqID uint64, touched map[uint64]*MutableRecord) {
	prev := EndMarker
	originRow := d.record(EndMarker).Size()
	p := originRow
	touched[EndMarker] = d.record(EndMarker)

	pendingSample := false

	steps := append(append([]uint64{}, path...), EndMarker)
	for step, next := range steps {
		v := d.record(prev)
		w := d.record(next)
		touched[prev] = v
		touched[next] = w

		oldOutdegree := v.Outdegree()
		outrank := v.EnsureOutgoing(next)
		if outrank == oldOutdegree {
			v.SetOffset(outrank, w.Size())
		}

		v.InsertRun(p, outrank)
		if pendingSample {
			v.AddSample(p, seqID)
		}

		newP := recordLFTo(p, outrank, v.Offset(outrank), v.source())

		w.Increment(prev)

		isFinal := next == EndMarker
		pendingSample = !isFinal && uint64(step)%d.sampleInterval == 0

		prev, p = next, newP
	}

	// The endmarker's row for this sequence was inserted once, at the
	// very first iteration above (prev == EndMarker), and never
	// touched again within this call, so its sample attaches directly
	// to that already-valid row rather than through the deferred path
	// every other record uses.
	d.record(EndMarker).AddSample(originRow, seqID)
}
