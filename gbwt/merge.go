package gbwt

import "github.com/sirupsen/logrus"

// Merge folds every sequence stored in other into d, batchSize
// sequences at a time (spec section 4.7, "Merge"). Sequences are
// recovered from other by extracting each of its endmarker rows in
// turn, then re-inserted through the same Insert path used for fresh
// text, so a merged index is bit-for-bit the same shape it would have
// been had all of its sequences been inserted directly.
//
// Merge is not safe for concurrent use, and other is read-only
// throughout: nothing about the merge mutates it.
func (d *DynamicGBWT) Merge(other *Immutable, batchSize uint64) {
	if batchSize == 0 {
		batchSize = DefaultMergeBatchSize
	}

	endmarkerSize := uint64(0)
	if rec, err := other.Record(EndMarker); err == nil {
		endmarkerSize = rec.Size()
	}

	d.log.WithFields(logrus.Fields{
		"sequences": endmarkerSize,
		"batch_size": batchSize,
	}).Debug("gbwt: starting merge")

	var text []uint64
	var pending uint64
	for row := uint64(0); row < endmarkerSize; row++ {
		text = append(text, other.Extract(row)...)
		text = append(text, EndMarker)
		pending++

		if pending == batchSize {
			d.Insert(text, 0)
			text = nil
			pending = 0
		}
	}
	if pending > 0 {
		d.Insert(text, 0)
	}
}
