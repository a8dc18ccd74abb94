// Package counter couples one k-mer encoder configuration with one Count-Min Sketch,
// giving approximate per-k-mer counts over whole sequences
package counter

import (
	"fmt"

	"github.com/kmer-tools/gomer/src/kmerenc"
	"github.com/kmer-tools/gomer/src/sketch"
)

// KmerCounter counts the k-mers of consumed sequences in a Count-Min Sketch. The encoder
// settings are fixed at construction so every consumed and queried k-mer is coded the
// same way
type KmerCounter struct {
	KmerSize  int
	Canonical bool
	Masked    bool
	cms       *sketch.CountMinSketch
}

// NewKmerCounter is the constructor for a KmerCounter, wrapping an existing sketch
func NewKmerCounter(kmerSize int, canonical, masked bool, cms *sketch.CountMinSketch) (*KmerCounter, error) {
	if _, err := kmerenc.NewEncoder(kmerSize, canonical, masked); err != nil {
		return nil, err
	}
	if cms == nil {
		return nil, fmt.Errorf("no sketch provided")
	}
	return &KmerCounter{
		KmerSize:  kmerSize,
		Canonical: canonical,
		Masked:    masked,
		cms:       cms,
	}, nil
}

// Consume counts all k-mers in a sequence, returning the number of k-mers counted
func (KmerCounter *KmerCounter) Consume(seq []byte) (int, error) {
	return KmerCounter.apply(seq, KmerCounter.cms.Increment)
}

// Unconsume subtracts all k-mers in a sequence, returning the number of k-mers
// subtracted. Counters floor at 0, so unconsuming a sequence that was never consumed
// cannot corrupt the sketch
func (KmerCounter *KmerCounter) Unconsume(seq []byte) (int, error) {
	return KmerCounter.apply(seq, KmerCounter.cms.Decrement)
}

// apply runs a sketch operation on every k-mer code of a sequence
func (KmerCounter *KmerCounter) apply(seq []byte, op func(item, by uint64)) (int, error) {
	if len(seq) < KmerCounter.KmerSize {
		return 0, fmt.Errorf("sequence length (%d) is shorter than k-mer length (%d)", len(seq), KmerCounter.KmerSize)
	}
	stream, err := kmerenc.NewStream(seq, KmerCounter.KmerSize, KmerCounter.Canonical, KmerCounter.Masked)
	if err != nil {
		return 0, err
	}
	tally := 0
	for code, ok := stream.Next(); ok; code, ok = stream.Next() {
		op(code, 1)
		tally++
	}
	return tally, nil
}

// Get returns the estimated count for a single k-mer
func (KmerCounter *KmerCounter) Get(kmer []byte) (uint64, error) {
	if len(kmer) != KmerCounter.KmerSize {
		return 0, fmt.Errorf("query k-mer length (%d) does not match counter k-mer length (%d)", len(kmer), KmerCounter.KmerSize)
	}
	code, err := kmerenc.EncodeKmer(kmer, KmerCounter.Canonical, KmerCounter.Masked)
	if err != nil {
		return 0, err
	}
	return KmerCounter.cms.Query(code), nil
}

// Sketch returns the underlying Count-Min Sketch
func (KmerCounter *KmerCounter) Sketch() *sketch.CountMinSketch {
	return KmerCounter.cms
}
