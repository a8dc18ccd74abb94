// Package kmerenc contains a rolling 2-bit k-mer encoder and its inverse. Each k-mer is
// packed into a uint64 (A=0, C=1, G=2, T=3, first base most significant), so codes double
// as sketch keys and can always be decoded back to the original sequence
package kmerenc

import "fmt"

// MaxK is the largest k-mer length that can be packed into a uint64
const MaxK = 32

// bases is the lookup table used during decoding
var bases = [4]byte{'A', 'C', 'G', 'T'}

// seqNT4table gives the 2-bit encoding for each nucleotide (4 == not a nucleotide)
var seqNT4table [256]uint8

// prepare the nucleotide lookup table
func init() {
	for i := range seqNT4table {
		seqNT4table[i] = 4
	}
	seqNT4table['A'], seqNT4table['a'] = 0, 0
	seqNT4table['C'], seqNT4table['c'] = 1, 1
	seqNT4table['G'], seqNT4table['g'] = 2, 2
	seqNT4table['T'], seqNT4table['t'] = 3, 3
}

// Encoder holds the rolling state for a single pass over a sequence. It is not safe for
// concurrent use and cannot be rewound - use a fresh Encoder to re-scan a sequence
type Encoder struct {
	kmerSize  int
	canonical bool
	masked    bool
	bitmask   uint64
	bitshift  uint64
	fwd       uint64 // rolling forward strand k-mer
	rev       uint64 // rolling reverse complement k-mer
	validRun  int    // number of valid bases seen since the last invalid one
}

// NewEncoder is the constructor for an Encoder. The canonical flag collapses each k-mer
// and its reverse complement to a single representative code (the smaller of the two).
// The masked flag treats lower case bases as invalid, so that soft-masked regions of a
// reference are skipped rather than counted
func NewEncoder(kmerSize int, canonical, masked bool) (*Encoder, error) {
	if kmerSize <= 0 {
		return nil, fmt.Errorf("k-mer size must be greater than 0 (got %d)", kmerSize)
	}
	if kmerSize > MaxK {
		return nil, fmt.Errorf("k-mer size must be <= %d to pack into 64 bits (got %d)", MaxK, kmerSize)
	}
	return &Encoder{
		kmerSize:  kmerSize,
		canonical: canonical,
		masked:    masked,
		bitmask:   (uint64(1) << uint64(2*kmerSize)) - 1,
		bitshift:  uint64(2 * (kmerSize - 1)),
	}, nil
}

// K returns the k-mer size the encoder was constructed with
func (Encoder *Encoder) K() int {
	return Encoder.kmerSize
}

// Consume feeds one base into the rolling window. The returned code is only meaningful
// when emitted is true, i.e. when a full window of k valid bases ends at this position.
// An invalid base resets the window, so no emitted code ever spans one; emission resumes
// once k valid bases have been consumed after it
func (Encoder *Encoder) Consume(base byte) (code uint64, emitted bool) {

	// get the nucleotide and convert to uint8
	c := seqNT4table[base]

	// lower case bases flag soft-masked regions when the masked policy is active
	if Encoder.masked && base >= 'a' {
		c = 4
	}

	// an invalid base invalidates the accumulator state
	if c > 3 {
		Encoder.fwd, Encoder.rev = 0, 0
		Encoder.validRun = 0
		return 0, false
	}

	// update the forward k-mer
	Encoder.fwd = (Encoder.fwd<<2 | uint64(c)) & Encoder.bitmask

	// update the reverse complement k-mer
	Encoder.rev = (Encoder.rev >> 2) | (uint64(3)-uint64(c))<<Encoder.bitshift

	// hold off emitting until the window is full
	if Encoder.validRun < Encoder.kmerSize {
		Encoder.validRun++
	}
	if Encoder.validRun < Encoder.kmerSize {
		return 0, false
	}

	// set the canonical k-mer
	if Encoder.canonical && Encoder.rev < Encoder.fwd {
		return Encoder.rev, true
	}
	return Encoder.fwd, true
}

// Stream lazily yields the code of every k-length window of a sequence, left to right.
// It is single pass: once exhausted, a new Stream is needed to re-scan
type Stream struct {
	seq []byte
	pos int
	enc *Encoder
}

// NewStream is the constructor for a Stream over the given sequence
func NewStream(seq []byte, kmerSize int, canonical, masked bool) (*Stream, error) {
	enc, err := NewEncoder(kmerSize, canonical, masked)
	if err != nil {
		return nil, err
	}
	return &Stream{seq: seq, enc: enc}, nil
}

// Next returns the next k-mer code, or ok == false once the sequence is exhausted
func (Stream *Stream) Next() (code uint64, ok bool) {
	for Stream.pos < len(Stream.seq) {
		code, emitted := Stream.enc.Consume(Stream.seq[Stream.pos])
		Stream.pos++
		if emitted {
			return code, true
		}
	}
	return 0, false
}

// EncodeKmer packs a single k-mer into its code, where k is the length of the supplied
// sequence. It errors if the sequence contains an invalid base under the masked policy
func EncodeKmer(kmer []byte, canonical, masked bool) (uint64, error) {
	stream, err := NewStream(kmer, len(kmer), canonical, masked)
	if err != nil {
		return 0, err
	}
	code, ok := stream.Next()
	if !ok {
		return 0, fmt.Errorf("k-mer contains an invalid base: %v", string(kmer))
	}
	return code, nil
}

// Decode unpacks a code back into its k-mer sequence. It is the exact left inverse of the
// encoder's packing: bases are extracted two bits at a time from the least significant end
// (the last position of the k-mer) upwards
func Decode(code uint64, kmerSize int) ([]byte, error) {
	if kmerSize <= 0 {
		return nil, fmt.Errorf("k-mer size must be greater than 0 (got %d)", kmerSize)
	}
	if kmerSize > MaxK {
		return nil, fmt.Errorf("k-mer size must be <= %d to pack into 64 bits (got %d)", MaxK, kmerSize)
	}
	if kmerSize < MaxK && code >= uint64(1)<<uint64(2*kmerSize) {
		return nil, fmt.Errorf("code %d does not fit in %d bits", code, 2*kmerSize)
	}
	kmer := make([]byte, kmerSize)
	for x := 0; x < kmerSize; x++ {
		kmer[kmerSize-1-x] = bases[(code>>uint64(2*x))&3]
	}
	return kmer, nil
}

// ReverseComplement returns the code of the reverse complement of the k-mer held in the
// supplied code
func ReverseComplement(code uint64, kmerSize int) uint64 {
	var rc uint64
	for x := 0; x < kmerSize; x++ {
		rc = rc<<2 | (3 - (code & 3))
		code >>= 2
	}
	return rc
}
