package counter

import (
	"testing"

	"github.com/kmer-tools/gomer/src/sketch"
)

// setup variables
var (
	// de Bruijn DNA sequences for k={2,3}, i.e. they contain every 2/3-mer exactly once
	k2DBS = []byte("AACAGATCCGCTGGTTA")
	k3DBS = []byte("AAACAAGAATACCACGACTAGCAGGAGTATCATGATTCCCGCCTCGGCGTCTGCTTGGGTGTTTAA")
)

// allKmers yields every k-mer over ACGT
func allKmers(k int) [][]byte {
	kmers := [][]byte{{}}
	for i := 0; i < k; i++ {
		next := make([][]byte, 0, len(kmers)*4)
		for _, prefix := range kmers {
			for _, base := range []byte("ACGT") {
				kmer := append(append([]byte{}, prefix...), base)
				next = append(next, kmer)
			}
		}
		kmers = next
	}
	return kmers
}

func newTestCounter(t *testing.T, k int) *KmerCounter {
	cms, err := sketch.New(4, 10000, 16)
	if err != nil {
		t.Fatal(err)
	}
	kc, err := NewKmerCounter(k, false, false, cms)
	if err != nil {
		t.Fatal(err)
	}
	return kc
}

func TestCounterConstructor(t *testing.T) {
	cms, err := sketch.New(4, 100, 16)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewKmerCounter(0, false, false, cms); err == nil {
		t.Fatal("k = 0 should be rejected")
	}
	if _, err := NewKmerCounter(33, false, false, cms); err == nil {
		t.Fatal("k = 33 should be rejected")
	}
	if _, err := NewKmerCounter(3, false, false, nil); err == nil {
		t.Fatal("a nil sketch should be rejected")
	}
}

// consuming a de Bruijn sequence counts every k-mer exactly once
func TestConsume(t *testing.T) {
	kc := newTestCounter(t, 2)
	tally, err := kc.Consume(k2DBS)
	if err != nil {
		t.Fatal(err)
	}
	if tally != len(k2DBS)-1 {
		t.Fatalf("expected %d k-mers counted, got %d", len(k2DBS)-1, tally)
	}
	for _, kmer := range allKmers(2) {
		count, err := kc.Get(kmer)
		if err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Fatalf("k-mer %v counted %d times, expected once", string(kmer), count)
		}
	}
}

// unconsuming returns every count to 0, and floors there even when over-subtracted
func TestUnconsume(t *testing.T) {
	kc := newTestCounter(t, 3)
	if _, err := kc.Consume(k3DBS); err != nil {
		t.Fatal(err)
	}
	for _, kmer := range allKmers(3) {
		count, err := kc.Get(kmer)
		if err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Fatalf("k-mer %v counted %d times, expected once", string(kmer), count)
		}
	}
	if _, err := kc.Unconsume(k3DBS); err != nil {
		t.Fatal(err)
	}
	for _, kmer := range allKmers(3) {
		count, err := kc.Get(kmer)
		if err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Fatalf("k-mer %v counted %d times after unconsume, expected 0", string(kmer), count)
		}
	}

	// a second unconsume must floor at 0, not wrap
	if _, err := kc.Unconsume(k3DBS); err != nil {
		t.Fatal(err)
	}
	for _, kmer := range allKmers(3) {
		count, err := kc.Get(kmer)
		if err != nil {
			t.Fatal(err)
		}
		if count != 0 {
			t.Fatalf("k-mer %v wrapped on over-subtraction: %d", string(kmer), count)
		}
	}
}

// invalid bases are skipped, never counted
func TestConsumeWithNs(t *testing.T) {
	kc := newTestCounter(t, 3)
	tally, err := kc.Consume([]byte("ACGTNACGT"))
	if err != nil {
		t.Fatal(err)
	}
	if tally != 4 {
		t.Fatalf("expected 4 k-mers counted across the N, got %d", tally)
	}
	for kmer, expected := range map[string]uint64{"ACG": 2, "CGT": 2, "GTN": 0, "TNA": 0, "NAC": 0} {
		count, err := kc.Get([]byte(kmer))
		if kmer == "GTN" || kmer == "TNA" || kmer == "NAC" {
			// k-mers containing an N cannot be encoded, let alone counted
			if err == nil {
				t.Fatalf("querying %v should fail", kmer)
			}
			continue
		}
		if err != nil {
			t.Fatal(err)
		}
		if count != expected {
			t.Fatalf("k-mer %v counted %d times, expected %d", kmer, count, expected)
		}
	}
}

// canonical counting is strand independent
func TestCanonicalCounting(t *testing.T) {
	cms, err := sketch.New(4, 10000, 16)
	if err != nil {
		t.Fatal(err)
	}
	kc, err := NewKmerCounter(4, true, false, cms)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := kc.Consume([]byte("AAAACCCC")); err != nil {
		t.Fatal(err)
	}
	// the reverse complement strand must report the same counts
	fwd, err := kc.Get([]byte("AAAA"))
	if err != nil {
		t.Fatal(err)
	}
	rev, err := kc.Get([]byte("TTTT"))
	if err != nil {
		t.Fatal(err)
	}
	if fwd != rev || fwd != 1 {
		t.Fatalf("canonical counting is strand dependent: %d vs %d", fwd, rev)
	}
}

func TestShortSequence(t *testing.T) {
	kc := newTestCounter(t, 5)
	if _, err := kc.Consume([]byte("ACGT")); err == nil {
		t.Fatal("sequences shorter than k should be rejected")
	}
	if _, err := kc.Get([]byte("ACG")); err == nil {
		t.Fatal("query k-mers of the wrong length should be rejected")
	}
}
