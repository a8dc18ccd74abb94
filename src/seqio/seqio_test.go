package seqio

import (
	"testing"
)

// setup variables
var (
	l1 = []byte("@0_chr1_0_186027_186126_263_(Bla)BIC-1:GQ260093:1-885:885")
	l2 = []byte("acagcaggaaggcttactggagaaacgtatcgactataagaatcgggtgatggaacctcactctcccatcagcgcacaacatagttcgacgggtatgacc")
	l3 = []byte("+")
	l4 = []byte("====@==@AAD?>D@@==DACBC?@BB@C==AB==A@D>AD==?CB==@=B?=A>D?=DB=?>>D@EB===??=@C=?C>@>@B>=====?@>=")
)

// test results
var (
	expectedUpperCase   = []byte("ACAGCAGGAAGGCTTACTGGAGAAACGTATCGACTATAAGAATCGGGTGATGGAACCTCACTCTCCCATCAGCGCACAACATAGTTCGACGGGTATGACC")
	expectedBaseChecked = []byte("ACGTNNACGT")
)

// test functions to check equality of slices
func ByteSliceCheck(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestReadConstructor(t *testing.T) {
	if _, err := NewFASTQread(l1, l2, l3, l4); err != nil {
		t.Fatalf("could not generate FASTQ read using NewFASTQread")
	}
	// the header line must start with @
	if _, err := NewFASTQread(l2, l2, l3, l4); err == nil {
		t.Fatalf("NewFASTQread should reject a header line without @")
	}
}

func TestBaseCheck(t *testing.T) {
	read, err := NewFASTQread(l1, append([]byte(nil), l2...), l3, l4)
	if err != nil {
		t.Fatalf("could not generate FASTQ read using NewFASTQread")
	}
	read.BaseCheck()
	if ByteSliceCheck(read.Seq, expectedUpperCase) == false {
		t.Errorf("BaseCheck method failed to upper case the sequence")
	}

	// non-nucleotide symbols become Ns
	junk := Sequence{ID: []byte("junk"), Seq: []byte("ACGT-RACGT")}
	junk.BaseCheck()
	if ByteSliceCheck(junk.Seq, expectedBaseChecked) == false {
		t.Errorf("BaseCheck method failed to replace junk bases with N: %v", string(junk.Seq))
	}
}

func TestRevComplement(t *testing.T) {
	read, err := NewFASTQread([]byte("@test"), []byte("AACGTN"), l3, []byte("IIIIII"))
	if err != nil {
		t.Fatal(err)
	}
	read.RevComplement()
	if ByteSliceCheck(read.Seq, []byte("NACGTT")) == false {
		t.Errorf("RevComplement method failed: %v", string(read.Seq))
	}
	if read.RC != true {
		t.Errorf("RevComplement method did not flip the RC flag")
	}
	read.RevComplement()
	if ByteSliceCheck(read.Seq, []byte("AACGTN")) == false {
		t.Errorf("double RevComplement should restore the sequence: %v", string(read.Seq))
	}
}
