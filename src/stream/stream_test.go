package stream

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/kmer-tools/gomer/src/counter"
	"github.com/kmer-tools/gomer/src/seqio"
	"github.com/kmer-tools/gomer/src/sketch"
)

// a couple of fastq reads for testing
var testFastq = []byte(`@read1
ACGTACGTACGT
+
IIIIIIIIIIII
@read2
TTTTACGTNACG
+
IIIIIIIIIIII
`)

func TestDataStreamer(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "stream-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)
	testFile := filepath.Join(tmpDir, "test.fastq")
	if err := ioutil.WriteFile(testFile, testFastq, 0644); err != nil {
		t.Fatal(err)
	}

	streamer := NewDataStreamer()
	streamer.InputFile = []string{testFile}
	go streamer.Run()
	lineCount := 0
	for range streamer.Output {
		lineCount++
	}
	if lineCount != 8 {
		t.Fatalf("expected 8 lines from the test fastq, got %d", lineCount)
	}
}

func TestFastqHandler(t *testing.T) {
	handler := NewFastqHandler()
	handler.Input = make(chan []byte, BUFFERSIZE)
	for _, line := range [][]byte{
		[]byte("@read1"), []byte("ACGTACGTACGT"), []byte("+"), []byte("IIIIIIIIIIII"),
		[]byte("@read2"), []byte("TTTTACGTNACG"), []byte("+"), []byte("IIIIIIIIIIII"),
	} {
		handler.Input <- line
	}
	close(handler.Input)
	go handler.Run()
	sequences := []seqio.Sequence{}
	for sequence := range handler.Output {
		sequences = append(sequences, sequence)
	}
	if len(sequences) != 2 {
		t.Fatalf("expected 2 reads from the handler, got %d", len(sequences))
	}
	if string(sequences[0].Seq) != "ACGTACGTACGT" {
		t.Fatalf("unexpected sequence from the handler: %v", string(sequences[0].Seq))
	}
}

func TestCounterMinion(t *testing.T) {
	cms, err := sketch.New(4, 10000, 16)
	if err != nil {
		t.Fatal(err)
	}
	kc, err := counter.NewKmerCounter(3, false, false, cms)
	if err != nil {
		t.Fatal(err)
	}

	input := make(chan seqio.Sequence, BUFFERSIZE)
	input <- seqio.Sequence{ID: []byte("read1"), Seq: []byte("ACGTACGT")}
	input <- seqio.Sequence{ID: []byte("short"), Seq: []byte("AC")}
	close(input)

	minion := NewCounterMinion()
	minion.Input = input
	minion.Counter = kc
	minion.Run()

	count, err := kc.Get([]byte("ACG"))
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("expected ACG to be counted twice, got %d", count)
	}
}
