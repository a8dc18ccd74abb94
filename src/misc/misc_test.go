package misc

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestSketchInfoDumpLoad(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "misc-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)
	infoFile := filepath.Join(tmpDir, "test.info")

	info := &SketchInfo{
		Version:     "0.1.0",
		KmerSize:    21,
		Canonical:   true,
		Masked:      false,
		Depth:       4,
		Width:       100000,
		CounterBits: 16,
	}
	if err := info.Dump(infoFile); err != nil {
		t.Fatal(err)
	}

	loaded := &SketchInfo{}
	if err := loaded.Load(infoFile); err != nil {
		t.Fatal(err)
	}
	if *loaded != *info {
		t.Fatalf("sketch info changed across a dump/load round trip: %+v vs %+v", loaded, info)
	}
}

func TestCheckExt(t *testing.T) {
	if err := CheckExt("reads.fastq", []string{"fastq", "fq"}); err != nil {
		t.Fatal(err)
	}
	if err := CheckExt("reads.fastq.gz", []string{"fastq", "fq"}); err != nil {
		t.Fatal(err)
	}
	if err := CheckExt("reads.bam", []string{"fastq", "fq"}); err == nil {
		t.Fatal("bam file should not pass a fastq extension check")
	}
}
