package misc

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/vmihailenco/msgpack.v2"
)

// SketchInfo records the parameters a sketch was built with, so that a dumped sketch is
// self-describing and the query/plot subcommands can rebuild a matching encoder
type SketchInfo struct {
	Version     string
	KmerSize    int
	Canonical   bool
	Masked      bool
	Depth       int
	Width       int
	CounterBits uint
}

// Dump the sketch info to disk
func (SketchInfo *SketchInfo) Dump(path string) error {
	b, err := msgpack.Marshal(SketchInfo)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, b, 0644)
}

// Load the sketch info from disk
func (SketchInfo *SketchInfo) Load(path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(b, SketchInfo); err != nil {
		return err
	}
	if SketchInfo.KmerSize <= 0 {
		return fmt.Errorf("loaded sketch info is malformed: k-mer size %d", SketchInfo.KmerSize)
	}
	return nil
}
