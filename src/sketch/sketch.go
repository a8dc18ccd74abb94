// Package sketch contains a Count-Min Sketch: a fixed-memory, probabilistic multiset
// counter with saturating counters, used to estimate k-mer frequencies without storing
// every distinct k-mer
package sketch

import (
	"encoding/binary"
	"fmt"
	"io/ioutil"
	"math"

	"github.com/dgryski/go-metro"
	"gopkg.in/vmihailenco/msgpack.v2"

	"github.com/kmer-tools/gomer/src/inthash"
)

// mixSeed feeds the integer mixer when deriving the per-table hash seeds
const mixSeed = 42

// CountMinSketch is a 2-dimensional array of saturating counters, addressed by Depth
// independent keyed hashes of each item. The counters are held in uint64 cells but clamp
// at the ceiling fixed by CounterBits, so the saturation behaviour of narrower counters
// is preserved. The exported fields are serialised by Dump/Load; the shape is fixed at
// construction and never changes
type CountMinSketch struct {
	Depth       int
	Width       int
	CounterBits uint
	Tables      [][]uint64
	seeds       []uint64
	ceiling     uint64
}

// New is the constructor for a CountMinSketch with d hash tables of w buckets each,
// holding counters that saturate at 2^counterBits - 1
func New(d, w int, counterBits uint) (*CountMinSketch, error) {
	s := &CountMinSketch{
		Depth:       d,
		Width:       w,
		CounterBits: counterBits,
	}
	if err := s.checkShape(); err != nil {
		return nil, err
	}
	s.Tables = make([][]uint64, d)
	for tab := range s.Tables {
		s.Tables[tab] = make([]uint64, w)
	}
	s.setup()
	return s, nil
}

// NewWithEstimates sizes a sketch from an error rate and confidence: point queries are
// within a factor of epsilon of the true count with probability delta
func NewWithEstimates(epsilon, delta float64, counterBits uint) (*CountMinSketch, error) {
	if epsilon <= 0 || epsilon >= 1 {
		return nil, fmt.Errorf("epsilon must be in range (0, 1): %f", epsilon)
	}
	if delta <= 0 || delta >= 1 {
		return nil, fmt.Errorf("delta must be in range (0, 1): %f", delta)
	}
	w := int(math.Ceil(2 / epsilon))
	d := int(math.Ceil(math.Log(1-delta) / math.Log(0.5)))
	return New(d, w, counterBits)
}

// checkShape validates the construction parameters
func (CountMinSketch *CountMinSketch) checkShape() error {
	if CountMinSketch.Depth < 1 {
		return fmt.Errorf("sketch depth must be >= 1 (got %d)", CountMinSketch.Depth)
	}
	if CountMinSketch.Width < 1 {
		return fmt.Errorf("sketch width must be >= 1 (got %d)", CountMinSketch.Width)
	}
	switch CountMinSketch.CounterBits {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("counter width must be 8, 16, 32 or 64 bits (got %d)", CountMinSketch.CounterBits)
	}
	return nil
}

// setup derives the unexported state from the sketch shape: the saturation ceiling and
// one hash seed per table, diversified through the integer mixer so the tables hash
// independently
func (CountMinSketch *CountMinSketch) setup() {
	if CountMinSketch.CounterBits == 64 {
		CountMinSketch.ceiling = math.MaxUint64
	} else {
		CountMinSketch.ceiling = (uint64(1) << CountMinSketch.CounterBits) - 1
	}
	CountMinSketch.seeds = make([]uint64, CountMinSketch.Depth)
	for tab := range CountMinSketch.seeds {
		CountMinSketch.seeds[tab] = uint64(inthash.Mix(uint64(tab), mixSeed))
	}
}

// Ceiling returns the maximum value a counter can hold before saturating
func (CountMinSketch *CountMinSketch) Ceiling() uint64 {
	return CountMinSketch.ceiling
}

// bucket returns the bucket addressed by an item in the given table
func (CountMinSketch *CountMinSketch) bucket(item uint64, tab int) uint64 {
	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], item)
	return metro.Hash64(key[:], CountMinSketch.seeds[tab]) % uint64(CountMinSketch.Width)
}

// Increment adds by to the counter addressed by the item in every table, clamping at the
// ceiling rather than wrapping
func (CountMinSketch *CountMinSketch) Increment(item, by uint64) {
	for tab := 0; tab < CountMinSketch.Depth; tab++ {
		bucket := CountMinSketch.bucket(item, tab)
		if by > CountMinSketch.ceiling-CountMinSketch.Tables[tab][bucket] {
			CountMinSketch.Tables[tab][bucket] = CountMinSketch.ceiling
		} else {
			CountMinSketch.Tables[tab][bucket] += by
		}
	}
}

// Decrement subtracts by from the counter addressed by the item in every table, clamping
// at 0 rather than wrapping
func (CountMinSketch *CountMinSketch) Decrement(item, by uint64) {
	for tab := 0; tab < CountMinSketch.Depth; tab++ {
		bucket := CountMinSketch.bucket(item, tab)
		if by > CountMinSketch.Tables[tab][bucket] {
			CountMinSketch.Tables[tab][bucket] = 0
		} else {
			CountMinSketch.Tables[tab][bucket] -= by
		}
	}
}

// Query returns the estimated count for an item: the minimum of the addressed counters
// across all tables. The minimum never underestimates the true count and keeps the
// one-sided Count-Min error bound
func (CountMinSketch *CountMinSketch) Query(item uint64) uint64 {
	var min uint64 = math.MaxUint64
	for tab := 0; tab < CountMinSketch.Depth; tab++ {
		bucket := CountMinSketch.bucket(item, tab)
		if CountMinSketch.Tables[tab][bucket] < min {
			min = CountMinSketch.Tables[tab][bucket]
		}
	}
	return min
}

// Set overwrites the counter addressed by the item in every table with the given value,
// bypassing the saturating arithmetic. It is intended for seeding known values rather
// than normal counting. The value is checked against the counter ceiling before any cell
// is touched
func (CountMinSketch *CountMinSketch) Set(item, value uint64) error {
	if value > CountMinSketch.ceiling {
		return fmt.Errorf("value %d does not fit in a %d bit counter", value, CountMinSketch.CounterBits)
	}
	for tab := 0; tab < CountMinSketch.Depth; tab++ {
		CountMinSketch.Tables[tab][CountMinSketch.bucket(item, tab)] = value
	}
	return nil
}

// Wipe resets every counter to 0, keeping the sketch shape
func (CountMinSketch *CountMinSketch) Wipe() {
	for tab := range CountMinSketch.Tables {
		for bucket := range CountMinSketch.Tables[tab] {
			CountMinSketch.Tables[tab][bucket] = 0
		}
	}
}

// Counters returns a copy of the requested table, for spectrum reporting
func (CountMinSketch *CountMinSketch) Counters(tab int) ([]uint64, error) {
	if tab < 0 || tab >= CountMinSketch.Depth {
		return nil, fmt.Errorf("table index out of range: %d", tab)
	}
	counters := make([]uint64, CountMinSketch.Width)
	copy(counters, CountMinSketch.Tables[tab])
	return counters, nil
}

// Dump a sketch to disk
func (CountMinSketch *CountMinSketch) Dump(path string) error {
	b, err := msgpack.Marshal(CountMinSketch)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, b, 0644)
}

// Load a sketch from disk, rebuilding the derived hash seeds and saturation ceiling
func (CountMinSketch *CountMinSketch) Load(path string) error {
	b, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(b, CountMinSketch); err != nil {
		return err
	}
	if err := CountMinSketch.checkShape(); err != nil {
		return fmt.Errorf("loaded sketch is malformed: %v", err)
	}
	if len(CountMinSketch.Tables) != CountMinSketch.Depth {
		return fmt.Errorf("loaded sketch is malformed: %d tables for depth %d", len(CountMinSketch.Tables), CountMinSketch.Depth)
	}
	for tab := range CountMinSketch.Tables {
		if len(CountMinSketch.Tables[tab]) != CountMinSketch.Width {
			return fmt.Errorf("loaded sketch is malformed: table %d has %d buckets for width %d", tab, len(CountMinSketch.Tables[tab]), CountMinSketch.Width)
		}
	}
	CountMinSketch.setup()
	return nil
}
