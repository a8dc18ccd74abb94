/*
	the stream package contains a streaming implementation based on the Gopher Academy article by S. Lampa - Patterns for composable concurrent pipelines in Go (https://blog.gopheracademy.com/advent-2015/composable-pipelines-improvements/)
*/
package stream

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"log"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	bioseqio "github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/bgzf"

	"github.com/kmer-tools/gomer/src/counter"
	"github.com/kmer-tools/gomer/src/misc"
	"github.com/kmer-tools/gomer/src/seqio"
)

const (
	BUFFERSIZE = 128 // buffer size to use for channels
)

/*
  The process interface
*/
type process interface {
	Run()
}

/*
  The basic pipeline - takes a list of Processes and runs them in Go routines, the last process is ran in the fg
*/
type Pipeline struct {
	Processes []process
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func (pl *Pipeline) AddProcess(proc process) {
	pl.Processes = append(pl.Processes, proc)
}

func (pl *Pipeline) AddProcesses(procs ...process) {
	for _, proc := range procs {
		pl.AddProcess(proc)
	}
}

func (pl *Pipeline) Run() {
	for i, proc := range pl.Processes {
		if i < len(pl.Processes)-1 {
			go proc.Run()
		} else {
			proc.Run()
		}
	}
}

/*
  A process to stream data from STDIN/file
*/
type DataStreamer struct {
	process
	Output    chan []byte
	InputFile []string
}

func NewDataStreamer() *DataStreamer {
	return &DataStreamer{Output: make(chan []byte, BUFFERSIZE)}
}

func (proc *DataStreamer) Run() {
	var scanner *bufio.Scanner
	// if an input file path has not been provided, scan the contents of STDIN
	if len(proc.InputFile) == 0 {
		scanner = bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			// important: copy content of scan to a new slice before sending, this avoids race conditions (as we are using multiple go routines) from concurrent slice access
			proc.Output <- append([]byte(nil), scanner.Bytes()...)
		}
		if scanner.Err() != nil {
			log.Fatal(scanner.Err())
		}
	} else {
		for i := 0; i < len(proc.InputFile); i++ {
			fh, err := os.Open(proc.InputFile[i])
			misc.ErrorCheck(err)
			defer fh.Close()
			// handle gzipped input
			splitFilename := strings.Split(proc.InputFile[i], ".")
			if splitFilename[len(splitFilename)-1] == "gz" {
				gz, err := gzip.NewReader(fh)
				misc.ErrorCheck(err)
				defer gz.Close()
				scanner = bufio.NewScanner(gz)
			} else {
				scanner = bufio.NewScanner(fh)
			}
			for scanner.Scan() {
				proc.Output <- append([]byte(nil), scanner.Bytes()...)
			}
			if scanner.Err() != nil {
				log.Fatal(scanner.Err())
			}
		}
	}
	close(proc.Output)
}

/*
  A process to generate FASTQ reads from a stream of bytes
*/
type FastqHandler struct {
	process
	Input   chan []byte
	Output  chan seqio.Sequence
	MinQual int // quality trim reads before counting when > 0
}

func NewFastqHandler() *FastqHandler {
	return &FastqHandler{Output: make(chan seqio.Sequence, BUFFERSIZE)}
}

func (proc *FastqHandler) Run() {
	defer close(proc.Output)
	var l1, l2, l3, l4 []byte
	// grab four lines and create a new FASTQread struct from them - perform some format checks and trim low quality bases
	for line := range proc.Input {
		if l1 == nil {
			l1 = line
		} else if l2 == nil {
			l2 = line
		} else if l3 == nil {
			l3 = line
		} else if l4 == nil {
			l4 = line
			// create fastq read
			newRead, err := seqio.NewFASTQread(l1, l2, l3, l4)
			if err != nil {
				log.Fatal(err)
			}
			if proc.MinQual > 0 {
				newRead.QualTrim(proc.MinQual)
			}
			// send on the new read and reset the line stores
			proc.Output <- newRead.Sequence
			l1, l2, l3, l4 = nil, nil, nil, nil
		}
	}
}

/*
  A process to stream FASTA entries from files, using the biogo sequence readers
*/
type FastaStreamer struct {
	process
	Output    chan seqio.Sequence
	InputFile []string
}

func NewFastaStreamer() *FastaStreamer {
	return &FastaStreamer{Output: make(chan seqio.Sequence, BUFFERSIZE)}
}

func (proc *FastaStreamer) Run() {
	defer close(proc.Output)
	for i := 0; i < len(proc.InputFile); i++ {
		fh, err := os.Open(proc.InputFile[i])
		misc.ErrorCheck(err)
		defer fh.Close()
		// handle gzipped input
		var r io.Reader = fh
		splitFilename := strings.Split(proc.InputFile[i], ".")
		if splitFilename[len(splitFilename)-1] == "gz" {
			gz, err := gzip.NewReader(fh)
			misc.ErrorCheck(err)
			defer gz.Close()
			r = gz
		}
		// use the redundant DNA alphabet so that Ns and other ambiguity codes pass through to the base checker
		template := linear.NewSeq("", nil, alphabet.DNAredundant)
		scanner := bioseqio.NewScanner(fasta.NewReader(r, template))
		for scanner.Next() {
			entry := scanner.Seq().(*linear.Seq)
			proc.Output <- seqio.Sequence{
				ID:  []byte(entry.Name()),
				Seq: []byte(entry.Seq.String()),
			}
		}
		misc.ErrorCheck(scanner.Error())
	}
}

/*
  A process to stream the reads held in BAM files
*/
type BamStreamer struct {
	process
	Output    chan seqio.Sequence
	InputFile []string
}

func NewBamStreamer() *BamStreamer {
	return &BamStreamer{Output: make(chan seqio.Sequence, BUFFERSIZE)}
}

func (proc *BamStreamer) Run() {
	defer close(proc.Output)
	for i := 0; i < len(proc.InputFile); i++ {
		fh, err := os.Open(proc.InputFile[i])
		misc.ErrorCheck(err)
		defer fh.Close()
		ok, err := bgzf.HasEOF(fh)
		misc.ErrorCheck(err)
		if !ok {
			log.Printf("file %q has no bgzf magic block: may be truncated", proc.InputFile[i])
		}
		b, err := bam.NewReader(fh, 0)
		misc.ErrorCheck(err)
		// all records are streamed, aligned or not - counting does not care about mapping state
		for {
			record, err := b.Read()
			if err == io.EOF {
				break
			}
			misc.ErrorCheck(err)
			proc.Output <- seqio.Sequence{
				ID:  []byte(record.Name),
				Seq: record.Seq.Expand(),
			}
		}
		misc.ErrorCheck(b.Close())
	}
}

/*
  A process to drive the pipeline, feeding every received sequence to a k-mer counter
*/
type CounterMinion struct {
	process
	Input    chan seqio.Sequence
	Counter  *counter.KmerCounter
	Subtract bool // subtract the k-mers instead of counting them
}

func NewCounterMinion() *CounterMinion {
	return &CounterMinion{}
}

func (proc *CounterMinion) Run() {
	log.Printf("now streaming sequences...")
	rawCount, shortCount, lengthTotal, kmerTotal := 0, 0, 0, 0
	for sequence := range proc.Input {
		rawCount++
		lengthTotal += len(sequence.Seq)
		// convert any junk bases to Ns so that the encoder skips them
		misc.ErrorCheck(sequence.BaseCheck())
		var tally int
		var err error
		if proc.Subtract {
			tally, err = proc.Counter.Unconsume(sequence.Seq)
		} else {
			tally, err = proc.Counter.Consume(sequence.Seq)
		}
		// don't let a short read abort a whole run, just tally and move on
		if err != nil {
			shortCount++
			continue
		}
		kmerTotal += tally
	}
	// check we have received sequences & print stats
	if rawCount == 0 {
		misc.ErrorCheck(errors.New("no sequences received from input"))
	}
	log.Printf("\tnumber of sequences received from input: %d\n", rawCount)
	log.Printf("\tmean sequence length: %.0f\n", float64(lengthTotal)/float64(rawCount))
	if shortCount != 0 {
		log.Printf("\tsequences shorter than k (skipped): %d\n", shortCount)
	}
	if proc.Subtract {
		log.Printf("\tnumber of k-mers subtracted: %d\n", kmerTotal)
	} else {
		log.Printf("\tnumber of k-mers counted: %d\n", kmerTotal)
	}
}
