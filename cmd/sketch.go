// Copyright © 2018 the GOMER authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/kmer-tools/gomer/src/counter"
	"github.com/kmer-tools/gomer/src/misc"
	"github.com/kmer-tools/gomer/src/sketch"
	"github.com/kmer-tools/gomer/src/stream"
	"github.com/kmer-tools/gomer/src/version"
)

// the names used for the files making up a dumped sketch
const (
	sketchFileName = "gomer.cms"
	infoFileName   = "gomer.info"
	logFileName    = "gomer.log"
)

// the command line arguments
var (
	kmerSize      *int                                                              // size of k-mer
	sketchDepth   *int                                                              // number of hash tables in the sketch
	sketchWidth   *int                                                              // number of buckets per hash table
	counterBits   *uint                                                             // bit width of the saturating counters
	epsilon       *float64                                                          // size the sketch from an error rate instead of depth/width
	delta         *float64                                                          // confidence to go with epsilon
	canonical     *bool                                                             // collapse each k-mer with its reverse complement
	maskLowercase *bool                                                             // treat lower case (soft-masked) bases as invalid
	minQual       *int                                                              // quality trim FASTQ reads before counting
	inputFiles    []string                                                          // the input sequence files
	fasta         *bool                                                             // input files are FASTA
	bams          *bool                                                             // input files are BAM
	subtract      *bool                                                             // subtract the input k-mers from an existing sketch
	prevSketch    *string                                                           // an existing sketch directory to add to / subtract from
	outDir        *string                                                           // directory to save the sketch files and log to
	defaultOutDir = "./gomer-sketch-" + string(time.Now().Format("20060102150405")) // a default dir to store the sketch files
)

// the sketch command (used by cobra)
var sketchCmd = &cobra.Command{
	Use:   "sketch",
	Short: "Count the k-mers of sequence files into a Count-Min Sketch",
	Long:  `Count the k-mers of sequence files into a Count-Min Sketch`,
	Run: func(cmd *cobra.Command, args []string) {
		inputFiles = append(inputFiles, args...)
		runSketch()
	},
}

// a function to initialise the command line arguments
func init() {
	kmerSize = sketchCmd.Flags().IntP("kmerSize", "k", 11, "size of k-mer")
	sketchDepth = sketchCmd.Flags().IntP("depth", "d", 4, "number of hash tables in the sketch")
	sketchWidth = sketchCmd.Flags().IntP("width", "w", 1000000, "number of buckets per hash table")
	counterBits = sketchCmd.Flags().UintP("counterBits", "c", 16, "bit width of the saturating counters (8/16/32/64)")
	epsilon = sketchCmd.Flags().Float64P("epsilon", "e", 0.0, "size the sketch from an error rate (overrides depth/width, requires --delta)")
	delta = sketchCmd.Flags().Float64P("delta", "x", 0.0, "confidence for --epsilon sizing")
	canonical = sketchCmd.Flags().Bool("canonical", false, "count each k-mer and its reverse complement as one")
	maskLowercase = sketchCmd.Flags().Bool("maskLowercase", false, "skip lower case (soft-masked) bases instead of counting them")
	minQual = sketchCmd.Flags().IntP("minQual", "q", 0, "quality trim FASTQ reads using this cutoff before counting (0 = no trimming)")
	sketchCmd.Flags().StringSliceVarP(&inputFiles, "inputFile", "i", []string{}, "input file(s) (FASTQ by default, set --fasta / --bam to override; gzipped input allowed; omit to read FASTQ from STDIN)")
	fasta = sketchCmd.Flags().Bool("fasta", false, "input files are FASTA format")
	bams = sketchCmd.Flags().Bool("bam", false, "input files are BAM format")
	subtract = sketchCmd.Flags().Bool("subtract", false, "subtract the input k-mers from the sketch given by --prevSketch")
	prevSketch = sketchCmd.Flags().String("prevSketch", "", "directory holding an existing sketch to add to (or subtract from)")
	outDir = sketchCmd.PersistentFlags().StringP("outDir", "o", defaultOutDir, "directory to save the sketch files to")
	RootCmd.AddCommand(sketchCmd)
}

// a function to check user supplied parameters
func sketchParamCheck() error {
	// check the input files
	for _, file := range inputFiles {
		if err := misc.CheckFile(file); err != nil {
			return err
		}
		if *fasta {
			if err := misc.CheckExt(file, []string{"fasta", "fa", "fna"}); err != nil {
				return err
			}
		} else if *bams {
			if err := misc.CheckExt(file, []string{"bam"}); err != nil {
				return err
			}
		} else {
			if err := misc.CheckExt(file, []string{"fastq", "fq"}); err != nil {
				return err
			}
		}
	}
	if len(inputFiles) == 0 {
		if *fasta || *bams {
			return fmt.Errorf("FASTA/BAM input must be supplied with --inputFile, STDIN is FASTQ only")
		}
		if err := misc.CheckSTDIN(); err != nil {
			return fmt.Errorf("no input files provided and no STDIN found")
		}
	}
	if *fasta && *bams {
		return fmt.Errorf("--fasta and --bam are mutually exclusive")
	}
	// sizing flags must come as a pair
	if (*epsilon > 0) != (*delta > 0) {
		return fmt.Errorf("--epsilon and --delta must be supplied together")
	}
	if *subtract && *prevSketch == "" {
		return fmt.Errorf("--subtract needs an existing sketch (--prevSketch)")
	}
	// setup the outDir
	if _, err := os.Stat(*outDir); os.IsNotExist(err) {
		if err := os.MkdirAll(*outDir, 0700); err != nil {
			return fmt.Errorf("can't create specified output directory")
		}
	}
	// set number of processors to use
	if *proc <= 0 || *proc > runtime.NumCPU() {
		*proc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(*proc)
	return nil
}

// prepareCounter builds (or reloads) the sketch and wraps it in a k-mer counter
func prepareCounter() *counter.KmerCounter {
	var cms *sketch.CountMinSketch
	var err error
	if *prevSketch != "" {
		// continuing from an existing sketch: its parameters win over the flags
		info := &misc.SketchInfo{}
		misc.ErrorCheck(info.Load(filepath.Join(*prevSketch, infoFileName)))
		cms = &sketch.CountMinSketch{}
		misc.ErrorCheck(cms.Load(filepath.Join(*prevSketch, sketchFileName)))
		*kmerSize = info.KmerSize
		*canonical = info.Canonical
		*maskLowercase = info.Masked
		log.Printf("\tloaded existing sketch: %v (k=%d, %d x %d)\n", *prevSketch, info.KmerSize, cms.Depth, cms.Width)
	} else if *epsilon > 0 {
		cms, err = sketch.NewWithEstimates(*epsilon, *delta, *counterBits)
		misc.ErrorCheck(err)
		log.Printf("\tsized sketch from error bounds: %d x %d\n", cms.Depth, cms.Width)
	} else {
		cms, err = sketch.New(*sketchDepth, *sketchWidth, *counterBits)
		misc.ErrorCheck(err)
	}
	kc, err := counter.NewKmerCounter(*kmerSize, *canonical, *maskLowercase, cms)
	misc.ErrorCheck(err)
	return kc
}

/*
  The main function for the sketch sub-command
*/
func runSketch() {
	// set up profiling
	if *profiling == true {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}
	// start logging
	logFH := misc.StartLogging(filepath.Join(*outDir, logFileName))
	defer logFH.Close()
	log.SetOutput(logFH)
	log.Printf("starting the sketch subcommand")
	log.Printf("\tversion: %v", version.GetVersion())
	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	misc.ErrorCheck(sketchParamCheck())
	log.Printf("\tk-mer size: %d", *kmerSize)
	log.Printf("\tcanonical k-mers: %v", *canonical)
	log.Printf("\tmask lower case bases: %v", *maskLowercase)
	log.Printf("\tprocessors: %d", *proc)
	for _, file := range inputFiles {
		log.Printf("\tinput file: %v", file)
	}

	// build the counter
	kc := prepareCounter()
	cms := kc.Sketch()
	log.Printf("\tsketch dimensions: %d tables x %d buckets (%d bit counters)", cms.Depth, cms.Width, cms.CounterBits)

	// assemble and run the streaming pipeline
	log.Printf("building the pipeline...")
	pipeline := stream.NewPipeline()
	minion := stream.NewCounterMinion()
	minion.Counter = kc
	minion.Subtract = *subtract
	if *fasta {
		fastaStreamer := stream.NewFastaStreamer()
		fastaStreamer.InputFile = inputFiles
		minion.Input = fastaStreamer.Output
		pipeline.AddProcesses(fastaStreamer, minion)
	} else if *bams {
		bamStreamer := stream.NewBamStreamer()
		bamStreamer.InputFile = inputFiles
		minion.Input = bamStreamer.Output
		pipeline.AddProcesses(bamStreamer, minion)
	} else {
		dataStreamer := stream.NewDataStreamer()
		dataStreamer.InputFile = inputFiles
		fastqHandler := stream.NewFastqHandler()
		fastqHandler.Input = dataStreamer.Output
		fastqHandler.MinQual = *minQual
		minion.Input = fastqHandler.Output
		pipeline.AddProcesses(dataStreamer, fastqHandler, minion)
	}
	log.Printf("counting...")
	pipeline.Run()

	// dump the sketch and its info to disk
	log.Printf("saving the sketch...")
	misc.ErrorCheck(cms.Dump(filepath.Join(*outDir, sketchFileName)))
	info := &misc.SketchInfo{
		Version:     version.GetVersion(),
		KmerSize:    *kmerSize,
		Canonical:   *canonical,
		Masked:      *maskLowercase,
		Depth:       cms.Depth,
		Width:       cms.Width,
		CounterBits: cms.CounterBits,
	}
	misc.ErrorCheck(info.Dump(filepath.Join(*outDir, infoFileName)))
	log.Printf("\tsketch saved to: %v", *outDir)
	log.Printf("finished")
}
