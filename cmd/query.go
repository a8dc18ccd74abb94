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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kmer-tools/gomer/src/counter"
	"github.com/kmer-tools/gomer/src/misc"
	"github.com/kmer-tools/gomer/src/sketch"
)

// the command line arguments
var (
	querySketchDir *string // the directory holding the dumped sketch
	kmerFile       *string // a file of k-mers to query, one per line
)

// the query command (used by cobra)
var queryCmd = &cobra.Command{
	Use:   "query [k-mers]",
	Short: "Report the estimated counts of k-mers from a dumped sketch",
	Long: `Report the estimated counts of k-mers from a dumped sketch.

K-mers are taken from the command line arguments, from a file (--kmerFile), or one per
line on STDIN. The reported counts are never below the true counts.`,
	Run: func(cmd *cobra.Command, args []string) {
		runQuery(args)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	querySketchDir = queryCmd.Flags().StringP("sketchDir", "s", "", "directory holding the dumped sketch - required")
	kmerFile = queryCmd.Flags().StringP("kmerFile", "f", "", "file of k-mers to query, one per line")
	queryCmd.MarkFlagRequired("sketchDir")
	RootCmd.AddCommand(queryCmd)
}

// a function to check user supplied parameters
func queryParamCheck() error {
	if err := misc.CheckDir(*querySketchDir); err != nil {
		return err
	}
	if err := misc.CheckFile(filepath.Join(*querySketchDir, sketchFileName)); err != nil {
		return err
	}
	if err := misc.CheckFile(filepath.Join(*querySketchDir, infoFileName)); err != nil {
		return err
	}
	if *kmerFile != "" {
		return misc.CheckFile(*kmerFile)
	}
	return nil
}

// loadCounter reloads a dumped sketch and rebuilds a matching k-mer counter
func loadCounter(sketchDir string) *counter.KmerCounter {
	info := &misc.SketchInfo{}
	misc.ErrorCheck(info.Load(filepath.Join(sketchDir, infoFileName)))
	cms := &sketch.CountMinSketch{}
	misc.ErrorCheck(cms.Load(filepath.Join(sketchDir, sketchFileName)))
	kc, err := counter.NewKmerCounter(info.KmerSize, info.Canonical, info.Masked, cms)
	misc.ErrorCheck(err)
	return kc
}

/*
  The main function for the query sub-command
*/
func runQuery(args []string) {
	misc.ErrorCheck(queryParamCheck())
	kc := loadCounter(*querySketchDir)

	// collect the query k-mers
	kmers := args
	if *kmerFile != "" {
		fh, err := os.Open(*kmerFile)
		misc.ErrorCheck(err)
		defer fh.Close()
		scanner := bufio.NewScanner(fh)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				kmers = append(kmers, line)
			}
		}
		misc.ErrorCheck(scanner.Err())
	}
	if len(kmers) == 0 {
		misc.ErrorCheck(misc.CheckSTDIN())
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				kmers = append(kmers, line)
			}
		}
		misc.ErrorCheck(scanner.Err())
	}
	if len(kmers) == 0 {
		misc.ErrorCheck(fmt.Errorf("no k-mers to query"))
	}

	// report the estimates
	for _, kmer := range kmers {
		count, err := kc.Get([]byte(kmer))
		misc.ErrorCheck(err)
		fmt.Printf("%v\t%d\n", kmer, count)
	}
}
