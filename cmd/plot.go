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
	"path/filepath"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/kmer-tools/gomer/src/misc"
	"github.com/kmer-tools/gomer/src/sketch"
)

// the command line arguments
var (
	plotSketchDir *string // the directory holding the dumped sketch
	plotFile      *string // where to save the plot
	plotTable     *int    // which sketch table to take the counters from
)

// the plot command (used by cobra)
var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Plot the counter spectrum of a dumped sketch",
	Long: `Plot the counter spectrum of a dumped sketch.

The histogram of occupied counter values in one sketch table approximates the k-mer
abundance spectrum of the counted dataset.`,
	Run: func(cmd *cobra.Command, args []string) {
		runPlot()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	plotSketchDir = plotCmd.Flags().StringP("sketchDir", "s", "", "directory holding the dumped sketch - required")
	plotFile = plotCmd.Flags().StringP("plotFile", "o", "./gomer-spectrum.png", "file to save the plot to")
	plotTable = plotCmd.Flags().IntP("table", "t", 0, "sketch table to take the counters from")
	plotCmd.MarkFlagRequired("sketchDir")
	RootCmd.AddCommand(plotCmd)
}

// a function to check user supplied parameters
func plotParamCheck() error {
	if err := misc.CheckDir(*plotSketchDir); err != nil {
		return err
	}
	return misc.CheckFile(filepath.Join(*plotSketchDir, sketchFileName))
}

/*
  The main function for the plot sub-command
*/
func runPlot() {
	misc.ErrorCheck(plotParamCheck())

	// load the sketch and grab the requested table
	cms := &sketch.CountMinSketch{}
	misc.ErrorCheck(cms.Load(filepath.Join(*plotSketchDir, sketchFileName)))
	counters, err := cms.Counters(*plotTable)
	misc.ErrorCheck(err)

	// empty buckets would swamp the histogram, only plot the occupied ones
	values := make(plotter.Values, 0, len(counters))
	for _, counter := range counters {
		if counter > 0 {
			values = append(values, float64(counter))
		}
	}
	if len(values) == 0 {
		misc.ErrorCheck(fmt.Errorf("the sketch is empty, nothing to plot"))
	}

	// plot the spectrum
	spectrumPlot, err := plot.New()
	misc.ErrorCheck(err)
	spectrumPlot.Title.Text = "approximate k-mer abundance spectrum"
	spectrumPlot.X.Label.Text = "counter value"
	spectrumPlot.Y.Label.Text = "number of buckets"
	hist, err := plotter.NewHist(values, 50)
	misc.ErrorCheck(err)
	spectrumPlot.Add(hist)
	misc.ErrorCheck(spectrumPlot.Save(8*vg.Inch, 4*vg.Inch, *plotFile))
	fmt.Printf("spectrum plotted from %d occupied buckets: %v\n", len(values), *plotFile)
}
