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
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mholt/archiver"
	"github.com/spf13/cobra"
)

// available pre-built sketches to download
var availDb = []string{"refseq-viral", "refseq-plasmid", "gomer-test-db"}
var availKsize = []string{"21"}
var md5sums = map[string]string{
	"refseq-viral.21":   "0c84e5e373453dd46e6f8a84b7f4d0a1",
	"refseq-plasmid.21": "b6d9714d0f9ad52a48bf0e69bd993db0",
	"gomer-test-db.21":  "9a0d005107b9f7f9d340ba4de1e67d13",
}

// url to download pre-built sketches from
var dbUrl = "https://github.com/kmer-tools/gomer/raw/master/db/sketches/"

// the command line arguments
var (
	database *string // the pre-built sketch to download
	dbKsize  *string // the k-mer size the sketch was built with
	dbDir    *string // the location to store the sketch
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Download a pre-built reference sketch",
	Long:  `Download a pre-built reference sketch`,
	Run: func(cmd *cobra.Command, args []string) {
		runGet()
	},
}

func init() {
	RootCmd.AddCommand(getCmd)
	database = getCmd.Flags().StringP("database", "d", "refseq-viral", "pre-built sketch to download (please choose: refseq-viral/refseq-plasmid/gomer-test-db)")
	dbKsize = getCmd.Flags().StringP("ksize", "k", "21", "the k-mer size the sketch was built with (only 21 available atm)")
	dbDir = getCmd.PersistentFlags().StringP("out", "o", ".", "directory to save the sketch to")
}

/*
  A function to check user supplied parameters
*/
func getParamCheck() error {
	// check requested db exists in gomer records
	checkPass := false
	for _, avail := range availDb {
		if *database == avail {
			checkPass = true
		}
	}
	if checkPass == false {
		return fmt.Errorf("unrecognised DB: %v\n\nplease choose either: refseq-viral/refseq-plasmid/gomer-test-db", *database)
	}
	checkPass = false
	for _, avail := range availKsize {
		if *dbKsize == avail {
			checkPass = true
		}
	}
	if checkPass == false {
		return fmt.Errorf("k-mer size not available: %v\n\nplease choose either: 21, ", *dbKsize)
	}
	// setup the dbDir
	if _, err := os.Stat(*dbDir); os.IsNotExist(err) {
		if err := os.MkdirAll(*dbDir, 0700); err != nil {
			return fmt.Errorf("directory creation failed: %v\n\ncan't create specified output directory for the sketch", *dbDir)
		}
	}
	return nil
}

/*
  A function to download the sketch tarball
*/
func DownloadFile(savePath string, url string) error {
	outFile, err := os.Create(savePath)
	if err != nil {
		return err
	}
	defer outFile.Close()
	response, err := http.Get(url)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	_, err = io.Copy(outFile, response.Body)
	if err != nil {
		return err
	}
	return nil
}

/*
  A function to calculate md5
*/
func getMD5(savePath string) error {
	var dbMD5 string
	file, err := os.Open(savePath)
	if err != nil {
		return err
	}
	defer file.Close()
	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return err
	}
	hashInBytes := hash.Sum(nil)[:16]
	dbMD5 = hex.EncodeToString(hashInBytes)
	lookup := fmt.Sprintf("%v.%v", *database, *dbKsize)
	if dbMD5 != md5sums[lookup] {
		return errors.New("md5sum for downloaded tarball did not match record")
	}
	return nil
}

/*
  The main function for the get sub-command
*/
func runGet() {
	if err := getParamCheck(); err != nil {
		fmt.Println("could not run gomer get...")
		fmt.Println(err)
		os.Exit(1)
	}

	// download the sketch
	fmt.Printf("downloading the pre-built %v sketch...\n", *database)
	dbFile := fmt.Sprintf("%v.%v.tar", *database, *dbKsize)
	dbUrl += dbFile
	dbSave := fmt.Sprintf("%v/%v", *dbDir, dbFile)
	if err := DownloadFile(dbSave, dbUrl); err != nil {
		fmt.Println("could not download the tarball")
		fmt.Println(err)
		os.Exit(1)
	}
	// unpack the sketch
	fmt.Println("unpacking...")
	if err := getMD5(dbSave); err != nil {
		fmt.Println("could not unpack the tarball")
		fmt.Println(err)
		os.Exit(1)
	}
	if err := archiver.Tar.Open(dbSave, *dbDir); err != nil {
		fmt.Println("could not unpack the tarball")
		fmt.Println(err)
		os.Exit(1)
	}
	// finished
	if err := os.Remove(dbSave); err != nil {
		fmt.Println("could not cleanup...")
		fmt.Println(err)
		os.Exit(1)
	}
	dbSave = fmt.Sprintf("%v/%v.%v", *dbDir, *database, *dbKsize)
	fmt.Printf("sketch saved to: %v\n", dbSave)
	fmt.Printf("now run `gomer query -s %v <k-mers>` or `gomer query --help` for full options\n", dbSave)
}
