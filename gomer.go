package main

import "github.com/kmer-tools/gomer/cmd"

func main() {
	cmd.Execute()
}
