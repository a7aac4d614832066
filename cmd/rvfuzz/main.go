// Command rvfuzz differentially fuzzes RISC-V processor implementations
// against a reference simulator, coverage engine, and device under test,
// grounded on the teacher's main.go flag-parsing/RunCLI split.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	var dir = flag.String("dir", ".", "working directory for generated artifacts")
	var iterations = flag.Int("iterations", 100, "iterations for the fuzz subcommand")
	var verbose = flag.Bool("v", false, "verbose logging")
	flag.Parse()

	if err := RunCLI(flag.Args(), *dir, *verbose, *iterations); err != nil {
		fmt.Fprintln(os.Stderr, "rvfuzz:", err)
		os.Exit(1)
	}
}
