package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"wordcount/mapreduce/input"
	"wordcount/materialize"
)

func printUsage() {
	fmt.Printf(`Usage of %s: %s [OPTIONS] <raw_dir> <input_dir>
Clears input_dir and fills it with n copies of every raw text file.
Options:
  -n <number>                Copies of each raw file (default 1000).
  -pattern <glob>            Raw file pattern (default %q).
  -h                         Print this help message.
`, os.Args[0], os.Args[0], input.DefaultPattern)
}

func main() {
	flagSet := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	n := flagSet.Int("n", 1000, "Copies of each raw file")
	pattern := flagSet.String("pattern", input.DefaultPattern, "Raw file pattern")
	flagSet.Usage = printUsage
	flagSet.Parse(os.Args[1:])
	if flagSet.NArg() != 2 {
		fmt.Fprintln(os.Stderr, errors.New("raw and input directories are required"))
		printUsage()
		os.Exit(1)
	}

	written, err := materialize.Run(flagSet.Arg(0), flagSet.Arg(1), *n, *pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "materialize failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d files written to %s\n", written, flagSet.Arg(1))
}
