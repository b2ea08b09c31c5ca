package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"wordcount/mapreduce/input"
	"wordcount/mapreduce/job"
)

func printUsage(w io.Writer, name string) {
	fmt.Fprintf(w, `Usage of %s: %s [OPTIONS] <input_dir> <output_dir>
Counts the words of the text files in input_dir and writes
<output_dir>/part-00000 followed by the <output_dir>/_SUCCESS marker.
Options:
  -pattern <glob>            Input file pattern (default %q).
  -workers <number>          Number of concurrent mappers (default number of CPUs).
  -max-pairs <number>        Sort in memory up to this many pairs, spill sorted runs beyond it (default 0, never spill).
  -spill-dir <dir>           Directory for spilled runs (default system temp dir).
  -report <file>             Write a JSON run report to file.
  -h                         Print this help message.
`, name, name, input.DefaultPattern)
}

func checkArgs(args []string) error {
	if len(args) != 2 {
		return errors.New("input and output directories are required")
	}
	if args[0] == "" || args[1] == "" {
		return errors.New("directories must not be empty")
	}
	return nil
}

func writeReport(filename string, summary *job.Summary) error {
	data, err := summary.MarshalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, append(data, '\n'), 0644)
}

// run executes the command and returns its exit code. Results go to stdout,
// usage errors, failures and logs to stderr.
func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	name := args[0]
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(stderr)
	pattern := flagSet.String("pattern", input.DefaultPattern, "Input file pattern")
	workers := flagSet.Int("workers", runtime.NumCPU(), "Number of concurrent mappers")
	maxPairs := flagSet.Int("max-pairs", 0, "Largest in-memory sort run, 0 for unlimited")
	spillDir := flagSet.String("spill-dir", "", "Directory for spilled runs")
	report := flagSet.String("report", "", "Write a JSON run report to this file")
	flagSet.Usage = func() { printUsage(stderr, name) }
	if err := flagSet.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if err := checkArgs(flagSet.Args()); err != nil {
		fmt.Fprintln(stderr, err)
		printUsage(stderr, name)
		return 1
	}

	cfg := job.Config{
		InputDir:         flagSet.Arg(0),
		OutputDir:        flagSet.Arg(1),
		Pattern:          *pattern,
		Workers:          *workers,
		MaxInMemoryPairs: *maxPairs,
		SpillDir:         *spillDir,
		Logger:           log.New(stderr, "", log.LstdFlags),
	}
	summary, err := job.Run(ctx, cfg)
	if *report != "" && summary != nil {
		if reportErr := writeReport(*report, summary); reportErr != nil {
			fmt.Fprintf(stderr, "write report failed: %v\n", reportErr)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "word count failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%d distinct words from %d files written to %s (md5 %s)\n",
		summary.Words, summary.Files, summary.PartPath, summary.Hash)
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
