package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	defaultInputFile  = "input/sentences.txt"
	defaultOutputFile = "output/parse-results.txt"
)

func newParseCmd(gf *globalFlags) *cobra.Command {
	var outFile, mode, style, start string
	var elide bool

	cmd := &cobra.Command{
		Use:   "parse [FILE]",
		Short: "Parse every line of a file and write the trees",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gf.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") {
				cfg.Parse.Mode = mode
			}
			if cmd.Flags().Changed("style") {
				cfg.Output.Style = style
			}
			if cmd.Flags().Changed("start") {
				cfg.Grammar.Start = start
			}
			if cmd.Flags().Changed("elide") {
				cfg.Output.ElidePreterminals = elide
			}

			eng, err := newEngine(cfg)
			if err != nil {
				return err
			}

			inFile := defaultInputFile
			if len(args) > 0 {
				inFile = args[0]
			}

			in, closeIn, err := openInput(inFile)
			if err != nil {
				return initError{err}
			}
			defer closeIn()

			out, closeOut, err := openOutput(outFile)
			if err != nil {
				return initError{err}
			}
			defer closeOut()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			stats, err := eng.RunBatch(ctx, in, out)
			if err != nil {
				return err
			}
			log.Noticef("%s", stats)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "output", "o", defaultOutputFile, "write results to the given file, or stdout if \"-\"")
	cmd.Flags().StringVar(&mode, "mode", "", "parse mode: strict or best-effort")
	cmd.Flags().StringVar(&style, "style", "", "render style: arrow or outline")
	cmd.Flags().StringVar(&start, "start", "", "start symbol of the grammar")
	cmd.Flags().BoolVar(&elide, "elide", false, "render a non-terminal with a single word as just the word")

	return cmd
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// openOutput opens path for writing, creating its directory if needed.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0770); err != nil {
			return nil, nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	return f, func() { f.Close() }, nil
}
