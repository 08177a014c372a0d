package main

import (
	"github.com/spf13/cobra"
)

const defaultSamplesFile = "output/samples.txt"

func newGenerateCmd(gf *globalFlags) *cobra.Command {
	var outFile string
	var count int
	var seed int64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write random sentences from the grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gf.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Generate.Seed = seed
			}
			if cmd.Flags().Changed("count") {
				cfg.Generate.Count = count
			}

			eng, err := newEngine(cfg)
			if err != nil {
				return err
			}

			out, closeOut, err := openOutput(outFile)
			if err != nil {
				return initError{err}
			}
			defer closeOut()

			n := eng.Config().Generate.Count
			if err := eng.GenerateSamples(out, n); err != nil {
				return err
			}
			log.Noticef("wrote %d sentences to %s", n, outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "output", "o", defaultSamplesFile, "write sentences to the given file, or stdout if \"-\"")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of sentences to generate")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for the random source; 0 uses the current time")

	return cmd
}
