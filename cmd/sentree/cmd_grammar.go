package main

import (
	"fmt"

	"github.com/dekarrin/sentree/internal/grammar"
	"github.com/spf13/cobra"
)

func newGrammarCmd(gf *globalFlags) *cobra.Command {
	var validate, printSource bool

	cmd := &cobra.Command{
		Use:   "grammar",
		Short: "Show or check the grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := gf.loadConfig(cmd)
			if err != nil {
				return err
			}

			eng, err := newEngine(cfg)
			if err != nil {
				return err
			}
			g := eng.Grammar()

			if printSource {
				fmt.Print(g.String())
			} else {
				fmt.Println(eng.GrammarTable())
			}

			if !validate {
				return nil
			}

			for _, w := range grammar.Lint(g) {
				fmt.Printf("warning: %s\n", w)
			}
			if err := grammar.Validate(g); err != nil {
				return err
			}
			fmt.Println("grammar is valid")
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "check for undefined non-terminals and report lint warnings")
	cmd.Flags().BoolVar(&printSource, "print", false, "print the grammar as source text instead of a table")

	return cmd
}
