package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newShellCmd(gf *globalFlags) *cobra.Command {
	var forceDirect bool

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Parse sentences typed at an interactive prompt",
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

			return eng.RunShell(os.Stdin, os.Stdout, forceDirect)
		},
	}

	cmd.Flags().BoolVarP(&forceDirect, "direct", "d", false, "read directly from stdin instead of going through readline")

	return cmd
}
