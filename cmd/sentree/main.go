/*
Sentree parses sentences against a context-free grammar and prints their parse
trees, and generates random sentences from the same grammar.

Usage:

	sentree [flags] COMMAND [command flags] [args]

The commands are:

	parse [FILE]
		Parse every line of FILE (default "input/sentences.txt", or stdin if
		FILE is "-") and write one tree or diagnostic per line to the output
		file (default "output/parse-results.txt", -o to change).

	generate
		Write random sentences from the grammar, one per line (default 10000
		of them to "output/samples.txt").

	shell
		Start an interactive session that parses each line typed. Type "QUIT"
		to exit.

	grammar
		Print a table of the grammar's rules, or check it with --validate.

The global flags are:

	-c, --config FILE
		Read settings from the given TOML file. Defaults to "sentree.toml" in
		the current working directory if it exists.

	-g, --grammar FILE
		Use the given grammar file instead of the one in the config.

	-v, --verbose
		Log more. Can be given multiple times.

	--version
		Give the current version of sentree and then exit.
*/
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dekarrin/sentree"
	"github.com/dekarrin/sentree/internal/config"
	"github.com/dekarrin/sentree/internal/version"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitRunError indicates an unsuccessful program execution due to a
	// problem while running a command.
	ExitRunError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue loading the config or grammar.
	ExitInitError
)

var log = commonlog.GetLogger("sentree.cli")

// initError marks errors that happen before a command can start its work.
type initError struct {
	err error
}

func (e initError) Error() string {
	return e.err.Error()
}

func (e initError) Unwrap() error {
	return e.err
}

// globalFlags holds the flags shared by every command.
type globalFlags struct {
	configFile  string
	grammarFile string
	verbose     int
}

// loadConfig reads the config file named by the flags, or the default one if
// it exists, and applies the grammar flag over it.
func (gf *globalFlags) loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	var err error

	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(gf.configFile)
	} else {
		cfg, err = config.LoadDefault(config.DefaultFile)
	}
	if err != nil {
		return cfg, initError{fmt.Errorf("config: %w", err)}
	}

	if gf.grammarFile != "" {
		cfg.Grammar.File = gf.grammarFile
	}
	return cfg, nil
}

// newEngine creates an Engine from cfg, marking any failure as an init error.
func newEngine(cfg config.Config) (*sentree.Engine, error) {
	eng, err := sentree.New(cfg, sentree.WithLogger(commonlog.GetLogger("sentree")))
	if err != nil {
		return nil, initError{err}
	}
	return eng, nil
}

func main() {
	var gf globalFlags
	var showVersion bool

	rootCmd := &cobra.Command{
		Use:           "sentree",
		Short:         "Parse sentences against a context-free grammar",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(gf.verbose, nil)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Printf("%s\n", version.Current)
				return nil
			}
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&gf.configFile, "config", "c", config.DefaultFile, "read settings from the given TOML file")
	rootCmd.PersistentFlags().StringVarP(&gf.grammarFile, "grammar", "g", "", "use the given grammar file")
	rootCmd.PersistentFlags().CountVarP(&gf.verbose, "verbose", "v", "log more; repeat for even more")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "give the current version and then exit")

	rootCmd.AddCommand(newParseCmd(&gf))
	rootCmd.AddCommand(newGenerateCmd(&gf))
	rootCmd.AddCommand(newShellCmd(&gf))
	rootCmd.AddCommand(newGrammarCmd(&gf))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())

		var ie initError
		if errors.As(err, &ie) {
			os.Exit(ExitInitError)
		}
		os.Exit(ExitRunError)
	}
	os.Exit(ExitSuccess)
}
