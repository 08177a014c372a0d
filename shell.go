package sentree

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/sentree/internal/input"
	"github.com/dekarrin/sentree/internal/sterrors"
)

// Shell commands. They are only recognized in all caps so that they do not
// collide with ordinary sentences.
const (
	cmdQuit    = "QUIT"
	cmdGrammar = "GRAMMAR"
	cmdHelp    = "HELP"
)

// RunShell reads sentences from in and writes their trees to out until the
// QUIT command is entered or input ends. If in is os.Stdin and out is
// os.Stdout, readline is used for input unless forceDirect is set.
func (eng *Engine) RunShell(in io.Reader, out io.Writer, forceDirect bool) error {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	var reader input.LineReader
	useReadline := !forceDirect && in == os.Stdin && out == os.Stdout
	if useReadline {
		icr, err := input.NewInteractiveReader("")
		if err != nil {
			return fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
		reader = icr
	} else {
		reader = input.NewDirectReader(in)
	}
	defer reader.Close()

	bufOut := bufio.NewWriter(out)
	write := func(s string) error {
		if _, err := bufOut.WriteString(s); err != nil {
			return fmt.Errorf("could not write output: %w", err)
		}
		if err := bufOut.Flush(); err != nil {
			return fmt.Errorf("could not flush output: %w", err)
		}
		return nil
	}

	width := eng.cfg.Output.Width

	intro := "sentree: start symbol " + strconv.Quote(eng.g.Start()) + ", " + eng.mode.String() + " mode\n"
	if !useReadline {
		intro += "(direct input mode)\n"
	}
	intro += "Type a sentence to parse it, " + cmdHelp + " for commands, or " + cmdQuit + " to exit.\n"
	if err := write(intro); err != nil {
		return err
	}

	for {
		line, err := reader.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("get sentence: %w", err)
		}

		switch line {
		case cmdQuit:
			return write("Goodbye\n")
		case cmdGrammar:
			if err := write(eng.GrammarTable() + "\n"); err != nil {
				return err
			}
			continue
		case cmdHelp:
			help := cmdGrammar + ": show the rules of the grammar\n" + cmdQuit + ": exit the shell\n" +
				"Anything else is parsed as a sentence."
			if err := write(rosed.Edit(help).Wrap(width).String() + "\n"); err != nil {
				return err
			}
			continue
		}

		outcome := eng.ParseSentence(context.Background(), line)

		msg := outcome.Rendered + "\n"
		if outcome.Status == StatusPartial {
			msg += rosed.Edit(sterrors.Diagnostic(outcome.Err)).Wrap(width).String() + "\n"
		} else if outcome.Tree == nil {
			msg = rosed.Edit(outcome.Rendered).Wrap(width).String() + "\n"
		}
		if err := write(msg); err != nil {
			return err
		}
	}

	return write("Goodbye\n")
}
