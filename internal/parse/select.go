package parse

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrCannotParse is returned by Select in best-effort mode when no derivation
// consumes even the first token.
var ErrCannotParse = errors.New("cannot parse any prefix of the sentence")

// Mode is the acceptance policy Select applies to a result set.
type Mode int

const (
	// Strict accepts only derivations that consume every token.
	Strict Mode = iota

	// BestEffort accepts the derivation that consumes the most tokens.
	BestEffort
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case BestEffort:
		return "best-effort"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode returns the Mode named by s. Case is ignored, and "-", "_", and
// nothing at all are accepted between "best" and "effort".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "strict":
		return Strict, nil
	case "best-effort", "best_effort", "besteffort":
		return BestEffort, nil
	default:
		return Strict, fmt.Errorf("not a valid parse mode: %q", s)
	}
}

// NoParseError is returned by Select in strict mode when no derivation
// consumes the entire token sequence.
type NoParseError struct {
	Tokens []string
}

func (e *NoParseError) Error() string {
	return fmt.Sprintf("no full parse of %q", strings.Join(e.Tokens, " "))
}

// PartialParseError is returned by Select in best-effort mode alongside a
// usable Selection when the best derivation stops before the last token.
type PartialParseError struct {
	// End is the index of the first token not consumed.
	End int

	// Unconsumed is the trailing tokens the derivation did not match.
	Unconsumed []string
}

func (e *PartialParseError) Error() string {
	return fmt.Sprintf("parse stops at token %d; unconsumed: %q", e.End, strings.Join(e.Unconsumed, " "))
}

// Selection is the derivation chosen by Select.
type Selection struct {
	Derivation

	// Index is the position of the chosen derivation in the result set it was
	// selected from.
	Index int

	// Complete is whether the derivation consumes every token.
	Complete bool

	// Unconsumed holds the tokens after Derivation.End. It is empty when
	// Complete is true.
	Unconsumed []string
}

// Select picks one derivation out of results, which must be the result set
// for the start symbol at position 0 over tokens. Among equally good
// derivations, the one that comes first in results wins, so declaration order
// of productions decides ambiguous parses.
//
// In Strict mode, only derivations that end at len(tokens) are eligible and a
// *NoParseError is returned if there are none.
//
// In BestEffort mode, the derivation with the greatest End is chosen. If no
// derivation consumes anything out of a non-empty token sequence,
// ErrCannotParse is returned. If the chosen derivation stops short of the last
// token, the Selection is returned along with a *PartialParseError; callers
// that accept partial parses can use both.
func Select(results []Derivation, tokens []string, mode Mode) (Selection, error) {
	switch mode {
	case Strict:
		for i := range results {
			if results[i].End == len(tokens) {
				return Selection{Derivation: results[i], Index: i, Complete: true}, nil
			}
		}
		return Selection{}, &NoParseError{Tokens: tokens}
	case BestEffort:
		best := -1
		for i := range results {
			if best < 0 || results[i].End > results[best].End {
				best = i
			}
		}
		if best < 0 {
			return Selection{}, ErrCannotParse
		}

		sel := Selection{Derivation: results[best], Index: best}
		if sel.End == len(tokens) {
			sel.Complete = true
			return sel, nil
		}
		if sel.End == 0 {
			return Selection{}, ErrCannotParse
		}

		sel.Unconsumed = tokens[sel.End:]
		return sel, &PartialParseError{End: sel.End, Unconsumed: sel.Unconsumed}
	default:
		return Selection{}, fmt.Errorf("unknown parse mode: %v", mode)
	}
}

// FurthestPrefix returns the greatest number of leading tokens of the
// Session's sequence that any non-terminal of its grammar can match. It is a
// diagnostic for locating where parsing breaks down when the start symbol
// gives nothing useful, and does not build a tree.
func FurthestPrefix(ctx context.Context, s *Session) (int, error) {
	var furthest int
	for _, nt := range s.g.NonTerminals() {
		entry, _, err := s.expand(ctx, nt, 0)
		if err != nil {
			return 0, err
		}
		for _, d := range entry.derivs {
			if d.End > furthest {
				furthest = d.End
			}
		}
	}
	return furthest, nil
}
