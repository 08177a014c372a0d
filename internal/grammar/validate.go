package grammar

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ValidationError is returned by Validate when the grammar references
// non-terminals it never defines or lacks rules for its start symbol. It lists
// every problem found rather than only the first.
type ValidationError struct {
	Problems []string
}

func (ve *ValidationError) Error() string {
	if len(ve.Problems) == 1 {
		return "invalid grammar: " + ve.Problems[0]
	}
	return fmt.Sprintf("invalid grammar: %d problems:\n  %s", len(ve.Problems), strings.Join(ve.Problems, "\n  "))
}

// Validate checks that every non-terminal referenced in a production has at
// least one rule and that the start symbol has rules. The parse engine itself
// never calls Validate; undefined non-terminals just yield no derivations
// there. Callers that want to refuse such grammars up front call this.
func Validate(g Grammar) error {
	var problems []string

	if !g.Has(g.Start()) {
		problems = append(problems, fmt.Sprintf("no rules defined for start symbol %q", g.Start()))
	}

	for _, r := range g.rules {
		reported := map[string]bool{}
		for _, p := range r.Productions {
			for _, sym := range p {
				if !sym.IsNonTerminal() || g.Has(sym.Value) || reported[sym.Value] {
					continue
				}
				reported[sym.Value] = true
				problems = append(problems, fmt.Sprintf("no rules defined for non-terminal %q produced by %q", sym.Value, r.NonTerminal))
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// WarningKind is the category of a lint Warning.
type WarningKind int

const (
	WarnUnreachable WarningKind = iota
	WarnMixedEpsilon
	WarnNotNFC
	WarnEmptyLiteral
	WarnLeftRecursion
)

func (wk WarningKind) String() string {
	switch wk {
	case WarnUnreachable:
		return "unreachable"
	case WarnMixedEpsilon:
		return "mixed-epsilon"
	case WarnNotNFC:
		return "not-nfc"
	case WarnEmptyLiteral:
		return "empty-literal"
	case WarnLeftRecursion:
		return "left-recursion"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(wk))
	}
}

// Warning is a non-fatal finding about a grammar.
type Warning struct {
	Kind        WarningKind
	NonTerminal string
	Message     string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s: %s", w.Kind, w.NonTerminal, w.Message)
}

// Lint returns non-fatal findings about g, in rule declaration order followed
// by unreachable non-terminals. None of them prevent parsing.
func Lint(g Grammar) []Warning {
	var warns []Warning

	for _, r := range g.rules {
		for _, p := range r.Productions {
			if len(p) > 1 && p.HasSymbol(Eps) {
				warns = append(warns, Warning{
					Kind:        WarnMixedEpsilon,
					NonTerminal: r.NonTerminal,
					Message:     fmt.Sprintf("alternative %q mixes %s with other symbols", p.String(), EpsilonMarker),
				})
			}
			if len(p) > 0 && p[0].IsNonTerminal() && p[0].Value == r.NonTerminal {
				warns = append(warns, Warning{
					Kind:        WarnLeftRecursion,
					NonTerminal: r.NonTerminal,
					Message:     fmt.Sprintf("alternative %q is immediately left-recursive and will never match", p.String()),
				})
			}
			for _, sym := range p {
				if !sym.IsTerminal() {
					continue
				}
				if sym.Value == "" {
					warns = append(warns, Warning{
						Kind:        WarnEmptyLiteral,
						NonTerminal: r.NonTerminal,
						Message:     "empty literal can never match a token",
					})
				} else if !norm.NFC.IsNormalString(sym.Value) {
					warns = append(warns, Warning{
						Kind:        WarnNotNFC,
						NonTerminal: r.NonTerminal,
						Message:     fmt.Sprintf("literal %q is not in Unicode NFC form", sym.Value),
					})
				}
			}
		}
	}

	reachable := Reachable(g)
	for _, nt := range g.NonTerminals() {
		if !reachable[nt] {
			warns = append(warns, Warning{
				Kind:        WarnUnreachable,
				NonTerminal: nt,
				Message:     fmt.Sprintf("not reachable from start symbol %q", g.Start()),
			})
		}
	}

	return warns
}

// Reachable returns the set of non-terminals with rules that can be reached
// by expanding the start symbol.
func Reachable(g Grammar) map[string]bool {
	reached := map[string]bool{}
	if !g.Has(g.Start()) {
		return reached
	}

	pending := []string{g.Start()}
	reached[g.Start()] = true
	for len(pending) > 0 {
		nt := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		for _, p := range g.Rules(nt) {
			for _, sym := range p {
				if sym.IsNonTerminal() && g.Has(sym.Value) && !reached[sym.Value] {
					reached[sym.Value] = true
					pending = append(pending, sym.Value)
				}
			}
		}
	}

	return reached
}
