// Package generate produces random sentences from a grammar by expanding the
// start symbol top-down, choosing one production at random for each
// non-terminal.
package generate

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/dekarrin/sentree/internal/grammar"
)

// DefaultMaxExpansions is the expansion limit used when Options does not give
// one.
const DefaultMaxExpansions = 10000

var (
	// ErrUndefinedSymbol is returned when generation reaches a non-terminal
	// that has no rules.
	ErrUndefinedSymbol = errors.New("non-terminal has no rules")

	// ErrExpansionLimit is returned when a single sentence needs more
	// non-terminal expansions than Options.MaxExpansions allows, which
	// happens with recursive grammars that rarely choose a way out.
	ErrExpansionLimit = errors.New("sentence exceeds expansion limit")
)

// Options controls a Generator.
type Options struct {
	// MaxExpansions is the maximum number of non-terminals expanded for one
	// sentence. Zero or less means DefaultMaxExpansions.
	MaxExpansions int
}

// Generator creates random sentences. It is not safe for concurrent use since
// it draws from a single *rand.Rand.
type Generator struct {
	g    grammar.Grammar
	rng  *rand.Rand
	opts Options
}

// New creates a Generator for g that draws its choices from rng. Two
// Generators for the same grammar whose rngs were created with the same seed
// produce the same sentences in the same order.
func New(g grammar.Grammar, rng *rand.Rand, opts Options) *Generator {
	if opts.MaxExpansions <= 0 {
		opts.MaxExpansions = DefaultMaxExpansions
	}
	return &Generator{g: g, rng: rng, opts: opts}
}

// Generate expands start and returns the terminal literals of the result in
// order. Epsilon contributes nothing.
func (gen *Generator) Generate(start string) ([]string, error) {
	words := []string{}
	expansions := 0

	// symbols are pushed right to left so they pop in reading order
	pending := []grammar.Symbol{grammar.NT(start)}
	for len(pending) > 0 {
		sym := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		switch sym.Kind {
		case grammar.Terminal:
			words = append(words, sym.Value)
		case grammar.NonTerminal:
			alts := gen.g.Rules(sym.Value)
			if len(alts) == 0 {
				return nil, fmt.Errorf("%w: %q", ErrUndefinedSymbol, sym.Value)
			}

			expansions++
			if expansions > gen.opts.MaxExpansions {
				return nil, fmt.Errorf("%w (%d)", ErrExpansionLimit, gen.opts.MaxExpansions)
			}

			chosen := alts[gen.rng.Intn(len(alts))]
			for i := len(chosen) - 1; i >= 0; i-- {
				pending = append(pending, chosen[i])
			}
		}
	}

	return words, nil
}

// Sentence is like Generate but joins the literals with single spaces.
func (gen *Generator) Sentence(start string) (string, error) {
	words, err := gen.Generate(start)
	if err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}
