// Package parse implements the top-down, memoized, backtracking parse engine
// that enumerates every derivation of a token sequence under a context-free
// grammar, along with the selector that picks one derivation from the result.
//
// All parse state for one token sequence lives in a Session. A Session is not
// safe for concurrent use; parse different sentences in different Sessions.
// The Grammar a Session reads is immutable and may be shared freely.
package parse

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/dekarrin/sentree/internal/grammar"
)

const (
	DefaultMaxDepth       = 1000
	DefaultMaxDerivations = 100000
)

var (
	// ErrTooDeep is returned when expanding non-terminals nests deeper than
	// Options.MaxDepth.
	ErrTooDeep = errors.New("parse exceeds maximum recursion depth")

	// ErrTooAmbiguous is returned when a parse builds more partial and
	// complete derivations than Options.MaxDerivations allows.
	ErrTooAmbiguous = errors.New("parse too ambiguous")
)

// Options bounds the work a Session will do. A zero or negative field takes
// its default value.
type Options struct {
	// MaxDepth is the maximum number of nested non-terminal expansions.
	MaxDepth int

	// MaxDerivations is the maximum number of derivations, partial or
	// complete, that one Session may build.
	MaxDerivations int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxDerivations <= 0 {
		o.MaxDerivations = DefaultMaxDerivations
	}
	return o
}

// Derivation is one way of matching a symbol at some position. End is the
// index of the token immediately after the matched span and Children holds
// one node per non-epsilon symbol of the matched production.
type Derivation struct {
	End      int
	Children []*Node
}

// noCycle is the cut level of an expansion that never reached a non-terminal
// that was still being expanded.
const noCycle = math.MaxInt

// Stats reports how much work a Session has done so far.
type Stats struct {
	// MemoEntries is the number of (non-terminal, position) pairs whose full
	// result set has been computed and cached. Pairs that take part in a
	// cycle are recomputed each time they are reached and never counted.
	MemoEntries int

	// Derivations is the number of partial and complete derivations built.
	Derivations int

	// MaxDepth is the deepest non-terminal nesting reached.
	MaxDepth int
}

type memoKey struct {
	name string
	pos  int
}

// memoEntry holds the result set for one key along with one Node per
// derivation, so every consumer of a sub-derivation links to the same subtree.
type memoEntry struct {
	derivs []Derivation
	nodes  []*Node
}

// partial is a match in progress within one production.
type partial struct {
	pos      int
	children []*Node
}

// Session parses a single token sequence. The memo table it builds is keyed by
// (symbol, position) and is valid only for that sequence, so a Session is
// created per sentence and dropped once the sentence is done.
type Session struct {
	g      grammar.Grammar
	tokens []string
	opts   Options

	memo map[memoKey]memoEntry

	// active maps each key being expanded to its nesting level.
	active map[memoKey]int
	depth  int
	stats  Stats
}

// NewSession creates a Session for parsing tokens under g. The tokens slice is
// copied.
func NewSession(g grammar.Grammar, tokens []string, opts Options) *Session {
	toks := make([]string, len(tokens))
	copy(toks, tokens)

	return &Session{
		g:      g,
		tokens: toks,
		opts:   opts.withDefaults(),
		memo:   map[memoKey]memoEntry{},
		active: map[memoKey]int{},
	}
}

// Tokens returns the token sequence the Session parses. It must not be
// modified.
func (s *Session) Tokens() []string {
	return s.tokens
}

// Grammar returns the grammar the Session parses with.
func (s *Session) Grammar() grammar.Grammar {
	return s.g
}

// Stats returns counters describing the work done so far.
func (s *Session) Stats() Stats {
	st := s.stats
	st.MemoEntries = len(s.memo)
	return st
}

// Parse returns every derivation of the non-terminal start beginning at the
// first token. It is the same as calling ParseAt with grammar.NT(start) and
// position 0.
func (s *Session) Parse(ctx context.Context, start string) ([]Derivation, error) {
	return s.ParseAt(ctx, grammar.NT(start), 0)
}

// ParseAt returns every derivation of sym that begins at token index pos, in
// a deterministic order: derivations of earlier-declared productions come
// before those of later ones.
//
// An epsilon symbol always gives exactly one derivation that consumes nothing.
// A terminal gives one derivation if it exactly equals the token at pos and
// none otherwise. A non-terminal with no rules gives none; this is not an
// error. Results for non-terminals are cached for the life of the Session.
//
// A non-terminal that is reached again at the same position while it is still
// being expanded gives no derivations for the inner occurrence, so
// left-recursive productions fail to match instead of recursing forever. The
// result is every derivation in which no (non-terminal, position) pair is
// nested inside itself. Result sets that were cut short this way depend on
// which pairs were being expanded at the time, so they are not cached, and the
// result of a call never depends on the calls made before it.
//
// The returned error is non-nil only if a limit in the Session's Options was
// exceeded or ctx was cancelled. The returned slice must not be modified.
func (s *Session) ParseAt(ctx context.Context, sym grammar.Symbol, pos int) ([]Derivation, error) {
	if pos < 0 || pos > len(s.tokens) {
		return nil, fmt.Errorf("position %d out of range [0, %d]", pos, len(s.tokens))
	}

	switch sym.Kind {
	case grammar.Epsilon:
		return []Derivation{{End: pos}}, nil
	case grammar.Terminal:
		if pos < len(s.tokens) && s.tokens[pos] == sym.Value {
			return []Derivation{{End: pos + 1, Children: []*Node{Leaf(sym.Value)}}}, nil
		}
		return nil, nil
	}

	entry, _, err := s.expand(ctx, sym.Value, pos)
	if err != nil {
		return nil, err
	}
	return entry.derivs, nil
}

// expand computes (or fetches from the memo table) the result set of the
// non-terminal name at pos. The returned cut is the lowest nesting level of an
// enclosing expansion that the result was cut short against, or noCycle if it
// does not depend on any of them.
func (s *Session) expand(ctx context.Context, name string, pos int) (entry memoEntry, cut int, err error) {
	key := memoKey{name: name, pos: pos}
	if entry, ok := s.memo[key]; ok {
		return entry, noCycle, nil
	}
	if level, ok := s.active[key]; ok {
		return memoEntry{}, level, nil
	}

	if err := ctx.Err(); err != nil {
		return memoEntry{}, noCycle, err
	}

	s.depth++
	defer func() { s.depth-- }()
	if s.depth > s.opts.MaxDepth {
		return memoEntry{}, noCycle, ErrTooDeep
	}
	if s.depth > s.stats.MaxDepth {
		s.stats.MaxDepth = s.depth
	}

	level := s.depth
	s.active[key] = level
	defer delete(s.active, key)

	cut = noCycle
	for _, prod := range s.g.Rules(name) {
		matches, prodCut, err := s.matchProduction(ctx, prod, pos)
		if err != nil {
			return memoEntry{}, noCycle, err
		}
		cut = min(cut, prodCut)

		for _, m := range matches {
			d := Derivation{End: m.pos, Children: m.children}
			entry.derivs = append(entry.derivs, d)
			entry.nodes = append(entry.nodes, &Node{Label: name, Children: d.Children})
		}
	}

	switch {
	case cut == noCycle:
		s.memo[key] = entry
	case cut >= level:
		// cut only against itself, so complete for the caller; not cached
		// since entering the cycle at another key gives a different set
		cut = noCycle
	}
	return entry, cut, nil
}

// matchProduction advances a frontier of partial matches through prod one
// symbol at a time. Every partial match that survives the last symbol is a
// complete match of the production.
func (s *Session) matchProduction(ctx context.Context, prod grammar.Production, pos int) ([]partial, int, error) {
	frontier := []partial{{pos: pos}}
	cut := noCycle

	for _, sym := range prod {
		var next []partial

		for _, p := range frontier {
			switch sym.Kind {
			case grammar.Epsilon:
				next = append(next, p)
			case grammar.Terminal:
				if p.pos < len(s.tokens) && s.tokens[p.pos] == sym.Value {
					if err := s.count(); err != nil {
						return nil, noCycle, err
					}
					next = append(next, p.extend(p.pos+1, Leaf(sym.Value)))
				}
			case grammar.NonTerminal:
				sub, subCut, err := s.expand(ctx, sym.Value, p.pos)
				if err != nil {
					return nil, noCycle, err
				}
				cut = min(cut, subCut)
				for i := range sub.derivs {
					if err := s.count(); err != nil {
						return nil, noCycle, err
					}
					next = append(next, p.extend(sub.derivs[i].End, sub.nodes[i]))
				}
			}
		}

		if len(next) == 0 {
			return nil, cut, nil
		}
		frontier = next
	}

	return frontier, cut, nil
}

func (s *Session) count() error {
	s.stats.Derivations++
	if s.stats.Derivations > s.opts.MaxDerivations {
		return ErrTooAmbiguous
	}
	return nil
}

// extend returns a copy of p advanced to pos with child appended. The
// receiver's children slice is never written to, since other partial matches
// may share its backing array.
func (p partial) extend(pos int, child *Node) partial {
	children := make([]*Node, len(p.children), len(p.children)+1)
	copy(children, p.children)
	return partial{pos: pos, children: append(children, child)}
}
