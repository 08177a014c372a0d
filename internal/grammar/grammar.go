// Package grammar contains the context-free grammar model used by the parse
// engine and the sentence generator, along with routines for loading it from
// grammar source text.
//
// A Grammar is immutable once built. Create one with a Builder, or load one
// from text with Parse, ParseString, or LoadFile.
package grammar

import (
	"sort"
	"strings"
)

// DefaultStart is the start symbol used when none is configured.
const DefaultStart = "CÂU"

// Grammar is an ordered mapping of non-terminal names to their rules. The zero
// value is an empty grammar with the default start symbol.
//
// Grammar is safe for concurrent use by multiple goroutines because it is
// never modified after construction; every method that would change it
// returns a new Grammar instead.
type Grammar struct {
	rulesByName map[string]int

	// main rules store, not just doing a simple map bc
	// rules may have order that matters
	rules []Rule

	start string
}

// Start returns the start symbol of the grammar.
func (g Grammar) Start() string {
	if g.start == "" {
		return DefaultStart
	}
	return g.start
}

// WithStart returns a copy of g that uses the given start symbol. Giving the
// empty string resets it to DefaultStart.
func (g Grammar) WithStart(name string) Grammar {
	g2 := g.copy()
	g2.start = name
	return g2
}

// Len returns the number of non-terminals that have rules.
func (g Grammar) Len() int {
	return len(g.rules)
}

// Has returns whether the grammar has at least one rule for the non-terminal
// name.
func (g Grammar) Has(name string) bool {
	_, ok := g.rulesByName[name]
	return ok
}

// Rules returns the productions for the non-terminal name in declaration
// order. If the grammar has no rule for name, nil is returned; this is not an
// error, an undefined non-terminal simply cannot be expanded.
//
// The returned slice must not be modified.
func (g Grammar) Rules(name string) []Production {
	idx, ok := g.rulesByName[name]
	if !ok {
		return nil
	}
	return g.rules[idx].Productions
}

// Rule returns the full Rule for the non-terminal name. If there is no rule
// defined for it, a Rule with an empty NonTerminal field is returned.
func (g Grammar) Rule(name string) Rule {
	idx, ok := g.rulesByName[name]
	if !ok {
		return Rule{}
	}
	return g.rules[idx].Copy()
}

// NonTerminals returns the name of every non-terminal that has rules, in the
// order each was first declared.
func (g Grammar) NonTerminals() []string {
	names := make([]string, len(g.rules))
	for i := range g.rules {
		names[i] = g.rules[i].NonTerminal
	}
	return names
}

// Terminals returns every distinct terminal literal used in the grammar,
// sorted.
func (g Grammar) Terminals() []string {
	seen := map[string]bool{}
	for _, r := range g.rules {
		for _, p := range r.Productions {
			for _, sym := range p {
				if sym.IsTerminal() {
					seen[sym.Value] = true
				}
			}
		}
	}

	terms := make([]string, 0, len(seen))
	for t := range seen {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// ProductionCount returns the total number of alternatives across every rule.
func (g Grammar) ProductionCount() int {
	var count int
	for _, r := range g.rules {
		count += len(r.Productions)
	}
	return count
}

// String gives the grammar in source form, one rule per line. Parsing the
// returned text gives back an equivalent grammar.
func (g Grammar) String() string {
	var sb strings.Builder
	for i := range g.rules {
		sb.WriteString(g.rules[i].String())
		sb.WriteRune('\n')
	}
	return sb.String()
}

func (g Grammar) copy() Grammar {
	g2 := Grammar{
		rulesByName: make(map[string]int, len(g.rulesByName)),
		rules:       make([]Rule, len(g.rules)),
		start:       g.start,
	}

	for k := range g.rulesByName {
		g2.rulesByName[k] = g.rulesByName[k]
	}
	for i := range g.rules {
		g2.rules[i] = g.rules[i].Copy()
	}

	return g2
}

// Builder accumulates rules for a Grammar. The zero value is ready to use.
type Builder struct {
	g Grammar
}

// SetStart sets the start symbol of the Grammar being built.
func (b *Builder) SetStart(name string) {
	b.g.start = name
}

// AddRule adds the given production as an alternative for nonterminal. If the
// non-terminal already has productions the new one is added after them and so
// has lower priority than all others already added.
//
// An empty production is stored as a single epsilon symbol.
func (b *Builder) AddRule(nonterminal string, production ...Symbol) {
	if nonterminal == "" {
		panic("empty nonterminal name not allowed for production rule")
	}

	if len(production) == 0 {
		production = []Symbol{Eps}
	}

	if b.g.rulesByName == nil {
		b.g.rulesByName = map[string]int{}
	}

	curIdx, ok := b.g.rulesByName[nonterminal]
	if !ok {
		b.g.rules = append(b.g.rules, Rule{NonTerminal: nonterminal})
		curIdx = len(b.g.rules) - 1
		b.g.rulesByName[nonterminal] = curIdx
	}

	curRule := b.g.rules[curIdx]
	curRule.Productions = append(curRule.Productions, Production(production).Copy())
	b.g.rules[curIdx] = curRule
}

// Build returns the Grammar built so far. The Builder may continue to be used
// afterwards without affecting the returned Grammar.
func (b *Builder) Build() Grammar {
	return b.g.copy()
}
