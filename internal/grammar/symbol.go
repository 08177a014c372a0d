package grammar

import (
	"fmt"
	"strings"
)

// EpsilonMarker is the text used for the empty production in grammar source.
const EpsilonMarker = "ε"

// SymbolKind is the type of a Symbol.
type SymbolKind int

const (
	NonTerminal SymbolKind = iota
	Terminal
	Epsilon
)

func (sk SymbolKind) String() string {
	switch sk {
	case NonTerminal:
		return "nonterminal"
	case Terminal:
		return "terminal"
	case Epsilon:
		return "epsilon"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(sk))
	}
}

// Symbol is a single symbol reference on the right side of a production. For
// a NonTerminal, Value is the name of the non-terminal; for a Terminal it is
// the literal text that must match a token exactly. Value is always empty for
// Epsilon.
type Symbol struct {
	Kind  SymbolKind
	Value string
}

// Eps is the empty-production symbol.
var Eps = Symbol{Kind: Epsilon}

// NT returns a non-terminal symbol with the given name.
func NT(name string) Symbol {
	return Symbol{Kind: NonTerminal, Value: name}
}

// T returns a terminal symbol that matches the given literal.
func T(literal string) Symbol {
	return Symbol{Kind: Terminal, Value: literal}
}

// IsTerminal returns whether the symbol is a terminal literal.
func (s Symbol) IsTerminal() bool {
	return s.Kind == Terminal
}

// IsNonTerminal returns whether the symbol is a non-terminal reference.
func (s Symbol) IsNonTerminal() bool {
	return s.Kind == NonTerminal
}

// IsEpsilon returns whether the symbol is the empty production.
func (s Symbol) IsEpsilon() bool {
	return s.Kind == Epsilon
}

// String returns the symbol as it would be written in grammar source text.
func (s Symbol) String() string {
	switch s.Kind {
	case Terminal:
		return `"` + s.Value + `"`
	case Epsilon:
		return EpsilonMarker
	default:
		return s.Value
	}
}

// Production is a single alternative of a rule; an ordered sequence of
// symbols.
type Production []Symbol

// Copy returns a duplicate of the production.
func (p Production) Copy() Production {
	p2 := make(Production, len(p))
	copy(p2, p)
	return p2
}

// IsEpsilon returns whether every symbol in the production is the empty
// production, meaning it can never consume input.
func (p Production) IsEpsilon() bool {
	for i := range p {
		if !p[i].IsEpsilon() {
			return false
		}
	}
	return true
}

// HasSymbol returns whether the production references sym anywhere.
func (p Production) HasSymbol(sym Symbol) bool {
	for i := range p {
		if p[i] == sym {
			return true
		}
	}
	return false
}

// Equal returns whether the production is equal to another value. It will not
// be equal if the other value cannot be cast to Production or *Production.
func (p Production) Equal(o any) bool {
	other, ok := o.(Production)
	if !ok {
		otherPtr, ok := o.(*Production)
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Production) String() string {
	if len(p) == 0 {
		return EpsilonMarker
	}

	var sb strings.Builder
	for i := range p {
		sb.WriteString(p[i].String())
		if i+1 < len(p) {
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}

// Rule is every alternative of a single non-terminal in the order they were
// declared.
type Rule struct {
	NonTerminal string
	Productions []Production
}

// Copy returns a deep-copy duplicate of the Rule.
func (r Rule) Copy() Rule {
	r2 := Rule{
		NonTerminal: r.NonTerminal,
		Productions: make([]Production, len(r.Productions)),
	}
	for i := range r.Productions {
		r2.Productions[i] = r.Productions[i].Copy()
	}
	return r2
}

func (r Rule) String() string {
	var sb strings.Builder

	sb.WriteString(r.NonTerminal)
	sb.WriteString(" -> ")

	for i := range r.Productions {
		sb.WriteString(r.Productions[i].String())
		if i+1 < len(r.Productions) {
			sb.WriteString(" | ")
		}
	}

	return sb.String()
}
