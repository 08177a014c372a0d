package grammar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrEmptyGrammar is the error returned when grammar source is read
// successfully but does not define any rules.
var ErrEmptyGrammar = errors.New("grammar does not define any rules")

// grammar source is line-oriented:
//
//	LEFT -> RHS1 | RHS2 | ...
//
// where each RHS is a space-separated sequence of quoted literals, the epsilon
// marker, or bare non-terminal names. '#' starts a comment that runs to the end
// of the line. The epsilon marker is lexed as a name, so names may start with
// it; only a name that is exactly the marker means epsilon.
var (
	sourceLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `#[^\n]*`},
		{Name: "String", Pattern: `"[^"\n]*"`},
		{Name: "Arrow", Pattern: `->`},
		{Name: "Pipe", Pattern: `\|`},
		{Name: "Ident", Pattern: `[\p{L}\p{N}_]+(?:-[\p{L}\p{N}_]+)*`},
		{Name: "EOL", Pattern: `\r?\n`},
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
	})

	sourceParser = participle.MustBuild[sourceFile](
		participle.Lexer(sourceLexer),
		participle.Elide("Comment", "Whitespace"),
	)
)

type sourceFile struct {
	Entries []*sourceRule `parser:"( @@ | EOL )*"`
}

type sourceRule struct {
	Pos lexer.Position

	Head         string               `parser:"@Ident Arrow"`
	Alternatives []*sourceAlternative `parser:"@@ ( Pipe @@ )*"`
}

type sourceAlternative struct {
	Symbols []*sourceSymbol `parser:"@@+"`
}

type sourceSymbol struct {
	Literal *string `parser:"  @String"`
	Name    string  `parser:"| @Ident"`
}

func (ss sourceSymbol) toSymbol() Symbol {
	switch {
	case ss.Literal != nil:
		lit := *ss.Literal
		// lexer guarantees the surrounding quotes
		return T(lit[1 : len(lit)-1])
	case ss.Name == EpsilonMarker:
		return Eps
	default:
		return NT(ss.Name)
	}
}

// LoadFile loads a Grammar from the grammar source file at path. It is an
// error if the file cannot be read or if it defines no rules at all.
func LoadFile(path string) (Grammar, error) {
	path = filepath.Clean(path)

	f, err := os.Open(path)
	if err != nil {
		return Grammar{}, fmt.Errorf("%q: reading from disk: %w", path, err)
	}
	defer f.Close()

	g, err := Parse(path, f)
	if err != nil {
		return Grammar{}, err
	}
	return g, nil
}

// Parse reads grammar source text from r. The filename is used only for
// error messages. It is an error if the source defines no rules.
func Parse(filename string, r io.Reader) (Grammar, error) {
	src, err := sourceParser.Parse(filename, r)
	if err != nil {
		return Grammar{}, fmt.Errorf("parse grammar: %w", err)
	}
	return buildFromSource(filename, src)
}

// ParseString is like Parse but reads the source from a string.
func ParseString(s string) (Grammar, error) {
	src, err := sourceParser.ParseString("", s)
	if err != nil {
		return Grammar{}, fmt.Errorf("parse grammar: %w", err)
	}
	return buildFromSource("", src)
}

// MustParse is like ParseString but panics if the source cannot be parsed. It
// is intended for grammars embedded in code and tests.
func MustParse(s string) Grammar {
	g, err := ParseString(s)
	if err != nil {
		panic(err.Error())
	}
	return g
}

func buildFromSource(filename string, src *sourceFile) (Grammar, error) {
	var b Builder
	for _, entry := range src.Entries {
		if entry.Head == EpsilonMarker {
			return Grammar{}, fmt.Errorf("%s: %s cannot be the left side of a rule", entry.Pos, EpsilonMarker)
		}
		for _, alt := range entry.Alternatives {
			prod := make([]Symbol, len(alt.Symbols))
			for i := range alt.Symbols {
				prod[i] = alt.Symbols[i].toSymbol()
			}
			b.AddRule(entry.Head, prod...)
		}
	}

	g := b.Build()
	if g.Len() < 1 {
		if filename != "" {
			return g, fmt.Errorf("%q: %w", filename, ErrEmptyGrammar)
		}
		return g, ErrEmptyGrammar
	}
	return g, nil
}
