// Package tokenize splits input sentences into the tokens the parse engine
// matches against grammar terminals.
package tokenize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Fields splits sentence on runs of whitespace. Leading and trailing
// whitespace produce no tokens, so a blank sentence gives an empty slice.
func Fields(sentence string) []string {
	return strings.Fields(sentence)
}

// Tokenizer splits sentences into tokens with optional Unicode normalization.
// The zero value splits on whitespace and leaves tokens exactly as typed.
type Tokenizer struct {
	// NFC normalizes the sentence to Unicode NFC before splitting, so that
	// input typed with combining diacritics matches precomposed literals.
	NFC bool
}

// Tokenize splits sentence into tokens.
func (tok Tokenizer) Tokenize(sentence string) []string {
	if tok.NFC {
		sentence = norm.NFC.String(sentence)
	}
	return Fields(sentence)
}
