package sentree

import (
	"fmt"
	"strings"

	"github.com/dekarrin/sentree/internal/parse"
)

// Status is how parsing a sentence turned out.
type Status int

const (
	// StatusOK means a derivation consumed the whole sentence.
	StatusOK Status = iota

	// StatusPartial means the best derivation consumed only a prefix of the
	// sentence. Its tree is still rendered.
	StatusPartial

	// StatusNoParse means no acceptable derivation was found.
	StatusNoParse

	// StatusEmpty means the sentence had no tokens.
	StatusEmpty

	// StatusError means parsing was stopped by a limit or cancellation.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusPartial:
		return "partial"
	case StatusNoParse:
		return "no-parse"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus returns the Status whose String() is s.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "ok":
		return StatusOK, nil
	case "partial":
		return StatusPartial, nil
	case "no-parse":
		return StatusNoParse, nil
	case "empty":
		return StatusEmpty, nil
	case "error":
		return StatusError, nil
	default:
		return StatusError, fmt.Errorf("not a valid status: %q", s)
	}
}

// Outcome is the result of parsing one sentence.
type Outcome struct {
	Sentence string
	Tokens   []string
	Status   Status

	// End is the number of leading tokens consumed by Tree, or for
	// StatusNoParse, the furthest any non-terminal got.
	End int

	// Tree is the selected derivation under a node for the start symbol. It
	// is nil unless Status is StatusOK or StatusPartial.
	Tree *parse.Node

	// Rendered is the rendered Tree, or the diagnostic when there is no Tree.
	Rendered string

	// Err describes why the sentence did not fully parse. It is nil for
	// StatusOK and StatusEmpty. Pass it to sterrors.Diagnostic to get the
	// line to show for it.
	Err error
}
