// Package render turns parse trees into text. Two styles are provided: the
// compact single-line arrow style and the multi-line box-drawing outline
// style. Renderers are pure; rendering the same tree twice always gives the
// same text.
package render

import (
	"fmt"
	"strings"

	"github.com/dekarrin/sentree/internal/parse"
)

// Style selects a Renderer.
type Style int

const (
	Arrow Style = iota
	Outline
)

func (s Style) String() string {
	switch s {
	case Arrow:
		return "arrow"
	case Outline:
		return "outline"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// Separator returns the text written after each rendered tree by default when
// writing several in a row.
func (s Style) Separator() string {
	if s == Outline {
		return "\n\n"
	}
	return "\n"
}

// ParseStyle returns the Style named by s, ignoring case.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(s) {
	case "arrow":
		return Arrow, nil
	case "outline", "tree":
		return Outline, nil
	default:
		return Arrow, fmt.Errorf("not a valid render style: %q", s)
	}
}

// Renderer converts a derivation into text. root is the label of the symbol
// the derivation was made for and children are the derivation's children.
type Renderer interface {
	Render(root string, children []*parse.Node) string
}

// New returns a Renderer with default settings for the given style.
func New(style Style) Renderer {
	if style == Outline {
		return OutlineRenderer{}
	}
	return ArrowRenderer{}
}

// ArrowRenderer renders a tree on a single line. A node with one child is
// written as "(label → child)" and a node with several children is written as
// "(label) → child1 child2". Leaves are written as their literal.
type ArrowRenderer struct {
	// ElidePreterminals makes a non-terminal whose only child is a leaf render
	// as just that leaf.
	ElidePreterminals bool
}

// Render renders the derivation. If the root has exactly one child and it is
// not a leaf, that child is rendered in place of the root.
func (r ArrowRenderer) Render(root string, children []*parse.Node) string {
	if len(children) == 1 && !children[0].Terminal {
		return r.node(children[0])
	}
	return r.node(&parse.Node{Label: root, Children: children})
}

func (r ArrowRenderer) node(n *parse.Node) string {
	if n.Terminal {
		return n.Label
	}

	switch len(n.Children) {
	case 0:
		return n.Label
	case 1:
		only := n.Children[0]
		if r.ElidePreterminals && only.Terminal {
			return only.Label
		}
		return "(" + n.Label + " → " + r.node(only) + ")"
	default:
		parts := make([]string, len(n.Children))
		for i := range n.Children {
			parts[i] = r.node(n.Children[i])
		}
		return "(" + n.Label + ") → " + strings.Join(parts, " ")
	}
}

// OutlineRenderer renders a tree one node per line with box-drawing branch
// glyphs, like the output of the tree command.
type OutlineRenderer struct{}

const (
	branchMid  = "├── "
	branchLast = "└── "
	indentMid  = "│   "
	indentLast = "    "
)

// Render renders the derivation with the root label on the first line. The
// returned text has no trailing newline.
func (r OutlineRenderer) Render(root string, children []*parse.Node) string {
	var sb strings.Builder
	sb.WriteString(root)
	r.children(&sb, children, "")
	return sb.String()
}

func (r OutlineRenderer) children(sb *strings.Builder, children []*parse.Node, prefix string) {
	for i, c := range children {
		last := i == len(children)-1

		sb.WriteRune('\n')
		sb.WriteString(prefix)
		if last {
			sb.WriteString(branchLast)
		} else {
			sb.WriteString(branchMid)
		}
		sb.WriteString(c.Label)

		if c.Terminal {
			continue
		}
		if last {
			r.children(sb, c.Children, prefix+indentLast)
		} else {
			r.children(sb, c.Children, prefix+indentMid)
		}
	}
}
