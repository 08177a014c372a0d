package parse

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rezi"
)

// Node is a node of a parse tree. Leaves are terminals and carry the matched
// literal as their Label; every other node is labeled with the name of the
// non-terminal it was derived from.
//
// Nodes are never modified after the engine creates them. A subtree built for
// one memoized sub-derivation is shared by pointer between every derivation
// that uses it, so callers must treat Nodes as read-only.
type Node struct {
	Label    string
	Terminal bool
	Children []*Node
}

// Leaf returns a terminal node for the given literal.
func Leaf(literal string) *Node {
	return &Node{Label: literal, Terminal: true}
}

// Branch returns a non-terminal node with the given children.
func Branch(label string, children ...*Node) *Node {
	return &Node{Label: label, Children: children}
}

// Leaves returns the literals of every terminal under n, in order.
func (n *Node) Leaves() []string {
	if n.Terminal {
		return []string{n.Label}
	}

	var leaves []string
	for _, c := range n.Children {
		leaves = append(leaves, c.Leaves()...)
	}
	return leaves
}

// Equal returns whether the node is equal to another value. It will not be
// equal if the other value is not a Node or a non-nil *Node with the exact
// same structure.
func (n *Node) Equal(o any) bool {
	var other *Node
	switch v := o.(type) {
	case *Node:
		other = v
	case Node:
		other = &v
	default:
		return false
	}

	if n == nil || other == nil {
		return n == other
	}

	if n.Terminal != other.Terminal || n.Label != other.Label {
		return false
	}
	if len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// String returns a compact single-line representation of the subtree rooted at
// n, meant for debugging and test output. Use package render to produce
// human-facing trees.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Terminal {
		return fmt.Sprintf("%q", n.Label)
	}

	var sb strings.Builder
	sb.WriteRune('[')
	sb.WriteString(n.Label)
	for _, c := range n.Children {
		sb.WriteRune(' ')
		sb.WriteString(c.String())
	}
	sb.WriteRune(']')
	return sb.String()
}

// MarshalBinary converts the subtree rooted at n into a slice of bytes that
// can be decoded with UnmarshalBinary.
func (n *Node) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncString(n.Label)...)
	data = append(data, rezi.EncBool(n.Terminal)...)
	data = append(data, rezi.EncInt(len(n.Children))...)
	for _, c := range n.Children {
		data = append(data, rezi.EncBinary(c)...)
	}

	return data, nil
}

// UnmarshalBinary decodes a slice of bytes created by MarshalBinary into n.
// All of n's fields are replaced.
func (n *Node) UnmarshalBinary(data []byte) error {
	var decoded Node
	var readBytes int
	var err error

	decoded.Label, readBytes, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}
	data = data[readBytes:]

	decoded.Terminal, readBytes, err = rezi.DecBool(data)
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	data = data[readBytes:]

	childCount, readBytes, err := rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("child count: %w", err)
	}
	data = data[readBytes:]
	if childCount < 0 {
		return fmt.Errorf("child count < 0")
	}

	if childCount > 0 {
		decoded.Children = make([]*Node, childCount)
	}
	for i := 0; i < childCount; i++ {
		child := &Node{}
		readBytes, err = rezi.DecBinary(data, child)
		if err != nil {
			return fmt.Errorf("child[%d]: %w", i, err)
		}
		data = data[readBytes:]
		decoded.Children[i] = child
	}

	*n = decoded
	return nil
}
