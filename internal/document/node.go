// Package document models a schema-free value tree — scalars, ordered
// mappings, and sequences — and renders it as indented structured text.
// It knows nothing about the topology data it carries.
package document

import "fmt"

// Kind discriminates the node variants.
type Kind int

const (
	KindScalar Kind = iota
	KindMapping
	KindSequence
)

// Entry is a single key/value pair of a mapping.
type Entry struct {
	Key   string
	Value *Node
}

// Node is one value in the tree: a scalar, an ordered mapping, or a
// sequence. Mapping entries keep insertion order, which makes rendering
// deterministic for identical input.
type Node struct {
	kind    Kind
	scalar  any
	entries []Entry
	items   []*Node
}

// Scalar wraps a leaf value. The value is formatted at render time;
// unsupported types surface as a SerializationError there.
func Scalar(v any) *Node {
	return &Node{kind: KindScalar, scalar: v}
}

// Mapping creates an empty ordered mapping.
func Mapping() *Node {
	return &Node{kind: KindMapping}
}

// Sequence creates a sequence from the given items.
func Sequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: items}
}

// Kind returns the node variant.
func (n *Node) Kind() Kind { return n.kind }

// Len returns the number of entries or items; 0 for scalars.
func (n *Node) Len() int {
	switch n.kind {
	case KindMapping:
		return len(n.entries)
	case KindSequence:
		return len(n.items)
	}
	return 0
}

// Set appends a key/value entry, or replaces the value if the key is
// already present. Returns the node for chaining.
func (n *Node) Set(key string, value *Node) *Node {
	for i := range n.entries {
		if n.entries[i].Key == key {
			n.entries[i].Value = value
			return n
		}
	}
	n.entries = append(n.entries, Entry{Key: key, Value: value})
	return n
}

// SetScalar is shorthand for Set(key, Scalar(v)).
func (n *Node) SetScalar(key string, v any) *Node {
	return n.Set(key, Scalar(v))
}

// Append adds items to a sequence. Returns the node for chaining.
func (n *Node) Append(items ...*Node) *Node {
	n.items = append(n.items, items...)
	return n
}

// Entries returns the mapping entries in insertion order.
func (n *Node) Entries() []Entry { return n.entries }

// Items returns the sequence items.
func (n *Node) Items() []*Node { return n.items }

// SerializationError reports a value the renderer cannot represent.
// It indicates a programming error in the tree builder, not bad user input.
type SerializationError struct {
	Value any
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("document: unrepresentable scalar of type %T", e.Value)
}
