package document

import (
	"fmt"
	"strings"
)

// DefaultIndent is the indentation unit applied per nesting level.
const DefaultIndent = 4

// Renderer turns a node tree into indented structured text.
//
// Rules: mapping values that are themselves mappings or sequences render as
// "key:" followed by their children one level deeper; scalar values render
// inline as "key: value"; sequence scalars render as "- value"; sequence
// elements that are mappings splice the "- " marker over the first key's
// indentation with subsequent keys aligned under it; an empty mapping
// renders as an empty block under its key rather than an omitted key.
type Renderer struct {
	Indent int // spaces per nesting level, DefaultIndent if zero
}

// Render renders the tree with the default indentation unit.
func Render(n *Node) (string, error) {
	return (&Renderer{}).Render(n)
}

// Render renders the tree rooted at n.
func (r *Renderer) Render(n *Node) (string, error) {
	var b strings.Builder
	if err := r.render(&b, n, 0, 0, ""); err != nil {
		return "", err
	}
	return b.String(), nil
}

// render walks the tree. depth counts nesting levels, extra holds the
// additional spaces accumulated by sequence-of-mapping elements, and marker
// carries the "- " prefix to splice over the first key of such an element.
func (r *Renderer) render(b *strings.Builder, n *Node, depth, extra int, marker string) error {
	unit := r.Indent
	if unit <= 0 {
		unit = DefaultIndent
	}
	indent := strings.Repeat(" ", depth*unit+extra)

	switch n.kind {
	case KindMapping:
		prefix := indent
		if marker != "" {
			prefix = strings.Repeat(" ", max(len(indent)-len(marker), 0)) + marker
		}
		for _, e := range n.entries {
			v := e.Value
			if v == nil {
				v = Scalar("")
			}
			switch v.kind {
			case KindMapping, KindSequence:
				fmt.Fprintf(b, "%s%s:\n", prefix, e.Key)
				if err := r.render(b, v, depth+1, extra, ""); err != nil {
					return err
				}
			default:
				s, err := formatScalar(v.scalar)
				if err != nil {
					return err
				}
				fmt.Fprintf(b, "%s%s: %s\n", prefix, e.Key, s)
			}
			prefix = indent
		}
	case KindSequence:
		for _, item := range n.items {
			switch item.kind {
			case KindMapping:
				if err := r.render(b, item, depth, extra+2, "- "); err != nil {
					return err
				}
			case KindSequence:
				if err := r.render(b, item, depth+1, extra, ""); err != nil {
					return err
				}
			default:
				s, err := formatScalar(item.scalar)
				if err != nil {
					return err
				}
				fmt.Fprintf(b, "%s- %s\n", indent, s)
			}
		}
	default:
		s, err := formatScalar(n.scalar)
		if err != nil {
			return err
		}
		fmt.Fprintf(b, "%s\n", s)
	}
	return nil
}

// formatScalar renders a leaf value. Only plain scalars are representable;
// anything else is a contract violation by the tree builder.
func formatScalar(v any) (string, error) {
	switch v.(type) {
	case nil:
		return "", nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return fmt.Sprintf("%v", v), nil
	}
	return "", &SerializationError{Value: v}
}
