// Package node defines the minimal tree contract the processor relies on:
// a node is any value that reports a type name. The processor never looks
// deeper than that.
package node

// Node is a syntax tree node.
type Node interface {
	Type() string
}

// Map is a schemaless node backed by a map. Its type is read from the
// "type" key; a Map without a string "type" is not node-shaped.
type Map map[string]any

func (m Map) Type() string {
	s, _ := m["type"].(string)
	return s
}

// Value returns the "value" entry as a string, or "" when it is absent.
func (m Map) Value() string {
	s, _ := m["value"].(string)
	return s
}

// Children returns the nodes stored under "children".
func (m Map) Children() []Node {
	var out []Node
	switch kids := m["children"].(type) {
	case []Node:
		return kids
	case []any:
		for _, k := range kids {
			if n, ok := asNode(k); ok {
				out = append(out, n)
			}
		}
	case []Map:
		for _, k := range kids {
			out = append(out, k)
		}
	}
	return out
}

// IsNode reports whether v looks like a node: it is non-nil, implements
// Node, and (for Map values) carries a string "type".
func IsNode(v any) bool {
	_, ok := asNode(v)
	return ok
}

func asNode(v any) (Node, bool) {
	switch n := v.(type) {
	case nil:
		return nil, false
	case Map:
		if n == nil {
			return nil, false
		}
		_, ok := n["type"].(string)
		return n, ok
	case map[string]any:
		if _, ok := n["type"].(string); ok {
			return Map(n), true
		}
		return nil, false
	case Node:
		return n, !isNilPointer(n)
	}
	return nil, false
}

// Text creates a leaf node carrying a string value.
func Text(typ, value string) Map {
	return Map{"type": typ, "value": value}
}

// Parent creates a node with children.
func Parent(typ string, children ...Node) Map {
	kids := make([]any, 0, len(children))
	for _, c := range children {
		kids = append(kids, c)
	}
	return Map{"type": typ, "children": kids}
}
