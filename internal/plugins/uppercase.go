package plugins

import (
	"strings"

	"unifold/internal/chain"
	"unifold/internal/node"
	"unifold/internal/processor"
	"unifold/internal/vfile"
)

// Uppercase upper-cases the "value" of every node in the tree and records
// itself in file.Data["transformed_by"]. Option "type" limits it to nodes
// of that type.
var Uppercase = processor.NewPlugin("uppercase", func(_ *processor.Processor, options ...any) (chain.Transformer, error) {
	only := optionString(options, "type", "")
	return chain.Func(func(tree node.Node, file *vfile.File) (node.Node, error) {
		visit(tree, func(m node.Map) {
			if only != "" && m.Type() != only {
				return
			}
			if v, ok := m["value"].(string); ok {
				m["value"] = strings.ToUpper(v)
			}
		})
		file.Data["transformed_by"] = "uppercase"
		return nil, nil
	}), nil
})

// Marker appends a marker to every node value. The text comes from option
// "text", then settings.marker.text, then "!".
var Marker = processor.NewPlugin("marker", func(p *processor.Processor, options ...any) (chain.Transformer, error) {
	text := "!"
	if s, ok := p.Settings()["marker"].(map[string]any); ok {
		if t, ok := s["text"].(string); ok {
			text = t
		}
	}
	text = optionString(options, "text", text)
	return chain.Func(func(tree node.Node, _ *vfile.File) (node.Node, error) {
		visit(tree, func(m node.Map) {
			if v, ok := m["value"].(string); ok {
				m["value"] = v + text
			}
		})
		return nil, nil
	}), nil
})

func visit(n node.Node, fn func(node.Map)) {
	m, ok := n.(node.Map)
	if !ok {
		return
	}
	fn(m)
	for _, c := range m.Children() {
		visit(c, fn)
	}
}
