package plugins

import (
	"strings"

	"unifold/internal/chain"
	"unifold/internal/node"
	"unifold/internal/processor"
	"unifold/internal/vfile"
)

// Text parses documents into a root of "line" nodes and compiles them back
// by joining line values with newlines. A trailing newline survives the
// round trip.
var Text = processor.NewPlugin("text", func(p *processor.Processor, _ ...any) (chain.Transformer, error) {
	if err := p.SetParser(processor.ParserFunc(parseText)); err != nil {
		return nil, err
	}
	return nil, p.SetCompiler(processor.CompilerFunc(compileText))
})

func parseText(text string, _ *vfile.File) (node.Node, error) {
	if text == "" {
		return node.Parent("root"), nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	kids := make([]node.Node, 0, len(lines))
	for _, l := range lines {
		kids = append(kids, node.Text("line", l))
	}
	root := node.Parent("root", kids...)
	if strings.HasSuffix(text, "\n") {
		root["eol"] = true
	}
	return root, nil
}

func compileText(tree node.Node, _ *vfile.File) (any, error) {
	m, ok := tree.(node.Map)
	if !ok {
		return nil, errUnsupportedTree(tree)
	}
	if len(m.Children()) == 0 {
		return m.Value(), nil
	}
	var b strings.Builder
	for i, c := range m.Children() {
		if i > 0 {
			b.WriteByte('\n')
		}
		if cm, ok := c.(node.Map); ok {
			b.WriteString(cm.Value())
		}
	}
	if eol, _ := m["eol"].(bool); eol {
		b.WriteByte('\n')
	}
	return b.String(), nil
}
