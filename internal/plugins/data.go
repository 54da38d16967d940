package plugins

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"unifold/internal/chain"
	"unifold/internal/node"
	"unifold/internal/processor"
	"unifold/internal/vfile"
)

// JSON parses a JSON object into a tree. Objects without a "type" are
// wrapped as {"type": "root", "data": ...}. Option "indent" (bool) pretty
// prints the output.
var JSON = processor.NewPlugin("json", func(p *processor.Processor, options ...any) (chain.Transformer, error) {
	indent := optionBool(options, "indent")
	if err := p.SetParser(processor.ParserFunc(func(text string, file *vfile.File) (node.Node, error) {
		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return nil, file.Fail(err, "json")
		}
		return treeFromDocument(v), nil
	})); err != nil {
		return nil, err
	}
	return nil, p.SetCompiler(processor.CompilerFunc(func(tree node.Node, _ *vfile.File) (any, error) {
		plain, err := documentFromTree(tree)
		if err != nil {
			return nil, err
		}
		if indent {
			return json.MarshalIndent(plain, "", "  ")
		}
		return json.Marshal(plain)
	}))
})

// YAML is JSON for YAML documents.
var YAML = processor.NewPlugin("yaml", func(p *processor.Processor, _ ...any) (chain.Transformer, error) {
	if err := p.SetParser(processor.ParserFunc(func(text string, file *vfile.File) (node.Node, error) {
		var v any
		if err := yaml.Unmarshal([]byte(text), &v); err != nil {
			return nil, file.Fail(err, "yaml")
		}
		return treeFromDocument(v), nil
	})); err != nil {
		return nil, err
	}
	return nil, p.SetCompiler(processor.CompilerFunc(func(tree node.Node, _ *vfile.File) (any, error) {
		plain, err := documentFromTree(tree)
		if err != nil {
			return nil, err
		}
		return yaml.Marshal(plain)
	}))
})

func treeFromDocument(v any) node.Node {
	if m, ok := v.(map[string]any); ok {
		if _, typed := m["type"].(string); typed {
			return node.FromPlain(m)
		}
	}
	return node.Map{"type": "root", "data": v}
}

// documentFromTree undoes the wrapping done by treeFromDocument.
func documentFromTree(tree node.Node) (any, error) {
	plain, err := node.ToPlain(tree)
	if err != nil {
		return nil, err
	}
	if data, ok := plain["data"]; ok && plain["type"] == "root" && len(plain) == 2 {
		return data, nil
	}
	return plain, nil
}

func errUnsupportedTree(tree node.Node) error {
	return fmt.Errorf("plugins: cannot compile %T", tree)
}
