package processor

import (
	"fmt"
	"time"

	"unifold/internal/node"
	"unifold/internal/telemetry"
	"unifold/internal/vfile"
)

// Parse freezes the processor and parses file into a tree. file may be a
// *vfile.File or anything vfile.New accepts. The tree is returned as the
// parser produced it.
func (p *Processor) Parse(file any) (node.Node, error) {
	if err := p.Freeze(); err != nil {
		return nil, err
	}
	f, err := vfile.Coerce(file)
	if err != nil {
		return nil, err
	}
	if p.parser == nil {
		return nil, fmt.Errorf("cannot parse: %w", ErrNoParser)
	}
	return p.parse(f)
}

func (p *Processor) parse(f *vfile.File) (node.Node, error) {
	start := time.Now()
	tree, err := p.parser.Parse(f.String(), f)
	telemetry.ObservePhase(telemetry.PhaseParse, start, err)
	return tree, err
}

// Stringify freezes the processor and compiles tree. The compiler's result
// is returned unchanged.
func (p *Processor) Stringify(tree node.Node, file any) (any, error) {
	if err := p.Freeze(); err != nil {
		return nil, err
	}
	f, err := vfile.Coerce(file)
	if err != nil {
		return nil, err
	}
	if !node.IsNode(tree) {
		return nil, notNodeError(tree)
	}
	if p.compiler == nil {
		return nil, fmt.Errorf("cannot stringify: %w", ErrNoCompiler)
	}
	return p.stringify(tree, f)
}

func (p *Processor) stringify(tree node.Node, f *vfile.File) (any, error) {
	start := time.Now()
	out, err := p.compiler.Compile(tree, f)
	telemetry.ObservePhase(telemetry.PhaseStringify, start, err)
	return out, err
}
