package chain

import (
	"sync/atomic"

	"unifold/internal/node"
	"unifold/internal/vfile"
)

// Done receives the final outcome of a run. On error, tree is nil.
type Done func(err error, tree node.Node, file *vfile.File)

// Chain is an ordered list of transformers. It is not safe to Use while a
// run is in progress.
type Chain struct {
	steps []Transformer
}

func New(steps ...Transformer) *Chain {
	return &Chain{steps: append([]Transformer(nil), steps...)}
}

func (c *Chain) Use(t Transformer) *Chain {
	c.steps = append(c.steps, t)
	return c
}

func (c *Chain) Len() int { return len(c.steps) }

// Run passes tree and file through every step in order and reports to done
// exactly once. It returns as soon as the chain either completes or reaches
// a step that has not yet called its continuation.
func (c *Chain) Run(tree node.Node, file *vfile.File, done Done) {
	steps := append([]Transformer(nil), c.steps...)
	r := &run{steps: steps, tree: tree, file: file, done: done, index: -1}
	r.next(nil, nil, nil)
}

type run struct {
	steps []Transformer
	tree  node.Node
	file  *vfile.File
	done  Done
	index int
}

func (r *run) next(err error, tree node.Node, file *vfile.File) {
	if err != nil {
		r.done(err, nil, r.file)
		return
	}
	if node.IsNode(tree) {
		r.tree = tree
	}
	if file != nil {
		r.file = file
	}
	r.index++
	if r.index >= len(r.steps) {
		r.done(nil, r.tree, r.file)
		return
	}
	r.steps[r.index].Transform(r.tree, r.file, r.once())
}

func (r *run) once() Next {
	var called atomic.Bool
	return func(err error, tree node.Node, file *vfile.File) {
		if !called.CompareAndSwap(false, true) {
			return
		}
		r.next(err, tree, file)
	}
}
