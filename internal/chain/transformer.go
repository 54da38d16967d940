package chain

import (
	"unifold/internal/node"
	"unifold/internal/vfile"
)

// Next resumes the chain. A nil tree or file keeps the current one; a non-nil
// err stops the chain. Only the first call to a given Next counts.
type Next func(err error, tree node.Node, file *vfile.File)

type Transformer interface {
	Transform(tree node.Node, file *vfile.File, next Next)
}

// Func is a synchronous transformer. Returning a node-shaped value replaces
// the tree; returning nil keeps it.
type Func func(tree node.Node, file *vfile.File) (node.Node, error)

func (f Func) Transform(tree node.Node, file *vfile.File, next Next) {
	out, err := f(tree, file)
	next(err, out, nil)
}

// Async is a continuation-style transformer. It must call next exactly once,
// from any goroutine, possibly after returning.
type Async func(tree node.Node, file *vfile.File, next Next)

func (f Async) Transform(tree node.Node, file *vfile.File, next Next) {
	f(tree, file, next)
}

// Deferred returns a future tree. A nil future leaves the tree unchanged.
type Deferred func(tree node.Node, file *vfile.File) *Future[node.Node]

func (f Deferred) Transform(tree node.Node, file *vfile.File, next Next) {
	fut := f(tree, file)
	if fut == nil {
		next(nil, nil, nil)
		return
	}
	fut.Then(func(out node.Node, err error) { next(err, out, nil) })
}
