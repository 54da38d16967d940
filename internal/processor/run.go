package processor

import (
	"context"
	"fmt"
	"time"

	"unifold/internal/chain"
	"unifold/internal/node"
	"unifold/internal/telemetry"
	"unifold/internal/vfile"
)

// RunCallback receives the outcome of RunCallback. On error tree is nil.
type RunCallback func(err error, tree node.Node, file *vfile.File)

type ran struct {
	tree node.Node
	file *vfile.File
}

// Run passes tree through the transformers and waits for the result. When
// ctx is done first, Run returns ctx.Err(); transformers already started keep
// running. If no transformer replaced the tree, tree itself is returned.
func (p *Processor) Run(ctx context.Context, tree node.Node, file any) (node.Node, error) {
	fut, err := p.startRun(tree, file)
	if err != nil {
		return nil, err
	}
	r, err := fut.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return r.tree, nil
}

// RunCallback starts a run and reports its outcome to done exactly once,
// possibly after returning. Usage errors are returned directly and done is
// not called.
func (p *Processor) RunCallback(tree node.Node, file any, done RunCallback) error {
	fut, err := p.startRun(tree, file)
	if err != nil {
		return err
	}
	fut.Then(func(r ran, err error) {
		if err != nil {
			done(err, nil, r.file)
			return
		}
		done(nil, r.tree, r.file)
	})
	return nil
}

// RunSync runs the transformers and fails with ErrFinishedAsync if they did
// not all complete before the call returned.
func (p *Processor) RunSync(tree node.Node, file any) (node.Node, error) {
	fut, err := p.startRun(tree, file)
	if err != nil {
		return nil, err
	}
	state, r, err := fut.Peek()
	if state == chain.Pending {
		return nil, fmt.Errorf("RunSync: %w", ErrFinishedAsync)
	}
	if err != nil {
		return nil, err
	}
	return r.tree, nil
}

func (p *Processor) startRun(tree node.Node, file any) (*chain.Future[ran], error) {
	if !node.IsNode(tree) {
		return nil, notNodeError(tree)
	}
	if err := p.Freeze(); err != nil {
		return nil, err
	}
	f, err := vfile.Coerce(file)
	if err != nil {
		return nil, err
	}
	fut, settle := chain.NewFuture[ran]()
	p.run(tree, f, func(err error, out node.Node, file *vfile.File) {
		settle(ran{tree: out, file: file}, err)
	})
	return fut, nil
}

func (p *Processor) run(tree node.Node, f *vfile.File, done chain.Done) {
	start := time.Now()
	p.transformers.Run(tree, f, func(err error, out node.Node, file *vfile.File) {
		telemetry.ObservePhase(telemetry.PhaseRun, start, err)
		done(err, out, file)
	})
}
