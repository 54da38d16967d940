package processor

import (
	"context"
	"fmt"
	"time"

	"unifold/internal/chain"
	"unifold/internal/logging"
	"unifold/internal/node"
	"unifold/internal/telemetry"
	"unifold/internal/vfile"
)

// ProcessCallback receives the processed file. On error file may be nil.
type ProcessCallback func(err error, file *vfile.File)

// Process parses file, runs the tree through the transformers and compiles
// the result. A string or []byte result becomes the file value; any other
// result is stored in file.Result and the value is left as is.
func (p *Processor) Process(ctx context.Context, file any) (*vfile.File, error) {
	fut, err := p.startProcess(file)
	if err != nil {
		return nil, err
	}
	return fut.Wait(ctx)
}

// ProcessCallback is Process with the outcome delivered to done exactly
// once. Usage errors are returned directly and done is not called.
func (p *Processor) ProcessCallback(file any, done ProcessCallback) error {
	fut, err := p.startProcess(file)
	if err != nil {
		return err
	}
	fut.Then(func(f *vfile.File, err error) { done(err, f) })
	return nil
}

// ProcessSync is Process for pipelines whose transformers all complete
// synchronously; otherwise it fails with ErrFinishedAsync.
func (p *Processor) ProcessSync(file any) (*vfile.File, error) {
	fut, err := p.startProcess(file)
	if err != nil {
		return nil, err
	}
	state, f, err := fut.Peek()
	if state == chain.Pending {
		return nil, fmt.Errorf("ProcessSync: %w", ErrFinishedAsync)
	}
	return f, err
}

func (p *Processor) startProcess(file any) (*chain.Future[*vfile.File], error) {
	if err := p.Freeze(); err != nil {
		return nil, err
	}
	if p.parser == nil {
		return nil, fmt.Errorf("cannot process: %w", ErrNoParser)
	}
	if p.compiler == nil {
		return nil, fmt.Errorf("cannot process: %w", ErrNoCompiler)
	}
	f, err := vfile.Coerce(file)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	fut, settle := chain.NewFuture[*vfile.File]()
	finish := func(f *vfile.File, err error) {
		telemetry.ObservePhase(telemetry.PhaseProcess, start, err)
		if err != nil {
			logging.L().Debug("processor: process failed", "path", f.Path, "err", err)
		}
		settle(f, err)
	}

	tree, err := p.parse(f)
	if err != nil {
		finish(f, err)
		return fut, nil
	}
	if !node.IsNode(tree) {
		finish(f, fmt.Errorf("parser result: %w", notNodeError(tree)))
		return fut, nil
	}

	p.run(tree, f, func(err error, out node.Node, file *vfile.File) {
		if err != nil {
			finish(file, err)
			return
		}
		result, err := p.stringify(out, file)
		if err != nil {
			finish(file, err)
			return
		}
		setResult(file, result)
		finish(file, nil)
	})
	return fut, nil
}

func setResult(f *vfile.File, result any) {
	switch v := result.(type) {
	case string:
		f.SetValue([]byte(v))
	case []byte:
		f.SetValue(v)
	default:
		f.Result = result
	}
}
