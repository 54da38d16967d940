package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"unifold/internal/logging"
	"unifold/internal/processor"
	"unifold/internal/telemetry"
	"unifold/internal/vfile"
	"unifold/sink"
	"unifold/source/kafka"
)

// Runner feeds every file from the source through the processor and pushes
// the result to all sinks. A file is acknowledged back to the source once
// every ack-aware sink has acknowledged it.
type Runner struct {
	proc     *processor.Processor
	source   kafka.Adapter
	sinks    []sink.Adapter
	ackers   int
	failFast bool

	mu      sync.Mutex
	subs    []func(*vfile.File)
	pending map[*vfile.File]int
}

func NewRunner(p *processor.Processor) *Runner {
	return &Runner{proc: p, pending: map[*vfile.File]int{}}
}

func (r *Runner) Processor() *processor.Processor { return r.proc }
func (r *Runner) SetSource(s kafka.Adapter)        { r.source = s }
func (r *Runner) SetFailFast(v bool)               { r.failFast = v }

// AddSink registers s and, when it acknowledges asynchronously, binds it to
// r.Ack.
func (r *Runner) AddSink(s sink.Adapter) {
	if aw, ok := s.(sink.AckAware); ok {
		aw.BindAck(r.Ack)
		r.ackers++
	}
	r.sinks = append(r.sinks, s)
}

func (r *Runner) SubscribeAck(fn func(*vfile.File)) {
	r.mu.Lock()
	r.subs = append(r.subs, fn)
	r.mu.Unlock()
}

// Ack records one sink acknowledgement for f.
func (r *Runner) Ack(f *vfile.File) {
	r.mu.Lock()
	n, ok := r.pending[f]
	if !ok {
		r.mu.Unlock()
		return
	}
	if n > 1 {
		r.pending[f] = n - 1
		r.mu.Unlock()
		return
	}
	delete(r.pending, f)
	r.mu.Unlock()
	r.publish(f)
}

func (r *Runner) publish(f *vfile.File) {
	r.mu.Lock()
	handlers := append([]func(*vfile.File){}, r.subs...)
	r.mu.Unlock()
	for _, fn := range handlers {
		fn(f)
	}
}

// handle is the source's emit callback.
func (r *Runner) handle(ctx context.Context, f *vfile.File) error {
	out, err := r.proc.Process(ctx, f)
	telemetry.CountDocument(err)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.L().Warn("document failed", "path", f.Path, "err", err)
		if r.failFast {
			return fmt.Errorf("pipeline: %s: %w", f.Path, err)
		}
		// Skip it: the source may move past a document that will never succeed.
		r.publish(f)
		return nil
	}
	return r.push(out)
}

func (r *Runner) push(f *vfile.File) error {
	if r.ackers > 0 {
		r.mu.Lock()
		r.pending[f] = r.ackers
		r.mu.Unlock()
	}
	for _, s := range r.sinks {
		if err := s.Push(f); err != nil {
			r.mu.Lock()
			delete(r.pending, f)
			r.mu.Unlock()
			return err
		}
	}
	if r.ackers == 0 {
		r.publish(f)
	}
	return nil
}

// Run blocks until the source stops.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return errors.New("runner: no source configured")
	}
	return r.source.Run(ctx, func(f *vfile.File) error { return r.handle(ctx, f) })
}

// Start runs the source in the background. Without a source it does nothing.
func (r *Runner) Start(ctx context.Context) error {
	if r.source == nil {
		return nil
	}
	go func() {
		if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.L().Error("pipeline stopped", "err", err)
		}
	}()
	return nil
}

func (r *Runner) Close() error {
	var errs []error
	if r.source != nil {
		errs = append(errs, r.source.Close())
	}
	for _, s := range r.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
