package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"unifold/internal/chain"
	"unifold/internal/logging"
	"unifold/internal/node"
	"unifold/internal/transport"
	"unifold/internal/vfile"
)

// Policy bounds a single remote call.
type Policy struct {
	// Timeout bounds each attempt. Zero or less leaves attempts unbounded.
	Timeout       time.Duration
	RetryAttempts int
	Backoff       time.Duration

	// BreakerFailures consecutive unavailable calls open the breaker for
	// BreakerOpen. Zero disables the breaker.
	BreakerFailures uint32
	BreakerOpen     time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		Timeout:         5 * time.Second,
		RetryAttempts:   2,
		Backoff:         100 * time.Millisecond,
		BreakerFailures: 5,
		BreakerOpen:     10 * time.Second,
	}
}

type remote struct {
	c   Client
	pol Policy
	cb  *gobreaker.CircuitBreaker
}

// Transformer adapts c to the run chain. Each call runs on its own goroutine
// and resumes the chain when the remote side answers, so the returned
// transformer is always asynchronous.
func Transformer(name string, c Client, pol Policy) chain.Transformer {
	r := &remote{c: c, pol: pol}
	if pol.BreakerFailures > 0 {
		r.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: pol.BreakerOpen,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= pol.BreakerFailures
			},
			// A document the remote side rejects says nothing about its health.
			IsSuccessful: func(err error) bool { return err == nil || !retryable(err) },
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.L().Warn("remote transformer breaker", "name", name, "from", from.String(), "to", to.String())
			},
		})
	}
	return chain.Async(func(tree node.Node, file *vfile.File, next chain.Next) {
		go func() {
			out, back, err := r.call(tree, file)
			if err != nil {
				next(err, nil, nil)
				return
			}
			transport.Merge(file, back)
			next(nil, out, nil)
		}()
	})
}

type result struct {
	tree node.Node
	file *vfile.File
}

func (r *remote) call(tree node.Node, file *vfile.File) (node.Node, *vfile.File, error) {
	if r.cb == nil {
		return r.retry(tree, file)
	}
	v, err := r.cb.Execute(func() (interface{}, error) {
		out, back, err := r.retry(tree, file)
		return result{out, back}, err
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, nil, fmt.Errorf("remote %s: %w", r.cb.Name(), err)
		}
		return nil, nil, err
	}
	res := v.(result)
	return res.tree, res.file, nil
}

func (r *remote) retry(tree node.Node, file *vfile.File) (node.Node, *vfile.File, error) {
	var err error
	for attempt := 0; attempt <= r.pol.RetryAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(r.pol.Backoff * time.Duration(attempt))
		}
		ctx, cancel := r.attemptContext()
		var (
			out  node.Node
			back *vfile.File
		)
		out, back, err = r.c.Transform(ctx, tree, file)
		cancel()
		if err == nil {
			return out, back, nil
		}
		if !retryable(err) {
			return nil, nil, err
		}
		logging.L().Warn("remote transform failed, retrying", "attempt", attempt+1, "err", err)
	}
	return nil, nil, err
}

func (r *remote) attemptContext() (context.Context, context.CancelFunc) {
	if r.pol.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), r.pol.Timeout)
}

func retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded:
		return true
	}
	return false
}
