package transform

import (
	"fmt"
	"sync"
	"time"

	"unifold/internal/chain"
	"unifold/internal/plugins"
	"unifold/internal/processor"
)

// Remote sends the tree to a transformer server. Options:
//
//	address        host:port of the server (required)
//	timeout_ms     per attempt, default 5000
//	retry_attempts extra attempts on Unavailable, default 2
//	backoff_ms     linear backoff base, default 100
//	breaker_failures consecutive unavailable calls before failing fast, default 5 (0 disables)
//	breaker_open_ms  how long the breaker stays open, default 10000
var Remote = processor.NewPlugin("remote", func(_ *processor.Processor, options ...any) (chain.Transformer, error) {
	var opts map[string]any
	if len(options) > 0 {
		opts, _ = options[0].(map[string]any)
	}
	addr, _ := opts["address"].(string)
	if addr == "" {
		return nil, fmt.Errorf("remote: address is required")
	}
	c, err := clientFor(addr)
	if err != nil {
		return nil, err
	}
	return Transformer("remote "+addr, c, policyFrom(opts)), nil
})

func policyFrom(opts map[string]any) Policy {
	pol := DefaultPolicy()
	if v, ok := number(opts["timeout_ms"]); ok {
		pol.Timeout = time.Duration(v) * time.Millisecond
	}
	if v, ok := number(opts["retry_attempts"]); ok {
		pol.RetryAttempts = v
	}
	if v, ok := number(opts["backoff_ms"]); ok {
		pol.Backoff = time.Duration(v) * time.Millisecond
	}
	if v, ok := number(opts["breaker_failures"]); ok && v >= 0 {
		pol.BreakerFailures = uint32(v)
	}
	if v, ok := number(opts["breaker_open_ms"]); ok {
		pol.BreakerOpen = time.Duration(v) * time.Millisecond
	}
	return pol
}

// number accepts what YAML and JSON decoders produce.
func number(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

var (
	poolMu sync.Mutex
	pool   = map[string]*GRPCClient{}
)

// clientFor shares one connection per address across processors.
func clientFor(addr string) (*GRPCClient, error) {
	poolMu.Lock()
	defer poolMu.Unlock()
	if c, ok := pool[addr]; ok {
		return c, nil
	}
	c, err := NewGRPCClient(addr)
	if err != nil {
		return nil, err
	}
	pool[addr] = c
	return c, nil
}

// CloseAll closes every pooled connection.
func CloseAll() error {
	poolMu.Lock()
	defer poolMu.Unlock()
	var first error
	for addr, c := range pool {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
		delete(pool, addr)
	}
	return first
}

func init() {
	plugins.Register(Remote)
}
