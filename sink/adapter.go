// Package sink holds the registry of output drivers. A sink receives every
// processed file; drivers live in subpackages and register from init.
package sink

import (
	"fmt"
	"sort"

	"unifold/internal/vfile"
)

// EmitFn is what a sink calls once a file is durably handled.
type EmitFn func(*vfile.File)

// Adapter is the common behaviour every sink exposes.
type Adapter interface {
	Configure(any) error // driver-specific config struct
	Push(*vfile.File) error
	Close() error // idempotent
}

// AckAware is optional. Sinks that acknowledge asynchronously implement it
// and the pipeline binds the callback; other sinks count as acknowledged as
// soon as Push returns.
type AckAware interface {
	BindAck(EmitFn)
}

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown sink %q (have %v)", name, Names())
}

func Names() []string {
	out := make([]string, 0, len(reg))
	for n := range reg {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
