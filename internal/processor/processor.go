// Package processor is a pluggable content processor. A Processor is
// configured with plugins while unfrozen, freezes on first use, and then
// parses text into a tree, runs the tree through the transformers the
// plugins contributed, and compiles it back to output.
package processor

import (
	"fmt"
	"math"

	"unifold/internal/chain"
	"unifold/internal/logging"
)

// SettingsKey is the data key holding settings merged from presets.
const SettingsKey = "settings"

type state int

const (
	unfrozen state = iota
	freezing
	frozen
)

type attacher struct {
	plugin *Plugin
	params []any
}

// Processor is not safe for concurrent configuration. Once frozen, its
// execution methods may be called from multiple goroutines.
type Processor struct {
	attachers    []attacher
	namespace    map[string]any
	transformers *chain.Chain

	parser   Parser
	compiler Compiler

	state       state
	freezeIndex int
	freezeErr   error
}

func New() *Processor {
	return &Processor{
		namespace:    map[string]any{},
		transformers: chain.New(),
		freezeIndex:  -1,
	}
}

// Copy returns a new unfrozen processor with the same plugins, options and
// data. The copy shares no mutable state with p. A parser or compiler set
// directly on p rather than by a plugin is not carried over.
func (p *Processor) Copy() *Processor {
	dst := New()
	for _, a := range p.attachers {
		// cannot fail: dst is unfrozen and a.plugin is a *Plugin
		_ = dst.Use(a.plugin, a.params...)
	}
	dst.namespace = deepClone(p.namespace)
	if dst.namespace == nil {
		dst.namespace = map[string]any{}
	}
	return dst
}

// Frozen reports whether configuration is locked.
func (p *Processor) Frozen() bool { return p.state == frozen }

// Freeze runs every registered plugin once, in registration order, and locks
// the configuration. Calling it again, or from inside a plugin while the
// processor is freezing, does nothing. If a plugin fails, the processor is
// still frozen and the error is returned by this and every later call.
func (p *Processor) Freeze() error {
	switch p.state {
	case frozen:
		return p.freezeErr
	case freezing:
		return nil
	}
	p.state = freezing
	defer func() {
		if r := recover(); r != nil {
			if p.freezeErr == nil && p.freezeIndex >= 0 && p.freezeIndex < len(p.attachers) {
				p.freezeErr = fmtPluginError(p.attachers[p.freezeIndex].plugin, fmt.Errorf("panic: %v", r))
			}
			p.seal()
			panic(r)
		}
	}()

	for p.freezeIndex+1 < len(p.attachers) {
		p.freezeIndex++
		a := p.attachers[p.freezeIndex]

		options, enabled := attachOptions(a.params)
		if !enabled {
			logging.L().Debug("processor: plugin disabled", "plugin", a.plugin.String())
			continue
		}
		if a.plugin.Attach == nil {
			continue
		}
		t, err := a.plugin.Attach(p, options...)
		if err != nil {
			p.freezeErr = fmtPluginError(a.plugin, err)
			logging.L().Warn("processor: plugin failed", "plugin", a.plugin.String(), "err", err)
			break
		}
		if t != nil {
			p.transformers.Use(t)
		}
		logging.L().Debug("processor: plugin attached", "plugin", a.plugin.String(), "transformer", t != nil)
	}

	p.seal()
	return p.freezeErr
}

func (p *Processor) seal() {
	p.state = frozen
	p.freezeIndex = math.MaxInt
}

// attachOptions applies the enable/disable convention: a leading false skips
// the plugin, a leading true means "no options".
func attachOptions(params []any) ([]any, bool) {
	if len(params) == 0 {
		return nil, true
	}
	if first, ok := params[0].(bool); ok {
		if !first {
			return nil, false
		}
		if len(params) == 1 {
			return nil, true
		}
		return append([]any{nil}, params[1:]...), true
	}
	return append([]any(nil), params...), true
}

func (p *Processor) assertUnfrozen(op string) error {
	if p.state == frozen {
		return frozenError(op)
	}
	return nil
}

// Parser returns the configured parser, or nil.
func (p *Processor) Parser() Parser { return p.parser }

// Compiler returns the configured compiler, or nil.
func (p *Processor) Compiler() Compiler { return p.compiler }

// SetParser sets the parser. Plugins usually call it while freezing.
func (p *Processor) SetParser(parser Parser) error {
	if err := p.assertUnfrozen("SetParser"); err != nil {
		return err
	}
	p.parser = parser
	return nil
}

// SetCompiler sets the compiler. Plugins usually call it while freezing.
func (p *Processor) SetCompiler(compiler Compiler) error {
	if err := p.assertUnfrozen("SetCompiler"); err != nil {
		return err
	}
	p.compiler = compiler
	return nil
}

// Transformers reports how many transformers the plugins contributed.
func (p *Processor) Transformers() int { return p.transformers.Len() }

// Plugins returns the registered plugins in order with a copy of their
// stored parameters.
func (p *Processor) Plugins() []Registration {
	out := make([]Registration, 0, len(p.attachers))
	for _, a := range p.attachers {
		out = append(out, Registration{Plugin: a.plugin, Params: append([]any(nil), a.params...)})
	}
	return out
}

// Registration describes one registered plugin.
type Registration struct {
	Plugin *Plugin
	Params []any
}
