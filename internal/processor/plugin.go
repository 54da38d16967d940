package processor

import (
	"unifold/internal/chain"
)

// AttachFunc configures p when it freezes. It may set the parser or the
// compiler, read or write data, and return a transformer that is appended to
// the run chain (nil for none). Options are the values stored by Use, with a
// leading true removed.
type AttachFunc func(p *Processor, options ...any) (chain.Transformer, error)

// Plugin is a named attacher. Plugins are compared by pointer: using the same
// *Plugin twice reconfigures the existing registration.
type Plugin struct {
	Name   string
	Attach AttachFunc
}

func NewPlugin(name string, attach AttachFunc) *Plugin {
	return &Plugin{Name: name, Attach: attach}
}

func (pl *Plugin) String() string {
	if pl.Name == "" {
		return "<anonymous plugin>"
	}
	return pl.Name
}

// TransformerPlugin wraps a transformer that needs no configuration.
func TransformerPlugin(name string, t chain.Transformer) *Plugin {
	return NewPlugin(name, func(*Processor, ...any) (chain.Transformer, error) {
		return t, nil
	})
}

// Preset bundles plugins and shared settings. Plugins holds the same shapes
// Use accepts in a list: *Plugin, []any{plugin, args...} or nested presets.
type Preset struct {
	Plugins  []any
	Settings map[string]any
}
