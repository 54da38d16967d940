package plugins

import (
	"fmt"
	"sort"
	"sync"

	"unifold/internal/processor"
	"unifold/internal/spec"
)

var (
	mu  sync.RWMutex
	reg = map[string]*processor.Plugin{}
)

// Register makes a plugin available under its name. Registering the same
// name twice replaces the earlier plugin.
func Register(p *processor.Plugin) {
	mu.Lock()
	reg[p.Name] = p
	mu.Unlock()
}

func Lookup(name string) (*processor.Plugin, error) {
	mu.RLock()
	defer mu.RUnlock()
	if p, ok := reg[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown plugin %q", name)
}

func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(reg))
	for n := range reg {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// BuildPreset resolves the plugins named in a preset file. A plugin listed
// with enabled: false stays registered but is skipped when freezing.
func BuildPreset(plugins []spec.PluginSpec, settings map[string]any) (processor.Preset, error) {
	preset := processor.Preset{Plugins: []any{}, Settings: settings}
	for _, ps := range plugins {
		pl, err := Lookup(ps.Name)
		if err != nil {
			return processor.Preset{}, err
		}
		switch {
		case ps.Enabled != nil && !*ps.Enabled:
			preset.Plugins = append(preset.Plugins, []any{pl, false})
		case ps.Options != nil:
			preset.Plugins = append(preset.Plugins, []any{pl, ps.Options})
		default:
			preset.Plugins = append(preset.Plugins, pl)
		}
	}
	return preset, nil
}

// optionString reads a string option, falling back to def.
func optionString(options []any, key, def string) string {
	if len(options) == 0 {
		return def
	}
	m, ok := options[0].(map[string]any)
	if !ok {
		return def
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return def
}

func optionBool(options []any, key string) bool {
	if len(options) == 0 {
		return false
	}
	m, _ := options[0].(map[string]any)
	b, _ := m[key].(bool)
	return b
}

func init() {
	Register(Text)
	Register(JSON)
	Register(YAML)
	Register(Uppercase)
	Register(Marker)
}
