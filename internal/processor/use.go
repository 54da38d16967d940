package processor

import (
	"fmt"
)

// Use registers a plugin, a list of pluggables, or a preset.
//
// value may be nil (ignored), a *Plugin, a []any or []*Plugin list whose
// items are plugins, []any{plugin, params...} tuples or presets, or a Preset
// (by value or pointer). Using a plugin that is already registered
// reconfigures it: when both the stored and the new first parameter are
// map[string]any option bags they are merged, new keys winning; otherwise the
// new parameters replace the old ones. A first parameter of false disables
// the plugin, true re-enables it without options.
func (p *Processor) Use(value any, params ...any) error {
	if err := p.assertUnfrozen("use"); err != nil {
		return err
	}
	switch v := value.(type) {
	case nil:
		return nil
	case *Plugin:
		if v == nil {
			return nil
		}
		p.addPlugin(v, params)
		return nil
	case []any:
		return p.addList(v)
	case []*Plugin:
		for _, pl := range v {
			if pl != nil {
				p.addPlugin(pl, nil)
			}
		}
		return nil
	case Preset:
		return p.addPreset(&v)
	case *Preset:
		if v == nil {
			return nil
		}
		return p.addPreset(v)
	}
	return fmt.Errorf("%w, not %T (%v)", ErrInvalidUsable, value, value)
}

// MustUse is Use for chained configuration; it panics on error.
func (p *Processor) MustUse(value any, params ...any) *Processor {
	if err := p.Use(value, params...); err != nil {
		panic(err)
	}
	return p
}

func (p *Processor) addList(list []any) error {
	for _, item := range list {
		if err := p.addPluggable(item); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) addPluggable(item any) error {
	switch v := item.(type) {
	case *Plugin:
		if v != nil {
			p.addPlugin(v, nil)
		}
		return nil
	case []any:
		if len(v) == 0 {
			return fmt.Errorf("%w, not an empty tuple", ErrInvalidUsable)
		}
		pl, ok := v[0].(*Plugin)
		if !ok || pl == nil {
			return fmt.Errorf("%w, tuple must start with a *Plugin, not %T", ErrInvalidUsable, v[0])
		}
		p.addPlugin(pl, v[1:])
		return nil
	case Preset:
		return p.addPreset(&v)
	case *Preset:
		if v == nil {
			return fmt.Errorf("%w, not a nil *Preset", ErrInvalidUsable)
		}
		return p.addPreset(v)
	}
	return fmt.Errorf("%w, not %T (%v)", ErrInvalidUsable, item, item)
}

func (p *Processor) addPreset(preset *Preset) error {
	if preset.Plugins == nil && preset.Settings == nil {
		return ErrEmptyPreset
	}
	if preset.Plugins != nil {
		if err := p.addList(preset.Plugins); err != nil {
			return err
		}
	}
	if preset.Settings != nil {
		current, _ := p.namespace[SettingsKey].(map[string]any)
		p.namespace[SettingsKey] = shallowMerge(current, deepClone(preset.Settings))
	}
	return nil
}

func (p *Processor) addPlugin(pl *Plugin, params []any) {
	index := -1
	for i, a := range p.attachers {
		if a.plugin == pl {
			index = i
			break
		}
	}

	if index == -1 {
		p.attachers = append(p.attachers, attacher{plugin: pl, params: cloneParams(params)})
		return
	}
	if len(params) == 0 {
		return
	}

	primary := params[0]
	var current any
	if old := p.attachers[index].params; len(old) > 0 {
		current = old[0]
	}
	if isPlainObject(current) && isPlainObject(primary) {
		primary = deepClone(shallowMerge(current.(map[string]any), primary.(map[string]any)))
	} else {
		primary = cloneParam(primary)
	}
	stored := append([]any{primary}, cloneParams(params[1:])...)
	p.attachers[index] = attacher{plugin: pl, params: stored}
}

func cloneParams(params []any) []any {
	if len(params) == 0 {
		return nil
	}
	out := make([]any, len(params))
	for i, v := range params {
		out[i] = cloneParam(v)
	}
	return out
}

// cloneParam copies option bags so later changes by the caller do not leak
// into the registration. Other values are stored as given.
func cloneParam(v any) any {
	if isPlainObject(v) {
		return deepClone(v.(map[string]any))
	}
	return v
}
