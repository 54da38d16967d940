package processor

// Data returns the whole namespace. The map is the processor's own; modify
// it only through SetData and ReplaceData.
func (p *Processor) Data() map[string]any { return p.namespace }

// Lookup returns the value stored under key, if the key is present.
func (p *Processor) Lookup(key string) (any, bool) {
	v, ok := p.namespace[key]
	return v, ok
}

// Settings returns the settings merged from presets, or nil.
func (p *Processor) Settings() map[string]any {
	s, _ := p.namespace[SettingsKey].(map[string]any)
	return s
}

// SetData stores value under key.
func (p *Processor) SetData(key string, value any) error {
	if err := p.assertUnfrozen("data"); err != nil {
		return err
	}
	p.namespace[key] = value
	return nil
}

// ReplaceData installs ns as the whole namespace.
func (p *Processor) ReplaceData(ns map[string]any) error {
	if err := p.assertUnfrozen("data"); err != nil {
		return err
	}
	if ns == nil {
		ns = map[string]any{}
	}
	p.namespace = ns
	return nil
}
