package processor

import (
	"github.com/mitchellh/copystructure"
)

// isPlainObject reports whether v is a key-value option bag. Only these are
// merged on reconfiguration; slices, structs and everything else replace.
func isPlainObject(v any) bool {
	m, ok := v.(map[string]any)
	return ok && m != nil
}

func deepClone[T any](v T) T {
	c, err := copystructure.Copy(v)
	if err != nil {
		return v
	}
	out, ok := c.(T)
	if !ok {
		return v
	}
	return out
}

func shallowMerge(base, over map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
