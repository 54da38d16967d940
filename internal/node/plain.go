package node

import (
	"fmt"
	"reflect"
)

// ToPlain converts a Map tree into nested map[string]any / []any values so it
// can cross a wire encoder that only understands plain types.
func ToPlain(n Node) (map[string]any, error) {
	m, ok := n.(Map)
	if !ok {
		return nil, fmt.Errorf("node: cannot convert %T to a plain value", n)
	}
	out, err := plainValue(m)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}

func plainValue(v any) (any, error) {
	switch x := v.(type) {
	case Map:
		return plainMap(x)
	case map[string]any:
		return plainMap(x)
	case []any:
		return plainSlice(x)
	case []Node:
		out := make([]any, 0, len(x))
		for _, c := range x {
			p, err := plainValue(c)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	case []Map:
		out := make([]any, 0, len(x))
		for _, c := range x {
			p, err := plainMap(c)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	case nil, string, bool, float64, float32, int, int32, int64, uint, uint32, uint64:
		return x, nil
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("node: unsupported value %T", v)
}

func plainMap(m map[string]any) (any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		p, err := plainValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = p
	}
	return out, nil
}

func plainSlice(s []any) (any, error) {
	out := make([]any, 0, len(s))
	for _, v := range s {
		p, err := plainValue(v)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// FromPlain is the inverse of ToPlain: every nested map becomes a Map.
func FromPlain(m map[string]any) Map {
	return fromPlainValue(m).(Map)
}

func fromPlainValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(Map, len(x))
		for k, c := range x {
			out[k] = fromPlainValue(c)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, c := range x {
			out[i] = fromPlainValue(c)
		}
		return out
	}
	return v
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}
