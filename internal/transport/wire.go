package transport

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"unifold/internal/node"
	"unifold/internal/vfile"
)

// Envelope is a decoded request or response.
type Envelope struct {
	Tree node.Node
	File *vfile.File
}

func Encode(tree node.Node, file *vfile.File) (*structpb.Struct, error) {
	plain, err := node.ToPlain(tree)
	if err != nil {
		return nil, err
	}
	f := map[string]any{
		"path":  file.Path,
		"value": base64.StdEncoding.EncodeToString(file.Value),
	}
	if len(file.Data) > 0 {
		data := make(map[string]any, len(file.Data))
		for k, v := range file.Data {
			// Values structpb cannot carry are dropped, not fatal.
			if _, err := structpb.NewValue(v); err == nil {
				data[k] = v
			}
		}
		f["data"] = data
	}
	return structpb.NewStruct(map[string]any{"tree": plain, "file": f})
}

func Decode(s *structpb.Struct) (Envelope, error) {
	if s == nil {
		return Envelope{}, fmt.Errorf("transport: empty envelope")
	}
	m := s.AsMap()
	rawTree, ok := m["tree"].(map[string]any)
	if !ok {
		return Envelope{}, fmt.Errorf("transport: envelope has no tree")
	}
	tree := node.FromPlain(rawTree)
	if !node.IsNode(tree) {
		return Envelope{}, fmt.Errorf("transport: tree has no type")
	}

	file := &vfile.File{Data: map[string]any{}}
	if rawFile, ok := m["file"].(map[string]any); ok {
		file.Path, _ = rawFile["path"].(string)
		if v, _ := rawFile["value"].(string); v != "" {
			b, err := base64.StdEncoding.DecodeString(v)
			if err != nil {
				return Envelope{}, fmt.Errorf("transport: file value: %w", err)
			}
			file.Value = b
		}
		if data, ok := rawFile["data"].(map[string]any); ok {
			file.Data = data
		}
	}
	return Envelope{Tree: tree, File: file}, nil
}

// Merge copies what a remote run may change (value and data) from src into
// dst, so the caller keeps its own file.
func Merge(dst, src *vfile.File) {
	if src == nil || dst == nil {
		return
	}
	dst.Value = src.Value
	if dst.Data == nil {
		dst.Data = map[string]any{}
	}
	for k, v := range src.Data {
		dst.Data[k] = v
	}
}
