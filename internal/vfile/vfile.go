// Package vfile is a small virtual file: a path, a textual or binary value,
// an optional non-serialized compile result, free-form data and a list of
// diagnostic messages collected while processing.
package vfile

import (
	"fmt"
	"strings"
)

type Options struct {
	Path  string
	Value []byte
	Data  map[string]any
}

type File struct {
	Path     string
	Value    []byte
	Result   any
	Data     map[string]any
	Messages []*Message
}

// New builds a file from a compatible value: nil, string, []byte, Options,
// *Options, a fmt.Stringer, or an existing *File (returned as-is unless nil).
func New(value any) (*File, error) {
	switch v := value.(type) {
	case nil:
		return &File{Data: map[string]any{}}, nil
	case *File:
		if v == nil {
			return &File{Data: map[string]any{}}, nil
		}
		return v, nil
	case string:
		return &File{Value: []byte(v), Data: map[string]any{}}, nil
	case []byte:
		return &File{Value: v, Data: map[string]any{}}, nil
	case Options:
		return fromOptions(v), nil
	case *Options:
		if v == nil {
			return &File{Data: map[string]any{}}, nil
		}
		return fromOptions(*v), nil
	case fmt.Stringer:
		return &File{Value: []byte(v.String()), Data: map[string]any{}}, nil
	}
	return nil, fmt.Errorf("vfile: cannot create a file from %T", value)
}

func fromOptions(o Options) *File {
	f := &File{Path: o.Path, Value: o.Value, Data: o.Data}
	if f.Data == nil {
		f.Data = map[string]any{}
	}
	return f
}

// Coerce returns value itself when it already behaves like a file (it can
// report messages and holds a message list), and a new file otherwise.
func Coerce(value any) (*File, error) {
	if f, ok := value.(*File); ok && f != nil {
		return f, nil
	}
	return New(value)
}

func (f *File) String() string {
	if f == nil {
		return ""
	}
	return string(f.Value)
}

// SetValue replaces the file contents.
func (f *File) SetValue(v []byte) { f.Value = v }

// Message records a warning and returns it.
func (f *File) Message(reason any, source string) *Message {
	m := newMessage(reason, source)
	m.File = f.Path
	f.Messages = append(f.Messages, m)
	return m
}

// Info records an informational message.
func (f *File) Info(reason any, source string) *Message {
	m := f.Message(reason, source)
	m.Fatal = FatalInfo
	return m
}

// Fail records a fatal message and returns it as an error.
func (f *File) Fail(reason any, source string) error {
	m := f.Message(reason, source)
	m.Fatal = FatalError
	return m
}

// HasFailed reports whether any fatal message was recorded.
func (f *File) HasFailed() bool {
	for _, m := range f.Messages {
		if m.Fatal == FatalError {
			return true
		}
	}
	return false
}

// Report renders the messages one per line.
func (f *File) Report() string {
	var b strings.Builder
	for _, m := range f.Messages {
		b.WriteString(m.Error())
		b.WriteByte('\n')
	}
	return b.String()
}
