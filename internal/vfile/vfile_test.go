package vfile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type named string

func (n named) String() string { return string(n) }

func TestNew_Shapes(t *testing.T) {
	cases := map[string]struct {
		in   any
		want string
	}{
		"nil":      {nil, ""},
		"string":   {"hi", "hi"},
		"bytes":    {[]byte("b"), "b"},
		"options":  {Options{Path: "a.md", Value: []byte("o")}, "o"},
		"pointer":  {&Options{Value: []byte("p")}, "p"},
		"stringer": {named("s"), "s"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f, err := New(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, f.String())
			assert.NotNil(t, f.Data)
		})
	}

	_, err := New(42)
	assert.Error(t, err)
}

func TestCoerce_PassesFilesThrough(t *testing.T) {
	f := &File{Path: "x"}
	got, err := Coerce(f)
	require.NoError(t, err)
	assert.Same(t, f, got)
}

func TestMessages(t *testing.T) {
	f := &File{Path: "doc.md"}
	f.Message("odd spacing", "lint")
	f.Info("fyi", "")
	assert.False(t, f.HasFailed())

	cause := errors.New("root cause")
	err := f.Fail(cause, "parser")
	require.Error(t, err)
	assert.True(t, f.HasFailed())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "doc.md: parser: root cause [error]", err.Error())

	m, ok := AsMessage(err)
	require.True(t, ok)
	assert.Equal(t, "parser", m.Source)
	assert.Len(t, f.Messages, 3)
	assert.Contains(t, f.Report(), "doc.md: lint: odd spacing [warning]")
}

func TestNew_NilFileIsFresh(t *testing.T) {
	var nilFile *File
	for _, build := range []func(any) (*File, error){New, Coerce} {
		f, err := build(nilFile)
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.NotNil(t, f.Data)
		assert.Empty(t, f.Value)
	}
}
