package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unifold/internal/chain"
	"unifold/internal/node"
	"unifold/internal/plugins"
	"unifold/internal/processor"
	"unifold/internal/vfile"
	"unifold/sink"
	"unifold/source/kafka"
)

type fakeSource struct {
	files  []*vfile.File
	mu     sync.Mutex
	acked  []string
	closed bool
}

func (s *fakeSource) Configure(kafka.Config) error { return nil }
func (s *fakeSource) Close() error                 { s.closed = true; return nil }
func (s *fakeSource) Run(_ context.Context, emit kafka.EmitFunc) error {
	for _, f := range s.files {
		if err := emit(f); err != nil {
			return err
		}
	}
	return nil
}
func (s *fakeSource) OnAck(f *vfile.File) {
	s.mu.Lock()
	s.acked = append(s.acked, f.Path)
	s.mu.Unlock()
}

// captureSink acknowledges only when told to.
type captureSink struct {
	pushed []*vfile.File
	ackFn  sink.EmitFn
	auto   bool
	err    error
}

func (c *captureSink) Configure(any) error { return nil }
func (c *captureSink) Push(f *vfile.File) error {
	if c.err != nil {
		return c.err
	}
	c.pushed = append(c.pushed, f)
	if c.auto {
		c.ackFn(f)
	}
	return nil
}
func (c *captureSink) Close() error           { return nil }
func (c *captureSink) BindAck(fn sink.EmitFn) { c.ackFn = fn }

// plainSink is not ack-aware.
type plainSink struct{ pushed int }

func (p *plainSink) Configure(any) error    { return nil }
func (p *plainSink) Push(*vfile.File) error { p.pushed++; return nil }
func (p *plainSink) Close() error           { return nil }

func files(paths ...string) []*vfile.File {
	out := make([]*vfile.File, 0, len(paths))
	for _, p := range paths {
		f, _ := vfile.New(vfile.Options{Path: p, Value: []byte("hi " + p)})
		out = append(out, f)
	}
	return out
}

func upper() *processor.Processor {
	return processor.New().MustUse(plugins.Text).MustUse(plugins.Uppercase)
}

func newRunner(p *processor.Processor, src *fakeSource, sinks ...sink.Adapter) *Runner {
	r := NewRunner(p)
	r.SetSource(src)
	r.SubscribeAck(src.OnAck)
	for _, s := range sinks {
		r.AddSink(s)
	}
	return r
}

func TestRunner_ProcessesAndAcks(t *testing.T) {
	src := &fakeSource{files: files("a", "b")}
	cs := &captureSink{auto: true}
	r := newRunner(upper(), src, cs)

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, cs.pushed, 2)
	assert.Equal(t, "HI A", cs.pushed[0].String())
	assert.Equal(t, []string{"a", "b"}, src.acked)
}

func TestRunner_AckWaitsForEverySink(t *testing.T) {
	src := &fakeSource{files: files("a")}
	first, second := &captureSink{}, &captureSink{}
	r := newRunner(upper(), src, first, second, &plainSink{})

	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, src.acked)

	f := first.pushed[0]
	first.ackFn(f)
	assert.Empty(t, src.acked)
	second.ackFn(f)
	assert.Equal(t, []string{"a"}, src.acked)

	// Late duplicate acks are ignored.
	second.ackFn(f)
	assert.Equal(t, []string{"a"}, src.acked)
}

func TestRunner_PlainSinksAckImmediately(t *testing.T) {
	src := &fakeSource{files: files("a", "b")}
	ps := &plainSink{}
	r := newRunner(upper(), src, ps)

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, ps.pushed)
	assert.Equal(t, []string{"a", "b"}, src.acked)
}

func failing() *processor.Processor {
	return processor.New().MustUse(plugins.Text).MustUse(processor.TransformerPlugin("fail",
		chain.Func(func(_ node.Node, f *vfile.File) (node.Node, error) {
			if f.Path == "bad" {
				return nil, f.Fail("rejected", "fail")
			}
			return nil, nil
		})))
}

func TestRunner_SkipsFailedDocuments(t *testing.T) {
	src := &fakeSource{files: files("bad", "good")}
	cs := &captureSink{auto: true}
	r := newRunner(failing(), src, cs)

	require.NoError(t, r.Run(context.Background()))
	require.Len(t, cs.pushed, 1)
	assert.Equal(t, "good", cs.pushed[0].Path)
	assert.Equal(t, []string{"bad", "good"}, src.acked)
}

func TestRunner_FailFast(t *testing.T) {
	src := &fakeSource{files: files("bad", "good")}
	cs := &captureSink{auto: true}
	r := newRunner(failing(), src, cs)
	r.SetFailFast(true)

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rejected")
	assert.Empty(t, cs.pushed)
	assert.Empty(t, src.acked)
}

func TestRunner_SinkError(t *testing.T) {
	boom := errors.New("boom")
	src := &fakeSource{files: files("a")}
	r := newRunner(upper(), src, &captureSink{err: boom})

	assert.ErrorIs(t, r.Run(context.Background()), boom)
	assert.Empty(t, r.pending)
}

func TestRunner_NoSource(t *testing.T) {
	r := NewRunner(upper())
	assert.Error(t, r.Run(context.Background()))
	assert.NoError(t, r.Start(context.Background()))
	assert.NoError(t, r.Close())
}

func TestRunner_CloseClosesSource(t *testing.T) {
	src := &fakeSource{}
	r := newRunner(upper(), src)
	require.NoError(t, r.Close())
	assert.True(t, src.closed)
}

func writePreset(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "preset.yml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestCompile_ProcessorOnly(t *testing.T) {
	path := writePreset(t, `schema_version: v1
plugins:
  - name: text
  - name: marker
  - name: uppercase
    enabled: false
settings:
  marker: { text: "?" }
sinks: [stdout]
`)
	r, err := Compile(path)
	require.NoError(t, err)
	defer r.Close()

	assert.True(t, r.Processor().Frozen())
	f, err := r.Processor().ProcessSync("hi")
	require.NoError(t, err)
	assert.Equal(t, "hi?", f.String())
	assert.Len(t, r.sinks, 1)
	assert.Nil(t, r.source)
}

func TestCompile_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown plugin": "plugins: [{name: ghost}]\n",
		"bad source":     "source: {kind: file}\n",
		"bad driver":     "source: {kind: kafka, driver: nope}\n",
		"bad sink":       "sinks: [carrier-pigeon]\n",
		"remote no addr": "plugins: [{name: remote}]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Compile(writePreset(t, body))
			assert.Error(t, err)
		})
	}
}
