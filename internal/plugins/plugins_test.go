package plugins

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unifold/internal/processor"
	"unifold/internal/spec"
)

func process(t *testing.T, preset processor.Preset, in string) string {
	t.Helper()
	p := processor.New()
	require.NoError(t, p.Use(preset))
	f, err := p.ProcessSync(in)
	require.NoError(t, err)
	return f.String()
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"text", "json", "yaml", "uppercase", "marker"} {
		pl, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, pl.Name)
	}
	_, err := Lookup("nope")
	assert.ErrorContains(t, err, `unknown plugin "nope"`)
}

func TestRegisterReplaces(t *testing.T) {
	first := processor.NewPlugin("dup-test", nil)
	second := processor.NewPlugin("dup-test", nil)
	Register(first)
	Register(second)
	got, err := Lookup("dup-test")
	require.NoError(t, err)
	assert.Same(t, second, got)
	assert.Contains(t, Names(), "dup-test")
}

func TestTextRoundTrip(t *testing.T) {
	preset := processor.Preset{Plugins: []any{Text}}
	assert.Equal(t, "a\nb\n", process(t, preset, "a\nb\n"))
	assert.Equal(t, "a\nb", process(t, preset, "a\nb"))
	assert.Equal(t, "", process(t, preset, ""))
}

func TestTextUppercaseMarker(t *testing.T) {
	preset, err := BuildPreset([]spec.PluginSpec{
		{Name: "text"},
		{Name: "uppercase"},
		{Name: "marker", Options: map[string]any{"text": "?"}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "HI?\nTHERE?", process(t, preset, "hi\nthere"))
}

func TestMarkerReadsSettings(t *testing.T) {
	preset, err := BuildPreset([]spec.PluginSpec{{Name: "text"}, {Name: "marker"}},
		map[string]any{"marker": map[string]any{"text": "!!"}})
	require.NoError(t, err)
	assert.Equal(t, "hi!!", process(t, preset, "hi"))
}

func TestDisabledPlugin(t *testing.T) {
	off := false
	preset, err := BuildPreset([]spec.PluginSpec{
		{Name: "text"},
		{Name: "uppercase", Enabled: &off},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", process(t, preset, "hi"))
}

func TestBuildPresetUnknown(t *testing.T) {
	_, err := BuildPreset([]spec.PluginSpec{{Name: "ghost"}}, nil)
	assert.Error(t, err)
}

func TestUppercaseOnlyType(t *testing.T) {
	p := processor.New().
		MustUse(JSON).
		MustUse(Uppercase, map[string]any{"type": "word"})
	f, err := p.ProcessSync(`{"type":"root","children":[{"type":"word","value":"up"},{"type":"other","value":"down"}]}`)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"type":"root","children":[{"type":"word","value":"UP"},{"type":"other","value":"down"}]}`,
		f.String())
	assert.Equal(t, "uppercase", f.Data["transformed_by"])
}

func TestJSONWrapsUntypedDocuments(t *testing.T) {
	p := processor.New().MustUse(JSON)
	tree, err := p.Parse(`{"a":[1,2]}`)
	require.NoError(t, err)
	assert.Equal(t, "root", tree.Type())

	out, err := p.Stringify(tree, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,2]}`, string(out.([]byte)))
}

func TestJSONParseError(t *testing.T) {
	p := processor.New().MustUse(JSON)
	_, err := p.ProcessSync(`{`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json")
}

func TestYAMLToJSON(t *testing.T) {
	p := processor.New().MustUse(YAML)
	tree, err := p.Parse("type: doc\ntitle: hello\n")
	require.NoError(t, err)
	assert.Equal(t, "doc", tree.Type())

	j := processor.New().MustUse(JSON)
	out, err := j.Stringify(tree, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"doc","title":"hello"}`, string(out.([]byte)))
}

func TestYAMLRoundTrip(t *testing.T) {
	preset := processor.Preset{Plugins: []any{YAML}}
	got := process(t, preset, "list:\n    - 1\n    - 2\n")
	if diff := cmp.Diff("list:\n    - 1\n    - 2\n", got); diff != "" {
		t.Fatalf("yaml round trip (-want +got):\n%s", diff)
	}
}
