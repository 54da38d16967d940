package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leaf struct{ kind string }

func (l *leaf) Type() string { return l.kind }

func TestIsNode(t *testing.T) {
	var nilLeaf *leaf
	var nilMap Map

	assert.True(t, IsNode(Map{"type": "root"}))
	assert.True(t, IsNode(Map{"type": ""}))
	assert.True(t, IsNode(map[string]any{"type": "root"}))
	assert.True(t, IsNode(&leaf{kind: "x"}))

	assert.False(t, IsNode(nil))
	assert.False(t, IsNode(nilLeaf))
	assert.False(t, IsNode(nilMap))
	assert.False(t, IsNode(Map{"type": 1}))
	assert.False(t, IsNode(Map{"value": "x"}))
	assert.False(t, IsNode("root"))
}

func TestMap_Children(t *testing.T) {
	tree := Parent("root", Text("text", "a"), Map{"value": "skipped"}, Text("text", "b"))
	kids := tree.Children()
	require.Len(t, kids, 2)
	assert.Equal(t, "a", kids[0].(Map).Value())
	assert.Equal(t, "b", kids[1].(Map).Value())
}

func TestPlainRoundTrip(t *testing.T) {
	tree := Parent("root", Text("text", "a"))
	tree["count"] = 2

	plain, err := ToPlain(tree)
	require.NoError(t, err)
	kids := plain["children"].([]any)
	_, isMap := kids[0].(Map)
	assert.False(t, isMap, "plain values must not keep the Map type")

	back := FromPlain(plain)
	assert.Equal(t, "root", back.Type())
	assert.Equal(t, "a", back.Children()[0].(Map).Value())
}

func TestToPlain_RejectsForeignNodes(t *testing.T) {
	_, err := ToPlain(&leaf{kind: "x"})
	assert.Error(t, err)

	_, err = ToPlain(Map{"type": "x", "bad": make(chan int)})
	assert.Error(t, err)
}
