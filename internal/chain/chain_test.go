package chain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unifold/internal/node"
	"unifold/internal/vfile"
)

type outcome struct {
	err   error
	tree  node.Node
	file  *vfile.File
	calls int
}

func (o *outcome) done(err error, tree node.Node, file *vfile.File) {
	o.calls++
	o.err, o.tree, o.file = err, tree, file
}

func appendValue(s string) Func {
	return func(tree node.Node, _ *vfile.File) (node.Node, error) {
		return node.Text("text", tree.(node.Map).Value()+s), nil
	}
}

func TestRun_EmptyChainPassesThrough(t *testing.T) {
	in := node.Text("text", "a")
	f := &vfile.File{}
	var o outcome
	New().Run(in, f, o.done)

	require.Equal(t, 1, o.calls)
	require.NoError(t, o.err)
	assert.Equal(t, in, o.tree)
	assert.Same(t, f, o.file)
}

func TestRun_StepsRunInOrder(t *testing.T) {
	var o outcome
	New(appendValue("b"), appendValue("c")).Use(appendValue("d")).Run(node.Text("text", "a"), &vfile.File{}, o.done)

	require.NoError(t, o.err)
	assert.Equal(t, "abcd", o.tree.(node.Map).Value())
}

func TestRun_NonNodeResultKeepsTree(t *testing.T) {
	var o outcome
	notNode := Func(func(node.Node, *vfile.File) (node.Node, error) { return node.Map{"value": "x"}, nil })
	New(notNode, appendValue("!")).Run(node.Text("text", "a"), &vfile.File{}, o.done)

	assert.Equal(t, "a!", o.tree.(node.Map).Value())
}

func TestRun_ErrorStopsChain(t *testing.T) {
	boom := errors.New("boom")
	reached := false
	var o outcome
	New(
		Func(func(node.Node, *vfile.File) (node.Node, error) { return nil, boom }),
		Func(func(node.Node, *vfile.File) (node.Node, error) { reached = true; return nil, nil }),
	).Run(node.Text("text", "a"), &vfile.File{}, o.done)

	assert.ErrorIs(t, o.err, boom)
	assert.Nil(t, o.tree)
	assert.False(t, reached)
	assert.Equal(t, 1, o.calls)
}

func TestRun_ContinuationCalledTwiceCountsOnce(t *testing.T) {
	var o outcome
	twice := Async(func(tree node.Node, file *vfile.File, next Next) {
		next(nil, node.Text("text", "first"), nil)
		next(errors.New("ignored"), nil, nil)
	})
	New(twice).Run(node.Text("text", "a"), &vfile.File{}, o.done)

	require.Equal(t, 1, o.calls)
	require.NoError(t, o.err)
	assert.Equal(t, "first", o.tree.(node.Map).Value())
}

func TestRun_ContinuationMayReplaceFile(t *testing.T) {
	replacement := &vfile.File{Path: "other"}
	var o outcome
	New(Async(func(tree node.Node, _ *vfile.File, next Next) {
		next(nil, nil, replacement)
	})).Run(node.Text("text", "a"), &vfile.File{}, o.done)

	assert.Same(t, replacement, o.file)
}

func TestRun_AsyncStepSuspendsUntilNext(t *testing.T) {
	var (
		mu   sync.Mutex
		o    outcome
		wake = make(chan struct{})
		fin  = make(chan struct{})
	)
	step := Async(func(tree node.Node, file *vfile.File, next Next) {
		go func() {
			<-wake
			next(nil, node.Text("text", "late"), nil)
		}()
	})
	New(step, appendValue("!")).Run(node.Text("text", "a"), &vfile.File{}, func(err error, tree node.Node, file *vfile.File) {
		mu.Lock()
		o.done(err, tree, file)
		mu.Unlock()
		close(fin)
	})

	mu.Lock()
	assert.Zero(t, o.calls)
	mu.Unlock()

	close(wake)
	<-fin
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "late!", o.tree.(node.Map).Value())
}

func TestDeferred_SettledFutureIsSynchronous(t *testing.T) {
	var o outcome
	d := Deferred(func(tree node.Node, _ *vfile.File) *Future[node.Node] {
		return Resolve[node.Node](node.Text("text", "future"))
	})
	New(d).Run(node.Text("text", "a"), &vfile.File{}, o.done)

	require.Equal(t, 1, o.calls)
	assert.Equal(t, "future", o.tree.(node.Map).Value())
}

func TestDeferred_RejectedFuture(t *testing.T) {
	boom := errors.New("rejected")
	var o outcome
	New(Deferred(func(node.Node, *vfile.File) *Future[node.Node] {
		return Reject[node.Node](boom)
	})).Run(node.Text("text", "a"), &vfile.File{}, o.done)

	assert.ErrorIs(t, o.err, boom)
}

func TestDeferred_NilFutureKeepsTree(t *testing.T) {
	var o outcome
	New(Deferred(func(node.Node, *vfile.File) *Future[node.Node] { return nil })).
		Run(node.Text("text", "a"), &vfile.File{}, o.done)

	assert.Equal(t, "a", o.tree.(node.Map).Value())
}

func TestFuture_SettlesOnce(t *testing.T) {
	f, settle := NewFuture[int]()
	state, _, _ := f.Peek()
	assert.Equal(t, Pending, state)

	var seen []int
	f.Then(func(v int, _ error) { seen = append(seen, v) })
	settle(1, nil)
	settle(2, errors.New("late"))
	f.Then(func(v int, _ error) { seen = append(seen, v) })

	state, v, err := f.Peek()
	assert.Equal(t, Fulfilled, state)
	assert.Equal(t, 1, v)
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 1}, seen)
}

func TestFuture_WaitHonoursContext(t *testing.T) {
	f, settle := NewFuture[string]()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	settle("ok", nil)
	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "fulfilled", Fulfilled.String())
	assert.Equal(t, "rejected", Rejected.String())
}
