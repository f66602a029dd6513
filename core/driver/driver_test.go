package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"treesync/core/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// textAdapter keeps string payloads and counts live nodes by meta.
type textAdapter struct {
	next    int
	live    map[int]string
	panicOn string
}

type textNode struct {
	id   int
	text string
}

func newTextAdapter() *textAdapter {
	return &textAdapter{live: map[int]string{}}
}

func (a *textAdapter) Unchanged(old textNode, next string) bool  { return old.text == next }
func (a *textAdapter) Recyclable(old textNode, next string) bool { return true }
func (a *textAdapter) Meta(live textNode) int                    { return live.id }

func (a *textAdapter) Create(next string) (textNode, error) {
	if next == a.panicOn {
		panic("cannot create " + next)
	}
	a.next++
	a.live[a.next] = next
	return textNode{id: a.next, text: next}, nil
}

func (a *textAdapter) Update(old *textNode, next string) error {
	old.text = next
	a.live[old.id] = next
	return nil
}

func (a *textAdapter) Insert(op reconcile.InsertOp[int]) error {
	if swap, ok := op.(reconcile.Swap[int]); ok {
		delete(a.live, swap.Target)
	}
	return nil
}

func (a *textAdapter) Remove(meta int) error {
	delete(a.live, meta)
	return nil
}

func staticSource(items ...string) ViewSource[string] {
	return func() (reconcile.View[string], error) {
		children := make([]reconcile.View[string], len(items))
		for i, it := range items {
			children[i] = reconcile.NewLeaf(it)
		}
		return reconcile.NewNode("root", children...), nil
	}
}

func TestDriver_TickOnlyWhenInvalidated(t *testing.T) {
	d := New[int, string, textNode]("home", 0, newTextAdapter(), staticSource("a", "b"))

	report, ran := d.Tick()
	require.True(t, ran)
	require.NoError(t, report.Err)
	assert.True(t, report.Mounted)
	assert.Equal(t, 3, report.Stats.Creates)
	assert.NotEmpty(t, report.ID)

	_, ran = d.Tick()
	assert.False(t, ran)

	d.SetSource(staticSource("a", "c"))
	report, ran = d.Tick()
	require.True(t, ran)
	assert.False(t, report.Mounted)
	assert.Equal(t, 1, report.Stats.Updates)
	assert.Equal(t, 0, report.Stats.Creates)

	d.Invalidate()
	report, ran = d.Tick()
	require.True(t, ran)
	assert.Zero(t, report.Stats.Total())

	assert.Len(t, d.History(), 3)
}

func TestDriver_SourceError(t *testing.T) {
	boom := errors.New("template missing")
	core, logs := observer.New(zapcore.ErrorLevel)

	d := New[int, string, textNode]("home", 0, newTextAdapter(), func() (reconcile.View[string], error) {
		return reconcile.View[string]{}, boom
	}, WithLogger(zap.New(core)))

	report, err := d.Force()
	require.NoError(t, err)
	assert.ErrorIs(t, report.Err, boom)
	assert.Equal(t, "error", report.Result())
	assert.Contains(t, report.Error, "template missing")

	require.Equal(t, 1, logs.FilterMessage("Reconciliation pass failed").Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "home", fields["session"])
	assert.Equal(t, report.ID, fields["pass_id"])
}

func TestDriver_RecoversPanicAndRebuilds(t *testing.T) {
	adapter := newTextAdapter()
	d := New[int, string, textNode]("home", 0, adapter, staticSource("a"))
	_, err := d.Force()
	require.NoError(t, err)

	adapter.panicOn = "boom"
	d.SetSource(staticSource("a", "boom"))
	report, ran := d.Tick()
	require.True(t, ran)
	require.Error(t, report.Err)
	assert.Equal(t, reconcile.KindPanic, reconcile.KindOf(report.Err))
	assert.Equal(t, "panic", report.Result())

	adapter.panicOn = ""
	report, err = d.Force()
	require.NoError(t, err)
	require.NoError(t, report.Err)
	assert.True(t, report.Rebuilt)
	assert.Equal(t, 1, report.Stats.Swaps)

	d.Inspect(func(root *reconcile.Live[textNode]) {
		require.NotNil(t, root)
		assert.Len(t, root.Children, 2)
	})
}

func TestDriver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	d := New[int, string, textNode]("home", 0, newTextAdapter(), staticSource("a", "b"), WithMetrics(m))

	_, err := d.Force()
	require.NoError(t, err)
	_, err = d.Force()
	require.NoError(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.PassesTotal.WithLabelValues("home", "ok")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.MutationsTotal.WithLabelValues("home", "create")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.LiveNodes.WithLabelValues("home")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PassDurationSeconds))

	require.NoError(t, d.Close())
	assert.Equal(t, 0, testutil.CollectAndCount(m.PassesTotal))
}

func TestDriver_Close(t *testing.T) {
	adapter := newTextAdapter()
	d := New[int, string, textNode]("home", 0, adapter, staticSource("a"))
	_, err := d.Force()
	require.NoError(t, err)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
	_, err = d.Force()
	assert.ErrorIs(t, err, ErrClosed)
	_, ran := d.Tick()
	assert.False(t, ran)
}

func TestDriver_Run(t *testing.T) {
	d := New[int, string, textNode]("home", 0, newTextAdapter(), staticSource("a"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := d.Run(ctx, time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	last, ok := d.Last()
	require.True(t, ok)
	assert.True(t, last.Mounted)
	assert.Len(t, d.History(), 1)
}

func TestConfig_FrameInterval(t *testing.T) {
	assert.Equal(t, 16*time.Millisecond, Config{}.FrameInterval())
	assert.Equal(t, 40*time.Millisecond, Config{FrameIntervalMS: 40}.FrameInterval())
}

func TestDriver_OnPass(t *testing.T) {
	current := []string{"a"}
	var fail bool
	source := func() (reconcile.View[string], error) {
		if fail {
			return reconcile.View[string]{}, errors.New("offline")
		}
		return staticSource(current...)()
	}
	d := New[int, string, textNode]("home", 0, newTextAdapter(), source)

	var seen []string
	var forced []bool
	d.OnPass(func(r PassReport, v reconcile.View[string]) {
		require.NoError(t, r.Err)
		forced = append(forced, r.Forced)
		for _, c := range v.Children {
			seen = append(seen, c.Payload)
		}
	})

	_, ran := d.Tick()
	require.True(t, ran)
	current = []string{"b", "c"}
	_, err := d.Force()
	require.NoError(t, err)

	fail = true
	report, err := d.Force()
	require.NoError(t, err)
	require.Error(t, report.Err)

	assert.Equal(t, []string{"a", "b", "c"}, seen, "hooks see the consumed views in pass order")
	assert.Equal(t, []bool{false, true}, forced, "failed passes are not reported")
}

func TestDriver_OnPassPanicIsContained(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	d := New[int, string, textNode]("home", 0, newTextAdapter(), staticSource("a"), WithLogger(zap.New(core)))
	d.OnPass(func(PassReport, reconcile.View[string]) { panic("hook") })

	report, err := d.Force()
	require.NoError(t, err)
	assert.NoError(t, report.Err)
	assert.Equal(t, 1, logs.FilterMessage("Recovered panic in pass hook").Len())

	_, err = d.Force()
	require.NoError(t, err, "the driver lock is released after a hook panic")
}
