package reconcile

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceList applies list callbacks to a plain slice.
type sliceList struct {
	items []string
	calls []string
	fail  error
}

func (s *sliceList) Remove(item string) error {
	if s.fail != nil {
		return s.fail
	}
	s.calls = append(s.calls, "remove "+item)
	s.items = slices.DeleteFunc(s.items, func(v string) bool { return v == item })
	return nil
}

func (s *sliceList) Move(p Placement[string]) error {
	s.calls = append(s.calls, "move "+p.String())
	s.items = slices.DeleteFunc(s.items, func(v string) bool { return v == p.Item })
	return s.place(p)
}

func (s *sliceList) Insert(p Placement[string]) error {
	s.calls = append(s.calls, "insert "+p.String())
	return s.place(p)
}

func (s *sliceList) place(p Placement[string]) error {
	if p.Position == PositionAppend {
		s.items = append(s.items, p.Item)
		return nil
	}
	idx := slices.Index(s.items, p.Anchor)
	if idx < 0 {
		return fmt.Errorf("anchor %q not in list", p.Anchor)
	}
	if p.Position == PositionAfter {
		idx++
	}
	s.items = slices.Insert(s.items, idx, p.Item)
	return nil
}

func (s *sliceList) sync(t *testing.T, list *List[string], next []string) {
	t.Helper()
	require.NoError(t, list.Sync(next, s))
	require.Equal(t, strings.Join(next, ","), strings.Join(s.items, ","))
	require.Equal(t, strings.Join(next, ","), strings.Join(list.Items(), ","))
}

// TestListSync_SwappedPair tests that two retained items trade places with a
// single move and no creation or removal.
func TestListSync_SwappedPair(t *testing.T) {
	list := NewComparableList("a", "b")
	plan, err := list.Plan([]string{"b", "a"})
	require.NoError(t, err)

	assert.Empty(t, plan.Removed)
	assert.Empty(t, plan.Inserts)
	assert.Len(t, plan.Moves, 1)
	for _, it := range plan.Items {
		assert.Equal(t, TagUnchanged, it.Tag)
	}

	store := &sliceList{items: []string{"a", "b"}}
	store.sync(t, list, []string{"b", "a"})
	assert.Equal(t, []string{"move b before a"}, store.calls)
}

// TestListPlan_Anchors tests the anchor chosen for each shape of new run.
func TestListPlan_Anchors(t *testing.T) {
	tests := []struct {
		name    string
		old     []string
		next    []string
		inserts []string
	}{
		{name: "into empty list", old: nil, next: []string{"x", "y"}, inserts: []string{"append x", "append y"}},
		{name: "leading run", old: []string{"a"}, next: []string{"x", "a"}, inserts: []string{"x before a"}},
		{name: "middle run", old: []string{"a", "b"}, next: []string{"a", "x", "y", "b"}, inserts: []string{"x before b", "y before b"}},
		{name: "trailing chain", old: []string{"a"}, next: []string{"a", "x", "y"}, inserts: []string{"x after a", "y after x"}},
		{name: "both ends", old: []string{"a"}, next: []string{"x", "a", "y"}, inserts: []string{"x before a", "y after a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := NewComparableList(tt.old...)
			plan, err := list.Plan(tt.next)
			require.NoError(t, err)

			got := make([]string, len(plan.Inserts))
			for i, p := range plan.Inserts {
				got[i] = p.String()
			}
			assert.Equal(t, tt.inserts, got)

			store := &sliceList{items: slices.Clone(tt.old)}
			store.sync(t, list, tt.next)
		})
	}
}

// TestListPlan_SecondRunWithoutFollower tests a new run in second position
// with nothing after it, which anchors on the preceding run.
func TestListPlan_SecondRunWithoutFollower(t *testing.T) {
	list := NewComparableList("a")
	plan, err := list.Plan([]string{"a", "x"})
	require.NoError(t, err)

	require.Len(t, plan.Runs, 2)
	assert.Equal(t, TagUnchanged, plan.Runs[0].Tag)
	assert.Equal(t, TagNew, plan.Runs[1].Tag)
	require.Len(t, plan.Inserts, 1)
	assert.Equal(t, Placement[string]{Item: "x", Position: PositionAfter, Anchor: "a"}, plan.Inserts[0])
}

// TestListPlan_Removed tests that unclaimed old items are reported in old
// order, duplicates matched first come first.
func TestListPlan_Removed(t *testing.T) {
	list := NewComparableList("a", "b", "a", "c")
	plan, err := list.Plan([]string{"a", "c"})
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a"}, plan.Removed)
	assert.Equal(t, 0, plan.Items[0].OldIndex)
	assert.Equal(t, 3, plan.Items[1].OldIndex)
	assert.Empty(t, plan.Moves)
	assert.False(t, plan.Unchanged())
}

// TestNewList_KeepsOldInstances tests that a custom equality keeps the old
// instance of retained items.
func TestNewList_KeepsOldInstances(t *testing.T) {
	list := NewList([]string{"A", "B"}, strings.EqualFold)
	require.NoError(t, list.Sync([]string{"b", "a", "c"}, nil))
	assert.Equal(t, []string{"B", "A", "c"}, list.Items())
}

// TestListSync_NoChange tests that an identical sequence plans nothing.
func TestListSync_NoChange(t *testing.T) {
	list := NewComparableList("a", "b", "c")
	plan, err := list.Plan([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.True(t, plan.Unchanged())
}

// TestListSync_AdapterError tests that a failing callback leaves the list
// untouched and surfaces the cause.
func TestListSync_AdapterError(t *testing.T) {
	boom := errors.New("boom")
	list := NewComparableList("a", "b")
	store := &sliceList{items: []string{"a", "b"}, fail: boom}

	err := list.Sync([]string{"a"}, store)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, KindAdapter, KindOf(err))
	assert.Equal(t, []string{"a", "b"}, list.Items())
}

// TestListSync_Randomized checks order preservation and minimality over
// random sequences of distinct items.
func TestListSync_Randomized(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	pool := strings.Split("abcdefghijklmnopqrst", "")

	for round := 0; round < 200; round++ {
		old := randomSubset(rng, pool[:10])
		next := randomSubset(rng, pool)

		list := NewComparableList(old...)
		plan, err := list.Plan(next)
		require.NoError(t, err)

		var removed, added int
		for _, v := range old {
			if !slices.Contains(next, v) {
				removed++
			}
		}
		for _, v := range next {
			if !slices.Contains(old, v) {
				added++
			}
		}
		assert.Len(t, plan.Removed, removed)
		assert.Len(t, plan.Inserts, added)
		assert.LessOrEqual(t, len(plan.Moves), len(next)-added)

		store := &sliceList{items: slices.Clone(old)}
		store.sync(t, list, next)
	}
}

func randomSubset(rng *rand.Rand, pool []string) []string {
	out := slices.Clone(pool)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out[:rng.IntN(len(out)+1)]
}
