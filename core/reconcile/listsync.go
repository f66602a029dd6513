package reconcile

import "fmt"

// Tag marks whether a list item was carried over from the old sequence.
type Tag int

const (
	// TagUnchanged marks an item matched to an old item.
	TagUnchanged Tag = iota
	// TagNew marks an item with no equal item left in the old sequence.
	TagNew
)

func (t Tag) String() string {
	if t == TagNew {
		return "new"
	}
	return "unchanged"
}

// Position says where a list placement goes relative to its anchor.
type Position int

const (
	// PositionAppend places the item at the end of the list.
	PositionAppend Position = iota
	// PositionBefore places the item immediately before the anchor.
	PositionBefore
	// PositionAfter places the item immediately after the anchor.
	PositionAfter
)

func (p Position) String() string {
	switch p {
	case PositionBefore:
		return "before"
	case PositionAfter:
		return "after"
	default:
		return "append"
	}
}

// Item is one element of the next sequence after matching.
type Item[T any] struct {
	Value T
	Tag   Tag
	// OldIndex is the matched position in the old sequence, -1 for new items.
	OldIndex int
}

// Run is a maximal stretch of consecutive items sharing a tag.
type Run[T any] struct {
	Tag   Tag
	Start int
	Items []Item[T]
}

// Placement is an anchored insertion or move of a single item.
type Placement[T any] struct {
	Item     T
	Position Position
	// Anchor is the zero value for PositionAppend.
	Anchor T
}

func (p Placement[T]) String() string {
	if p.Position == PositionAppend {
		return fmt.Sprintf("append %v", p.Item)
	}
	return fmt.Sprintf("%v %s %v", p.Item, p.Position, p.Anchor)
}

// ListPlan is the outcome of matching an old sequence against a new one.
type ListPlan[T any] struct {
	// Items is next, tagged, with old instances for retained items.
	Items []Item[T]
	// Runs partitions Items into maximal same-tag runs.
	Runs []Run[T]
	// Removed holds the old items no new item claimed, in old order.
	Removed []T
	// Moves repositions retained items whose relative order changed. They
	// must be applied in order, after removals.
	Moves []Placement[T]
	// Inserts places every new item. They must be applied in order, after
	// moves.
	Inserts []Placement[T]
}

// Values returns the resulting sequence.
func (p *ListPlan[T]) Values() []T {
	out := make([]T, len(p.Items))
	for i, it := range p.Items {
		out[i] = it.Value
	}
	return out
}

// Unchanged reports whether applying the plan would not touch the old
// sequence at all.
func (p *ListPlan[T]) Unchanged() bool {
	return len(p.Removed) == 0 && len(p.Moves) == 0 && len(p.Inserts) == 0
}

// ListAdapter receives the callbacks of List.Sync.
type ListAdapter[T any] interface {
	Remove(item T) error
	Move(p Placement[T]) error
	Insert(p Placement[T]) error
}

// matcher hands out old positions for new values, each at most once, the
// lowest unclaimed position first.
type matcher[T any] interface {
	take(v T) (int, bool)
}

type linearMatcher[T any] struct {
	items []T
	used  []bool
	equal func(a, b T) bool
}

func (m *linearMatcher[T]) take(v T) (int, bool) {
	for i := range m.items {
		if !m.used[i] && m.equal(m.items[i], v) {
			m.used[i] = true
			return i, true
		}
	}
	return -1, false
}

type indexMatcher[T comparable] struct {
	positions map[T][]int
}

func (m *indexMatcher[T]) take(v T) (int, bool) {
	queue := m.positions[v]
	if len(queue) == 0 {
		return -1, false
	}
	m.positions[v] = queue[1:]
	return queue[0], true
}

// List is an ordered live sequence reconciled by value equality.
type List[T any] struct {
	items   []T
	matcher func(items []T) matcher[T]
}

// NewList returns a list over items compared with equal. Matching costs
// O(n·m).
func NewList[T any](items []T, equal func(a, b T) bool) *List[T] {
	return &List[T]{
		items: append([]T(nil), items...),
		matcher: func(old []T) matcher[T] {
			return &linearMatcher[T]{items: old, used: make([]bool, len(old)), equal: equal}
		},
	}
}

// NewComparableList returns a list over items compared with ==. Matching
// costs O(n+m).
func NewComparableList[T comparable](items ...T) *List[T] {
	return &List[T]{
		items: append([]T(nil), items...),
		matcher: func(old []T) matcher[T] {
			positions := make(map[T][]int, len(old))
			for i, v := range old {
				positions[v] = append(positions[v], i)
			}
			return &indexMatcher[T]{positions: positions}
		},
	}
}

// Items returns a copy of the current sequence.
func (l *List[T]) Items() []T {
	return append([]T(nil), l.items...)
}

// Len returns the length of the current sequence.
func (l *List[T]) Len() int {
	return len(l.items)
}

// Plan matches next against the current sequence without changing it.
func (l *List[T]) Plan(next []T) (*ListPlan[T], error) {
	m := l.matcher(l.items)
	claimed := make([]bool, len(l.items))
	items := make([]Item[T], len(next))

	for i, v := range next {
		j, ok := m.take(v)
		if !ok {
			items[i] = Item[T]{Value: v, Tag: TagNew, OldIndex: -1}
			continue
		}
		if j < 0 || j >= len(l.items) || claimed[j] {
			return nil, invariantf("list.match", "old item %d handed out twice", j)
		}
		claimed[j] = true
		items[i] = Item[T]{Value: l.items[j], Tag: TagUnchanged, OldIndex: j}
	}

	plan := &ListPlan[T]{Items: items, Runs: partition(items)}
	for j, ok := range claimed {
		if !ok {
			plan.Removed = append(plan.Removed, l.items[j])
		}
	}
	plan.Moves = planMoves(items)
	inserts, err := planInserts(plan.Runs)
	if err != nil {
		return nil, err
	}
	plan.Inserts = inserts
	return plan, nil
}

// Sync reconciles the list against next. Removals are applied first, then
// moves, then insertions. A nil adapter only updates the list itself. On a
// callback failure the list keeps its previous contents.
func (l *List[T]) Sync(next []T, adapter ListAdapter[T]) error {
	plan, err := l.Plan(next)
	if err != nil {
		return err
	}
	if adapter != nil {
		for _, item := range plan.Removed {
			if err := adapter.Remove(item); err != nil {
				return adapterErr("list.remove", err)
			}
		}
		for _, mv := range plan.Moves {
			if err := adapter.Move(mv); err != nil {
				return adapterErr("list.move", err)
			}
		}
		for _, ins := range plan.Inserts {
			if err := adapter.Insert(ins); err != nil {
				return adapterErr("list.insert", err)
			}
		}
	}
	l.items = plan.Values()
	return nil
}

func partition[T any](items []Item[T]) []Run[T] {
	var runs []Run[T]
	for i, it := range items {
		if n := len(runs); n > 0 && runs[n-1].Tag == it.Tag {
			runs[n-1].Items = items[runs[n-1].Start : i+1]
			continue
		}
		runs = append(runs, Run[T]{Tag: it.Tag, Start: i, Items: items[i : i+1]})
	}
	return runs
}

// planMoves keeps the retained items on a longest increasing subsequence of
// old indices in place. The others are moved right to left, each before the
// next retained item, which by then already sits in its final spot.
func planMoves[T any](items []Item[T]) []Placement[T] {
	var retained []Item[T]
	for _, it := range items {
		if it.Tag == TagUnchanged {
			retained = append(retained, it)
		}
	}
	seq := make([]int, len(retained))
	for i, it := range retained {
		seq[i] = it.OldIndex
	}
	keep := longestIncreasing(seq)

	var moves []Placement[T]
	for k := len(retained) - 1; k >= 0; k-- {
		if keep[k] {
			continue
		}
		if k+1 < len(retained) {
			moves = append(moves, Placement[T]{Item: retained[k].Value, Position: PositionBefore, Anchor: retained[k+1].Value})
		} else {
			moves = append(moves, Placement[T]{Item: retained[k].Value, Position: PositionAppend})
		}
	}
	return moves
}

// planInserts anchors each new run on its neighbours: before the first item
// of the following run, else after the last item of the preceding run, else
// at the end.
func planInserts[T any](runs []Run[T]) ([]Placement[T], error) {
	var inserts []Placement[T]
	for r, run := range runs {
		if run.Tag != TagNew {
			continue
		}
		switch {
		case r+1 < len(runs):
			next := runs[r+1]
			if next.Tag != TagUnchanged {
				return nil, invariantf("list.anchor", "run %d followed by a run tagged %s", r, next.Tag)
			}
			anchor := next.Items[0].Value
			for _, it := range run.Items {
				inserts = append(inserts, Placement[T]{Item: it.Value, Position: PositionBefore, Anchor: anchor})
			}
		case r > 0:
			prev := runs[r-1]
			if prev.Tag != TagUnchanged {
				return nil, invariantf("list.anchor", "run %d preceded by a run tagged %s", r, prev.Tag)
			}
			anchor := prev.Items[len(prev.Items)-1].Value
			for _, it := range run.Items {
				inserts = append(inserts, Placement[T]{Item: it.Value, Position: PositionAfter, Anchor: anchor})
				anchor = it.Value
			}
		default:
			for _, it := range run.Items {
				inserts = append(inserts, Placement[T]{Item: it.Value, Position: PositionAppend})
			}
		}
	}
	return inserts, nil
}
