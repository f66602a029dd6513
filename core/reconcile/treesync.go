package reconcile

// TraverseSync reconciles live, a child of parent in the backing store,
// against next and returns the live node now occupying that position.
//
// When live can be recycled the same pointer is returned: its children are
// reconciled first, then its payload is updated unless unchanged. Otherwise a
// fresh subtree is built for next and swapped in for live, and the fresh root
// is returned. This is the only path that changes the meta at a position.
func TraverseSync[M, V, S any](live *Live[S], parent M, next View[V], adapter Adapter[M, V, S]) (*Live[S], error) {
	if live == nil {
		return nil, invariantf("tree.sync", "no live node to reconcile")
	}
	if !recyclable(live, next, adapter) {
		return replace(live, parent, next, adapter)
	}
	if !live.leaf {
		if err := syncChildren(live, adapter.Meta(live.Payload), next.Children, adapter); err != nil {
			return live, err
		}
	}
	if adapter.Unchanged(live.Payload, next.Payload) {
		return live, nil
	}
	if err := adapter.Update(&live.Payload, next.Payload); err != nil {
		return live, adapterErr("tree.update", err)
	}
	return live, nil
}

func recyclable[M, V, S any](live *Live[S], next View[V], adapter Adapter[M, V, S]) bool {
	if live.leaf != next.leaf {
		return false
	}
	return adapter.Unchanged(live.Payload, next.Payload) || adapter.Recyclable(live.Payload, next.Payload)
}

// deepUnchanged reports whether live and next have the same shape and every
// payload pair is unchanged.
func deepUnchanged[M, V, S any](live *Live[S], next View[V], adapter Adapter[M, V, S]) bool {
	if live.leaf != next.leaf || len(live.Children) != len(next.Children) {
		return false
	}
	if !adapter.Unchanged(live.Payload, next.Payload) {
		return false
	}
	for i := range next.Children {
		if !deepUnchanged(live.Children[i], next.Children[i], adapter) {
			return false
		}
	}
	return true
}

func replace[M, V, S any](live *Live[S], parent M, next View[V], adapter Adapter[M, V, S]) (*Live[S], error) {
	fresh, err := build(next, adapter)
	if err != nil {
		return live, err
	}
	op := Swap[M]{
		Parent:  parent,
		Current: adapter.Meta(fresh.Payload),
		Target:  adapter.Meta(live.Payload),
	}
	if err := adapter.Insert(op); err != nil {
		return live, adapterErr("tree.swap", err)
	}
	return fresh, nil
}

// build creates a detached live subtree for next. Each created node that has
// children gets them in one batched Append.
func build[M, V, S any](next View[V], adapter Adapter[M, V, S]) (*Live[S], error) {
	payload, err := adapter.Create(next.Payload)
	if err != nil {
		return nil, adapterErr("tree.create", err)
	}
	node := &Live[S]{Payload: payload, leaf: next.leaf}
	if next.leaf || len(next.Children) == 0 {
		return node, nil
	}

	node.Children = make([]*Live[S], 0, len(next.Children))
	metas := make([]M, 0, len(next.Children))
	for _, c := range next.Children {
		child, err := build(c, adapter)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
		metas = append(metas, adapter.Meta(child.Payload))
	}
	if err := adapter.Insert(Append[M]{Parent: adapter.Meta(payload), New: metas}); err != nil {
		return nil, adapterErr("tree.create", err)
	}
	return node, nil
}

type childMatch int

const (
	matchNone childMatch = iota
	matchUnchanged
	matchRecycled
)

type childSlot[S any] struct {
	live     *Live[S]
	oldIndex int
	match    childMatch
}

// syncChildren reconciles the children of node against next.
//
// Deeply unchanged old children are claimed first, across all new children,
// then recyclable ones; whatever is left unmatched is created. Unclaimed old
// children are removed before anything is placed. Matched children on the
// longest increasing subsequence of old indices stay where they are, every
// other child is placed left to right next to its predecessor.
func syncChildren[M, V, S any](node *Live[S], parentMeta M, next []View[V], adapter Adapter[M, V, S]) error {
	old := node.Children
	claimed := make([]bool, len(old))
	slots := make([]childSlot[S], len(next))

	for i, v := range next {
		for j, o := range old {
			if !claimed[j] && deepUnchanged(o, v, adapter) {
				claimed[j] = true
				slots[i] = childSlot[S]{live: o, oldIndex: j, match: matchUnchanged}
				break
			}
		}
	}
	for i, v := range next {
		if slots[i].match != matchNone {
			continue
		}
		for j, o := range old {
			if !claimed[j] && recyclable(o, v, adapter) {
				claimed[j] = true
				slots[i] = childSlot[S]{live: o, oldIndex: j, match: matchRecycled}
				break
			}
		}
	}

	for j, o := range old {
		if claimed[j] {
			continue
		}
		if err := adapter.Remove(adapter.Meta(o.Payload)); err != nil {
			return adapterErr("tree.remove", err)
		}
	}

	var matched, seq []int
	for i, s := range slots {
		if s.match == matchNone {
			continue
		}
		if s.live == nil || s.oldIndex < 0 || s.oldIndex >= len(old) {
			return invariantf("tree.children", "child %d matched without a live node", i)
		}
		matched = append(matched, i)
		seq = append(seq, s.oldIndex)
	}
	keep := longestIncreasing(seq)
	stable := make([]bool, len(slots))
	for k, i := range matched {
		stable[i] = keep[k]
	}

	children := make([]*Live[S], len(next))
	for i, v := range next {
		s := slots[i]
		switch s.match {
		case matchUnchanged:
			children[i] = s.live
		case matchRecycled:
			child, err := TraverseSync(s.live, parentMeta, v, adapter)
			if err != nil {
				return err
			}
			if child != s.live {
				return invariantf("tree.children", "recycled child %d was replaced", i)
			}
			children[i] = child
		default:
			child, err := build(v, adapter)
			if err != nil {
				return err
			}
			children[i] = child
		}
		if stable[i] {
			continue
		}
		if err := adapter.Insert(placement(slots, children, stable, i, parentMeta, adapter)); err != nil {
			return adapterErr("tree.place", err)
		}
	}

	node.Children = children
	return nil
}

// placement positions child i, whose predecessors are already in their final
// relative order: after the previous sibling, else before the first child
// that stays in place, else at the end of the parent.
func placement[M, V, S any](slots []childSlot[S], children []*Live[S], stable []bool, i int, parent M, adapter Adapter[M, V, S]) InsertOp[M] {
	meta := adapter.Meta(children[i].Payload)
	if i > 0 {
		return InsertAfter[M]{Anchor: adapter.Meta(children[i-1].Payload), New: []M{meta}}
	}
	for k := i + 1; k < len(slots); k++ {
		if stable[k] {
			return InsertBefore[M]{Anchor: adapter.Meta(slots[k].live.Payload), New: []M{meta}}
		}
	}
	return Append[M]{Parent: parent, New: []M{meta}}
}
