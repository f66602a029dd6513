package reconcile

// Tree owns a live tree mounted under a fixed parent meta in the backing
// store. It is not safe for concurrent use; callers serialize passes.
type Tree[M, V, S any] struct {
	adapter Adapter[M, V, S]
	mount   M
	root    *Live[S]
	tainted bool
}

// NewTree returns an empty tree that mounts under mount.
func NewTree[M, V, S any](mount M, adapter Adapter[M, V, S]) *Tree[M, V, S] {
	return &Tree[M, V, S]{adapter: adapter, mount: mount}
}

// Root returns the live root, nil before the first successful Sync.
func (t *Tree[M, V, S]) Root() *Live[S] {
	return t.root
}

// Mount returns the parent meta the tree is mounted under.
func (t *Tree[M, V, S]) Mount() M {
	return t.mount
}

// Tainted reports whether the last pass failed. The next Sync rebuilds the
// live tree from scratch.
func (t *Tree[M, V, S]) Tainted() bool {
	return t.tainted
}

// Taint marks the live tree as out of sync with the backing store, for
// callers that aborted a pass from outside, for example by recovering a
// panic. The next Sync rebuilds.
func (t *Tree[M, V, S]) Taint() {
	if t.root != nil {
		t.tainted = true
	}
}

// Sync brings the backing store in line with next.
//
// The first pass creates the whole tree and appends it to the mount. Later
// passes reconcile incrementally. After a failed pass the live tree may no
// longer mirror the backing store, so the tree is rebuilt and the fresh root
// swapped in for the old one.
func (t *Tree[M, V, S]) Sync(next View[V]) error {
	err := t.sync(next)
	t.tainted = err != nil
	return err
}

func (t *Tree[M, V, S]) sync(next View[V]) error {
	switch {
	case t.root == nil:
		root, err := build(next, t.adapter)
		if err != nil {
			return err
		}
		op := Append[M]{Parent: t.mount, New: []M{t.adapter.Meta(root.Payload)}}
		if err := t.adapter.Insert(op); err != nil {
			return adapterErr("tree.mount", err)
		}
		t.root = root
		return nil

	case t.tainted:
		fresh, err := build(next, t.adapter)
		if err != nil {
			return err
		}
		op := Swap[M]{
			Parent:  t.mount,
			Current: t.adapter.Meta(fresh.Payload),
			Target:  t.adapter.Meta(t.root.Payload),
		}
		if err := t.adapter.Insert(op); err != nil {
			return adapterErr("tree.rebuild", err)
		}
		t.root = fresh
		return nil

	default:
		root, err := TraverseSync(t.root, t.mount, next, t.adapter)
		t.root = root
		return err
	}
}

// Reset removes the mounted root from the backing store and empties the
// tree. It is a no-op on an empty tree.
func (t *Tree[M, V, S]) Reset() error {
	if t.root == nil {
		t.tainted = false
		return nil
	}
	if err := t.adapter.Remove(t.adapter.Meta(t.root.Payload)); err != nil {
		return adapterErr("tree.reset", err)
	}
	t.root = nil
	t.tainted = false
	return nil
}
