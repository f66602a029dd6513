package reconcile

// View is an immutable declarative tree. A node carries a payload and ordered
// children; a leaf carries a payload only. The zero value is a node with no
// children.
type View[V any] struct {
	Payload  V
	Children []View[V]
	leaf     bool
}

// NewNode returns a node view.
func NewNode[V any](payload V, children ...View[V]) View[V] {
	return View[V]{Payload: payload, Children: children}
}

// NewLeaf returns a leaf view.
func NewLeaf[V any](payload V) View[V] {
	return View[V]{Payload: payload, leaf: true}
}

// IsLeaf reports whether v is a leaf.
func (v View[V]) IsLeaf() bool {
	return v.leaf
}

// Size returns the number of nodes and leaves in v.
func (v View[V]) Size() int {
	n := 1
	for _, c := range v.Children {
		n += c.Size()
	}
	return n
}

// Live is a materialized tree owned by a reconciler. Its nodes mirror the
// backing store one to one; the backing store handle of a node is obtained
// from its payload through Adapter.Meta.
type Live[S any] struct {
	Payload  S
	Children []*Live[S]
	leaf     bool
}

// IsLeaf reports whether l is a leaf.
func (l *Live[S]) IsLeaf() bool {
	return l.leaf
}

// Size returns the number of nodes and leaves in l.
func (l *Live[S]) Size() int {
	n := 1
	for _, c := range l.Children {
		n += c.Size()
	}
	return n
}

// Walk visits l and its descendants in pre-order until fn returns false.
func (l *Live[S]) Walk(fn func(node *Live[S], depth int) bool) {
	l.walk(fn, 0)
}

func (l *Live[S]) walk(fn func(*Live[S], int) bool, depth int) bool {
	if !fn(l, depth) {
		return false
	}
	for _, c := range l.Children {
		if !c.walk(fn, depth+1) {
			return false
		}
	}
	return true
}
