package reconcile

import "fmt"

// Adapter defines the capability interface a consumer implements to have a
// backing store driven by the tree reconciler.
//
// M is the opaque handle the backing store uses to address a node (its meta),
// V is the declarative payload and S the live payload kept in the live tree.
type Adapter[M, V, S any] interface {
	// Unchanged reports whether old fully represents next. Unchanged implies
	// Recyclable.
	Unchanged(old S, next V) bool

	// Recyclable reports whether old can be updated in place to represent next.
	Recyclable(old S, next V) bool

	// Create materializes a new live payload for next. The new node is not
	// attached anywhere until an Insert op places it.
	Create(next V) (S, error)

	// Update mutates old in place to represent next. The meta of *old must not
	// change.
	Update(old *S, next V) error

	// Meta returns the backing store handle of a live payload.
	Meta(live S) M

	// Insert applies a structural placement. Together with Remove it is the
	// only call that touches the physical structure.
	Insert(op InsertOp[M]) error

	// Remove detaches and discards the node addressed by meta together with
	// its descendants.
	Remove(meta M) error
}

// InsertOp is a structural placement handed to Adapter.Insert. The set of
// implementations is closed: Append, InsertBefore, InsertAfter and Swap.
type InsertOp[M any] interface {
	insertOp()
	fmt.Stringer
}

// Append places New, in order, as the last children of Parent.
type Append[M any] struct {
	Parent M
	New    []M
}

// InsertBefore places New, in order, immediately before Anchor.
type InsertBefore[M any] struct {
	Anchor M
	New    []M
}

// InsertAfter places New, in order, immediately after Anchor.
type InsertAfter[M any] struct {
	Anchor M
	New    []M
}

// Swap replaces Target, a child of Parent, with Current. Target and its
// descendants are discarded by the adapter.
type Swap[M any] struct {
	Parent  M
	Current M
	Target  M
}

func (Append[M]) insertOp()       {}
func (InsertBefore[M]) insertOp() {}
func (InsertAfter[M]) insertOp()  {}
func (Swap[M]) insertOp()         {}

func (op Append[M]) String() string {
	return fmt.Sprintf("append %v to %v", op.New, op.Parent)
}

func (op InsertBefore[M]) String() string {
	return fmt.Sprintf("insert %v before %v", op.New, op.Anchor)
}

func (op InsertAfter[M]) String() string {
	return fmt.Sprintf("insert %v after %v", op.New, op.Anchor)
}

func (op Swap[M]) String() string {
	return fmt.Sprintf("swap %v for %v in %v", op.Target, op.Current, op.Parent)
}
