// Package reconcile provides a generic incremental reconciliation engine for
// keyed maps, ordered lists and trees.
//
// A consumer keeps a persistent live structure and, on every pass, hands the
// engine a freshly computed declarative value. The engine computes the
// smallest set of create, update, recycle, reposition and remove operations
// that bring the live structure in sync and forwards them to a consumer
// supplied adapter, which mutates the concrete backing store.
//
// # Architecture
//
// The engine consists of three reconcilers sharing one error model:
//
// 1. Map: SyncMap diffs two keyed mappings by key identity. Used for element
// attributes and content-hashed registries.
//
// 2. List: List.Plan and List.Sync diff two ordered sequences matched by value
// equality and emit anchored insertions, removals and moves.
//
// 3. Tree: TraverseSync and Tree walk a live tree against a declarative tree
// in post-order, reusing unchanged subtrees, recycling compatible nodes in
// place and swapping in fresh subtrees only when nothing can be reused.
//
// The engine never performs I/O and never compares metas itself. Adapters
// that talk to remote stores capture their context when they are built for
// a pass.
//
// # Usage Example
//
//	tree := reconcile.NewTree(doc.Root(), document.NewAdapter(doc))
//	view := reconcile.NewNode(document.El("ul"),
//	    reconcile.NewLeaf(document.Text("one")),
//	    reconcile.NewLeaf(document.Text("two")),
//	)
//	if err := tree.Sync(view); err != nil {
//	    return err
//	}
//
// # Preconditions
//
// Equality callbacks (Unchanged, Recyclable, list equality) must be
// deterministic and side effect free for the duration of a pass. Unchanged
// implies Recyclable. Update must not change the meta of the live payload it
// mutates.
package reconcile
