package document

import (
	"fmt"

	"treesync/core/reconcile"
	"treesync/feature/stylesheet"
)

// Adapter applies reconciliation of document views to a Document.
type Adapter struct {
	doc   *Document
	sheet *stylesheet.Sheet
	attrs attrAdapter
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithSheet registers the styles of created and updated elements in sheet.
func WithSheet(sheet *stylesheet.Sheet) AdapterOption {
	return func(a *Adapter) { a.sheet = sheet }
}

// NewAdapter returns an adapter mutating doc.
func NewAdapter(doc *Document, opts ...AdapterOption) *Adapter {
	a := &Adapter{doc: doc, attrs: attrAdapter{doc: doc}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Unchanged reports whether old matches next, attributes included.
func (a *Adapter) Unchanged(old Node, next Item) bool {
	if old.Tag != next.Tag {
		return false
	}
	if next.IsText() {
		return old.Text == next.Text
	}
	return reconcile.MapUnchanged(&old.Attrs, next.Attributes(), a.attrs.Unchanged)
}

// Recyclable reports whether old can be updated into next: both text
// nodes, or elements with the same tag.
func (a *Adapter) Recyclable(old Node, next Item) bool {
	return old.Tag == next.Tag
}

// Create materializes next as a detached node.
func (a *Adapter) Create(next Item) (Node, error) {
	if next.IsText() {
		id := a.doc.CreateText(next.Text)
		return Node{ID: id, Text: next.Text}, nil
	}

	n := Node{ID: a.doc.CreateElement(next.Tag), Tag: next.Tag}
	if err := a.syncAttrs(&n, next); err != nil {
		return Node{}, err
	}
	return n, nil
}

// Update brings old in line with next in place.
func (a *Adapter) Update(old *Node, next Item) error {
	if next.IsText() {
		if old.Text == next.Text {
			return nil
		}
		if err := a.doc.SetText(old.ID, next.Text); err != nil {
			return err
		}
		old.Text = next.Text
		return nil
	}
	return a.syncAttrs(old, next)
}

func (a *Adapter) syncAttrs(n *Node, next Item) error {
	if a.sheet != nil {
		a.sheet.Add(next.Style)
	}
	return reconcile.SyncMapSorted(&n.Attrs, n.ID, next.Attributes(), a.attrs)
}

// Meta returns the node id.
func (a *Adapter) Meta(live Node) NodeID {
	return live.ID
}

// Insert attaches nodes according to op.
func (a *Adapter) Insert(op reconcile.InsertOp[NodeID]) error {
	switch op := op.(type) {
	case reconcile.Append[NodeID]:
		return a.doc.Append(op.Parent, op.New...)
	case reconcile.InsertBefore[NodeID]:
		return a.doc.InsertBefore(op.Anchor, op.New...)
	case reconcile.InsertAfter[NodeID]:
		return a.doc.InsertAfter(op.Anchor, op.New...)
	case reconcile.Swap[NodeID]:
		return a.doc.Replace(op.Parent, op.Current, op.Target)
	default:
		return fmt.Errorf("unsupported insert op %T", op)
	}
}

// Remove deletes the node and its subtree.
func (a *Adapter) Remove(meta NodeID) error {
	return a.doc.Remove(meta)
}

// attrAdapter syncs attribute maps of elements.
type attrAdapter struct {
	doc *Document
}

func (a attrAdapter) Create(id NodeID, key string, next string) (string, error) {
	if err := a.doc.SetAttribute(id, key, next); err != nil {
		return "", err
	}
	return next, nil
}

func (a attrAdapter) Modified(id NodeID, key string, old *string, next string) error {
	if *old == next {
		return nil
	}
	if err := a.doc.SetAttribute(id, key, next); err != nil {
		return err
	}
	*old = next
	return nil
}

func (a attrAdapter) Remove(id NodeID, key string, _ string) error {
	return a.doc.RemoveAttribute(id, key)
}

func (a attrAdapter) Unchanged(old string, next string) bool {
	return old == next
}
