package document

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

var (
	// ErrNoNode is returned for operations on unknown node ids.
	ErrNoNode = errors.New("no such node")
	// ErrNoView is returned by a session pass before any view was set.
	ErrNoView = errors.New("no view set")
)

// NodeID addresses a node of a Document.
type NodeID uint64

func (id NodeID) String() string {
	return fmt.Sprintf("#%d", uint64(id))
}

// Kind distinguishes element and text nodes.
type Kind int

const (
	ElementNode Kind = iota
	TextNode
)

type node struct {
	kind     Kind
	tag      string
	text     string
	attrs    map[string]string
	parent   NodeID
	attached bool
	children []NodeID
}

// Document is an in-memory DOM: element and text nodes addressed by NodeID,
// with attributes and ordered children. It is safe for concurrent use.
type Document struct {
	mu    sync.RWMutex
	nodes map[NodeID]*node
	next  NodeID
	root  NodeID
}

// NewDocument returns a document holding a single root element with the
// given tag, "body" when empty.
func NewDocument(rootTag string) *Document {
	if rootTag == "" {
		rootTag = "body"
	}
	d := &Document{nodes: map[NodeID]*node{}}
	d.root = d.alloc(&node{kind: ElementNode, tag: rootTag, attrs: map[string]string{}})
	return d
}

// Root returns the id of the root element.
func (d *Document) Root() NodeID {
	return d.root
}

// Len returns the number of nodes, attached or not, including the root.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.nodes)
}

func (d *Document) alloc(n *node) NodeID {
	d.next++
	d.nodes[d.next] = n
	return d.next
}

func (d *Document) get(id NodeID) (*node, error) {
	n, ok := d.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNoNode, id)
	}
	return n, nil
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) NodeID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alloc(&node{kind: ElementNode, tag: tag, attrs: map[string]string{}})
}

// CreateText creates a detached text node.
func (d *Document) CreateText(text string) NodeID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alloc(&node{kind: TextNode, text: text})
}

// SetText replaces the content of a text node.
func (d *Document) SetText(id NodeID, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.get(id)
	if err != nil {
		return err
	}
	if n.kind != TextNode {
		return fmt.Errorf("node %v is not a text node", id)
	}
	n.text = text
	return nil
}

// SetAttribute sets an attribute of an element.
func (d *Document) SetAttribute(id NodeID, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.element(id)
	if err != nil {
		return err
	}
	n.attrs[key] = value
	return nil
}

// RemoveAttribute removes an attribute of an element.
func (d *Document) RemoveAttribute(id NodeID, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.element(id)
	if err != nil {
		return err
	}
	delete(n.attrs, key)
	return nil
}

func (d *Document) element(id NodeID) (*node, error) {
	n, err := d.get(id)
	if err != nil {
		return nil, err
	}
	if n.kind != ElementNode {
		return nil, fmt.Errorf("node %v is not an element", id)
	}
	return n, nil
}

// Append moves ids to the end of parent's children, in order.
func (d *Document) Append(parent NodeID, ids ...NodeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.element(parent)
	if err != nil {
		return err
	}
	if err := d.detachAll(parent, ids); err != nil {
		return err
	}
	p.children = append(p.children, ids...)
	return nil
}

// InsertBefore moves ids in front of anchor, in order.
func (d *Document) InsertBefore(anchor NodeID, ids ...NodeID) error {
	return d.insertAt(anchor, ids, 0)
}

// InsertAfter moves ids behind anchor, in order.
func (d *Document) InsertAfter(anchor NodeID, ids ...NodeID) error {
	return d.insertAt(anchor, ids, 1)
}

func (d *Document) insertAt(anchor NodeID, ids []NodeID, offset int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, err := d.get(anchor)
	if err != nil {
		return err
	}
	if !a.attached {
		return fmt.Errorf("anchor %v is detached", anchor)
	}
	if slices.Contains(ids, anchor) {
		return fmt.Errorf("cannot insert %v relative to itself", anchor)
	}
	parent := a.parent
	if err := d.detachAll(parent, ids); err != nil {
		return err
	}
	p := d.nodes[parent]
	i := slices.Index(p.children, anchor) + offset
	p.children = slices.Insert(p.children, i, ids...)
	return nil
}

// Replace puts current in the place of target under parent and deletes the
// target subtree.
func (d *Document) Replace(parent, current, target NodeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, err := d.element(parent)
	if err != nil {
		return err
	}
	t, err := d.get(target)
	if err != nil {
		return err
	}
	if !t.attached || t.parent != parent {
		return fmt.Errorf("node %v is not a child of %v", target, parent)
	}
	if err := d.detachAll(parent, []NodeID{current}); err != nil {
		return err
	}
	i := slices.Index(p.children, target)
	p.children[i] = current
	t.attached = false
	d.delete(target)
	return nil
}

// Remove detaches id and deletes its subtree.
func (d *Document) Remove(id NodeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id == d.root {
		return errors.New("cannot remove the root element")
	}
	n, err := d.get(id)
	if err != nil {
		return err
	}
	d.detach(id, n)
	d.delete(id)
	return nil
}

// detachAll unlinks ids from their current parents and marks them as
// children of parent. Moving an ancestor of parent is rejected. Every id is
// checked before any is moved, so a rejected call changes nothing.
func (d *Document) detachAll(parent NodeID, ids []NodeID) error {
	nodes := make([]*node, len(ids))
	for i, id := range ids {
		n, err := d.get(id)
		if err != nil {
			return err
		}
		if id == d.root || d.isAncestor(id, parent) {
			return fmt.Errorf("cannot move %v under %v", id, parent)
		}
		nodes[i] = n
	}
	for i, id := range ids {
		d.detach(id, nodes[i])
		nodes[i].parent = parent
		nodes[i].attached = true
	}
	return nil
}

func (d *Document) detach(id NodeID, n *node) {
	if !n.attached {
		return
	}
	p := d.nodes[n.parent]
	p.children = slices.DeleteFunc(p.children, func(c NodeID) bool { return c == id })
	n.attached = false
}

func (d *Document) isAncestor(id, of NodeID) bool {
	for cur := of; ; {
		if cur == id {
			return true
		}
		n := d.nodes[cur]
		if n == nil || !n.attached {
			return false
		}
		cur = n.parent
	}
}

func (d *Document) delete(id NodeID) {
	n := d.nodes[id]
	for _, c := range n.children {
		d.delete(c)
	}
	delete(d.nodes, id)
}

// Snapshot is a read-only copy of a node.
type Snapshot struct {
	ID       NodeID            `json:"id"`
	Kind     Kind              `json:"kind"`
	Tag      string            `json:"tag,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Parent   NodeID            `json:"parent,omitempty"`
	Children []NodeID          `json:"children,omitempty"`
}

// Node returns a copy of the node id.
func (d *Document) Node(id NodeID) (Snapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, err := d.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	s := Snapshot{
		ID:       id,
		Kind:     n.kind,
		Tag:      n.tag,
		Text:     n.text,
		Attrs:    maps.Clone(n.attrs),
		Children: slices.Clone(n.children),
	}
	if n.attached {
		s.Parent = n.parent
	}
	return s, nil
}

// Children returns the child ids of id.
func (d *Document) Children(id NodeID) ([]NodeID, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, err := d.get(id)
	if err != nil {
		return nil, err
	}
	return slices.Clone(n.children), nil
}
