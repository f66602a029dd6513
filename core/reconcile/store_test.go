package reconcile

import (
	"fmt"
	"slices"
	"strings"
)

const mountID = 0

// node is the declarative payload used by the tests.
type node struct {
	kind  string
	value string
}

func (n node) String() string {
	if n.value == "" {
		return n.kind
	}
	return n.kind + "=" + n.value
}

// cell is the live payload used by the tests.
type cell struct {
	id    int
	kind  string
	value string
}

func el(kind string, children ...View[node]) View[node] {
	return NewNode(node{kind: kind}, children...)
}

func elv(kind, value string, children ...View[node]) View[node] {
	return NewNode(node{kind: kind, value: value}, children...)
}

func txt(value string) View[node] {
	return NewLeaf(node{kind: "text", value: value})
}

func leaf(kind string) View[node] {
	return NewLeaf(node{kind: kind})
}

// fakeStore is an in-memory backing store that physically applies every op
// so tests can compare the resulting structure with the declared one.
type fakeStore struct {
	nextID   int
	labels   map[int]string
	children map[int][]int
	parent   map[int]int
	calls    []string
	fail     map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		labels:   map[int]string{mountID: "mount"},
		children: map[int][]int{},
		parent:   map[int]int{},
		fail:     map[string]error{},
	}
}

func (f *fakeStore) Unchanged(old cell, next node) bool {
	return old.kind == next.kind && old.value == next.value
}

func (f *fakeStore) Recyclable(old cell, next node) bool {
	return old.kind == next.kind
}

func (f *fakeStore) Create(next node) (cell, error) {
	if err := f.fail["create"]; err != nil {
		return cell{}, err
	}
	f.nextID++
	c := cell{id: f.nextID, kind: next.kind, value: next.value}
	f.labels[c.id] = next.String()
	f.calls = append(f.calls, fmt.Sprintf("create %d %s", c.id, next))
	return c, nil
}

func (f *fakeStore) Update(old *cell, next node) error {
	if err := f.fail["update"]; err != nil {
		return err
	}
	old.value = next.value
	f.labels[old.id] = next.String()
	f.calls = append(f.calls, fmt.Sprintf("update %d %s", old.id, next))
	return nil
}

func (f *fakeStore) Meta(live cell) int {
	return live.id
}

func (f *fakeStore) Insert(op InsertOp[int]) error {
	if err := f.fail["insert"]; err != nil {
		return err
	}
	f.calls = append(f.calls, op.String())

	switch op := op.(type) {
	case Append[int]:
		for _, id := range op.New {
			f.detach(id)
			f.children[op.Parent] = append(f.children[op.Parent], id)
			f.parent[id] = op.Parent
		}
	case InsertBefore[int]:
		for _, id := range op.New {
			f.detach(id)
			p, idx, err := f.locate(op.Anchor)
			if err != nil {
				return err
			}
			f.children[p] = slices.Insert(f.children[p], idx, id)
			f.parent[id] = p
		}
	case InsertAfter[int]:
		anchor := op.Anchor
		for _, id := range op.New {
			f.detach(id)
			p, idx, err := f.locate(anchor)
			if err != nil {
				return err
			}
			f.children[p] = slices.Insert(f.children[p], idx+1, id)
			f.parent[id] = p
			anchor = id
		}
	case Swap[int]:
		f.detach(op.Current)
		p, idx, err := f.locate(op.Target)
		if err != nil {
			return err
		}
		if p != op.Parent {
			return fmt.Errorf("swap target %d lives under %d, not %d", op.Target, p, op.Parent)
		}
		f.children[p][idx] = op.Current
		f.parent[op.Current] = p
		delete(f.parent, op.Target)
		f.discard(op.Target)
	default:
		return fmt.Errorf("unknown op %T", op)
	}
	return nil
}

func (f *fakeStore) Remove(id int) error {
	if err := f.fail["remove"]; err != nil {
		return err
	}
	if _, ok := f.parent[id]; !ok {
		return fmt.Errorf("remove of detached node %d", id)
	}
	f.calls = append(f.calls, fmt.Sprintf("remove %d", id))
	f.detach(id)
	f.discard(id)
	return nil
}

func (f *fakeStore) locate(id int) (parent, index int, err error) {
	p, ok := f.parent[id]
	if !ok {
		return 0, 0, fmt.Errorf("anchor %d is detached", id)
	}
	return p, slices.Index(f.children[p], id), nil
}

func (f *fakeStore) detach(id int) {
	p, ok := f.parent[id]
	if !ok {
		return
	}
	f.children[p] = slices.DeleteFunc(f.children[p], func(c int) bool { return c == id })
	delete(f.parent, id)
}

func (f *fakeStore) discard(id int) {
	for _, c := range f.children[id] {
		delete(f.parent, c)
		f.discard(c)
	}
	delete(f.children, id)
	delete(f.labels, id)
}

// nodes returns the number of live nodes in the store, the mount excluded.
func (f *fakeStore) nodes() int {
	return len(f.labels) - 1
}

func (f *fakeStore) render(id int) string {
	kids := f.children[id]
	if len(kids) == 0 {
		return f.labels[id]
	}
	parts := make([]string, len(kids))
	for i, c := range kids {
		parts[i] = f.render(c)
	}
	return f.labels[id] + "(" + strings.Join(parts, ",") + ")"
}

func (f *fakeStore) mounted() string {
	parts := make([]string, 0, len(f.children[mountID]))
	for _, c := range f.children[mountID] {
		parts = append(parts, f.render(c))
	}
	return strings.Join(parts, ",")
}

func (f *fakeStore) reset() {
	f.calls = nil
}

func renderView(v View[node]) string {
	if len(v.Children) == 0 {
		return v.Payload.String()
	}
	parts := make([]string, len(v.Children))
	for i, c := range v.Children {
		parts[i] = renderView(c)
	}
	return v.Payload.String() + "(" + strings.Join(parts, ",") + ")"
}

func renderLive(l *Live[cell]) string {
	label := node{kind: l.Payload.kind, value: l.Payload.value}.String()
	if len(l.Children) == 0 {
		return label
	}
	parts := make([]string, len(l.Children))
	for i, c := range l.Children {
		parts[i] = renderLive(c)
	}
	return label + "(" + strings.Join(parts, ",") + ")"
}

func childIDs(l *Live[cell]) []int {
	ids := make([]int, len(l.Children))
	for i, c := range l.Children {
		ids[i] = c.Payload.id
	}
	return ids
}
