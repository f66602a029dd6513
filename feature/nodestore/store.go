package nodestore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"treesync/core/database"
	"treesync/core/reconcile"
	"treesync/feature/document"

	"gorm.io/gorm"
)

// Mount is the parent meta of a session's root row.
const Mount int64 = 0

// Detached is the position of a row that no Insert op has placed yet, so a
// row left behind by a failed pass is never mistaken for a root.
const Detached = -1

type slot struct {
	parent   int64
	position int
}

// Store is a reconciliation adapter persisting document views as rows of
// the tree_nodes table. Row ids are the metas; Insert ops keep parent_id and
// dense positions of every touched sibling list up to date.
type Store struct {
	db       *gorm.DB
	session  string
	children map[int64][]int64
	parent   map[int64]int64
	at       map[int64]slot
}

// NewStore returns a store writing rows of session through db. Statements
// run with ctx.
func NewStore(ctx context.Context, db *gorm.DB, session string) *Store {
	return &Store{
		db:       db.WithContext(ctx).Session(&gorm.Session{SkipDefaultTransaction: true}),
		session:  session,
		children: map[int64][]int64{},
		parent:   map[int64]int64{},
		at:       map[int64]slot{},
	}
}

// VerifySchema checks that the table has every column the store uses.
func VerifySchema(db *gorm.DB) error {
	missing, err := database.MissingColumns(db, TableName, Columns)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns %v", TableName, missing)
	}
	return nil
}

// Purge deletes every row of the session.
func (s *Store) Purge() error {
	if err := s.db.Where("session = ?", s.session).Delete(&Row{}).Error; err != nil {
		return fmt.Errorf("failed to purge session %s: %w", s.session, err)
	}
	clear(s.children)
	clear(s.parent)
	clear(s.at)
	return nil
}

func encodeAttrs(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "", nil
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Store) Unchanged(old Record, next document.Item) bool {
	if old.Tag != next.Tag {
		return false
	}
	if next.IsText() {
		return old.Text == next.Text
	}
	attrs, err := encodeAttrs(next.Attributes())
	return err == nil && old.Attrs == attrs
}

func (s *Store) Recyclable(old Record, next document.Item) bool {
	return old.Tag == next.Tag
}

func (s *Store) Create(next document.Item) (Record, error) {
	attrs, err := encodeAttrs(next.Attributes())
	if err != nil {
		return Record{}, err
	}
	row := Row{Session: s.session, Position: Detached, Tag: next.Tag, Text: next.Text, Attrs: attrs}
	if err := s.db.Create(&row).Error; err != nil {
		return Record{}, fmt.Errorf("failed to insert node: %w", err)
	}
	s.at[row.ID] = slot{parent: Mount, position: Detached}
	return Record{ID: row.ID, Tag: row.Tag, Text: row.Text, Attrs: row.Attrs}, nil
}

func (s *Store) Update(old *Record, next document.Item) error {
	column, value := "text", next.Text
	if !next.IsText() {
		attrs, err := encodeAttrs(next.Attributes())
		if err != nil {
			return err
		}
		column, value = "attrs", attrs
	}
	if err := s.db.Model(&Row{}).Where("id = ?", old.ID).Update(column, value).Error; err != nil {
		return fmt.Errorf("failed to update node %d: %w", old.ID, err)
	}
	if column == "text" {
		old.Text = value
	} else {
		old.Attrs = value
	}
	return nil
}

func (s *Store) Meta(live Record) int64 {
	return live.ID
}

func (s *Store) Insert(op reconcile.InsertOp[int64]) error {
	switch op := op.(type) {
	case reconcile.Append[int64]:
		s.detach(op.New)
		s.children[op.Parent] = append(s.children[op.Parent], op.New...)
		return s.attach(op.Parent, op.New)
	case reconcile.InsertBefore[int64]:
		return s.insertAt(op.Anchor, op.New, 0)
	case reconcile.InsertAfter[int64]:
		return s.insertAt(op.Anchor, op.New, 1)
	case reconcile.Swap[int64]:
		siblings := s.children[op.Parent]
		i := slices.Index(siblings, op.Target)
		if i < 0 {
			return fmt.Errorf("node %d is not a child of %d", op.Target, op.Parent)
		}
		s.detach([]int64{op.Current})
		siblings = s.children[op.Parent]
		i = slices.Index(siblings, op.Target)
		siblings[i] = op.Current
		delete(s.parent, op.Target)
		if err := s.attach(op.Parent, []int64{op.Current}); err != nil {
			return err
		}
		return s.deleteSubtree(op.Target)
	default:
		return fmt.Errorf("unsupported insert op %T", op)
	}
}

func (s *Store) insertAt(anchor int64, ids []int64, offset int) error {
	parent, ok := s.parent[anchor]
	if !ok {
		return fmt.Errorf("anchor %d is detached", anchor)
	}
	s.detach(ids)
	siblings := s.children[parent]
	i := slices.Index(siblings, anchor) + offset
	s.children[parent] = slices.Insert(siblings, i, ids...)
	return s.attach(parent, ids)
}

func (s *Store) Remove(meta int64) error {
	parent, attached := s.parent[meta]
	s.detach([]int64{meta})
	if err := s.deleteSubtree(meta); err != nil {
		return err
	}
	if attached {
		return s.attach(parent, nil)
	}
	return nil
}

// detach unlinks ids from their sibling lists without writing.
func (s *Store) detach(ids []int64) {
	for _, id := range ids {
		parent, ok := s.parent[id]
		if !ok {
			continue
		}
		s.children[parent] = slices.DeleteFunc(s.children[parent], func(c int64) bool { return c == id })
		delete(s.parent, id)
	}
}

// attach records moved as children of parent and writes the placement of
// every child of parent whose stored slot is out of date. Moved rows are
// always written.
func (s *Store) attach(parent int64, moved []int64) error {
	for pos, id := range s.children[parent] {
		s.parent[id] = parent
		want := slot{parent: parent, position: pos}
		if s.at[id] == want && !slices.Contains(moved, id) {
			continue
		}
		var parentID *int64
		if parent != Mount {
			parentID = &parent
		}
		err := s.db.Model(&Row{}).Where("id = ?", id).Updates(map[string]any{
			"parent_id": parentID,
			"position":  pos,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to place node %d: %w", id, err)
		}
		s.at[id] = want
	}
	return nil
}

func (s *Store) subtree(id int64, out []int64) []int64 {
	out = append(out, id)
	for _, c := range s.children[id] {
		out = s.subtree(c, out)
	}
	return out
}

func (s *Store) deleteSubtree(id int64) error {
	ids := s.subtree(id, nil)
	if err := s.db.Where("id IN ?", ids).Delete(&Row{}).Error; err != nil {
		return fmt.Errorf("failed to delete node %d: %w", id, err)
	}
	for _, d := range ids {
		delete(s.children, d)
		delete(s.parent, d)
		delete(s.at, d)
	}
	return nil
}
