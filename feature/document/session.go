package document

import (
	"sync"

	"treesync/core/driver"
	"treesync/core/reconcile"
	"treesync/feature/stylesheet"
)

// Session keeps one document in sync with the latest view it was given.
type Session struct {
	doc    *Document
	sheet  *stylesheet.Sheet
	driver *driver.Driver[NodeID, Item, Node]

	mu   sync.RWMutex
	view reconcile.View[Item]
	set  bool
}

// NewSession returns a session rendering into a fresh document. Views are
// mounted under the document root.
func NewSession(name string, opts ...driver.Option) *Session {
	s := &Session{
		doc:   NewDocument("body"),
		sheet: stylesheet.NewSheet(),
	}
	adapter := NewAdapter(s.doc)
	s.driver = driver.New[NodeID, Item, Node](name, s.doc.Root(), adapter, s.current, opts...)
	return s
}

func (s *Session) current() (reconcile.View[Item], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return reconcile.View[Item]{}, ErrNoView
	}
	return s.view, nil
}

// Name returns the session name.
func (s *Session) Name() string {
	return s.driver.Name()
}

// Document returns the backing document.
func (s *Session) Document() *Document {
	return s.doc
}

// Sheet returns the styles of the current view.
func (s *Session) Sheet() *stylesheet.Sheet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sheet
}

// Driver returns the driver running the session's passes.
func (s *Session) Driver() *driver.Driver[NodeID, Item, Node] {
	return s.driver
}

// View returns the last view given to the session.
func (s *Session) View() (reconcile.View[Item], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view, s.set
}

// SetView replaces the view; the next tick reconciles it.
func (s *Session) SetView(v reconcile.View[Item]) {
	s.store(v)
	s.driver.Invalidate()
}

// Apply replaces the view and reconciles it immediately. The view is not
// marked dirty, so a concurrent tick does not run the same pass twice.
func (s *Session) Apply(v reconcile.View[Item]) (driver.PassReport, error) {
	s.store(v)
	return s.driver.Force()
}

func (s *Session) store(v reconcile.View[Item]) {
	sheet := CollectStyles(v)
	s.mu.Lock()
	s.view = v
	s.sheet = sheet
	s.set = true
	s.mu.Unlock()
}

// HTML renders the mounted view, empty before the first successful pass.
func (s *Session) HTML() (string, error) {
	children, err := s.doc.Children(s.doc.Root())
	if err != nil || len(children) == 0 {
		return "", err
	}
	return s.doc.HTML(children[0])
}

// Close unmounts the view.
func (s *Session) Close() error {
	return s.driver.Close()
}
