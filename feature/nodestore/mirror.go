package nodestore

import (
	"context"
	"sync"

	"treesync/core/reconcile"
	"treesync/feature/document"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mirror keeps the rows of one session in sync with the views it is given.
type Mirror struct {
	mu     sync.Mutex
	store  *Store
	tree   *reconcile.Tree[int64, document.Item, Record]
	logger *zap.Logger
}

// NewMirror returns a mirror for session. Rows left by an earlier process
// are purged on the first Sync.
func NewMirror(ctx context.Context, db *gorm.DB, session string, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := NewStore(ctx, db, session)
	return &Mirror{
		store:  store,
		tree:   reconcile.NewTree[int64, document.Item, Record](Mount, store),
		logger: logger.With(zap.String("session", session)),
	}
}

// Sync writes the changes between the mirrored view and view.
func (m *Mirror) Sync(view reconcile.View[document.Item]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tree.Root() == nil {
		if err := m.store.Purge(); err != nil {
			return err
		}
	}
	if err := m.tree.Sync(view); err != nil {
		m.logger.Error("Failed to mirror view", zap.Error(err))
		return err
	}
	return nil
}

// Close deletes the mirrored rows.
func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree.Reset()
}
