package reconcile

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// MapAdapter receives the callbacks of SyncMap.
//
// A is the attachment the map belongs to (for example the element that owns
// an attribute map), K the key, I the declarative value and S the live value.
type MapAdapter[A any, K comparable, I, S any] interface {
	// Create materializes a live value for a key that is new in next.
	Create(attached A, key K, next I) (S, error)

	// Modified brings the live value of a surviving key in line with next.
	// It may mutate *old in place; it must tolerate being called when old is
	// already unchanged.
	Modified(attached A, key K, old *S, next I) error

	// Remove discards the live value of a key that vanished from next.
	Remove(attached A, key K, old S) error

	// Unchanged reports whether old fully represents next.
	Unchanged(old S, next I) bool
}

// Map is a keyed live collection reconciled by key identity. The zero value
// is an empty map ready to use.
type Map[K comparable, S any] struct {
	entries map[K]S
}

// NewMap returns a map holding a copy of entries.
func NewMap[K comparable, S any](entries map[K]S) *Map[K, S] {
	return &Map[K, S]{entries: maps.Clone(entries)}
}

// Len returns the number of entries.
func (m *Map[K, S]) Len() int {
	return len(m.entries)
}

// Get returns the live value stored under key.
func (m *Map[K, S]) Get(key K) (S, bool) {
	v, ok := m.entries[key]
	return v, ok
}

// All iterates over the entries in unspecified order.
func (m *Map[K, S]) All() iter.Seq2[K, S] {
	return maps.All(m.entries)
}

// Snapshot returns a copy of the entries.
func (m *Map[K, S]) Snapshot() map[K]S {
	return maps.Clone(m.entries)
}

// MapUnchanged reports whether m and next have identical key sets and every
// live value is unchanged with respect to its declarative value. It is the
// fast path of SyncMap and lets composite adapters fold a map comparison into
// their own Unchanged.
func MapUnchanged[K comparable, I, S any](m *Map[K, S], next map[K]I, unchanged func(old S, next I) bool) bool {
	if m.Len() != len(next) {
		return false
	}
	for key, value := range next {
		old, ok := m.entries[key]
		if !ok || !unchanged(old, value) {
			return false
		}
	}
	return true
}

// SyncMap reconciles m against next. When MapUnchanged holds no callback is
// issued. Otherwise each key of next is modified or created and each key
// absent from next is removed, in unspecified order.
//
// A failing callback aborts the pass; entries created before the failure
// remain in m since they exist in the backing store.
func SyncMap[A any, K comparable, I, S any](m *Map[K, S], attached A, next map[K]I, adapter MapAdapter[A, K, I, S]) error {
	if MapUnchanged(m, next, adapter.Unchanged) {
		return nil
	}
	return syncMap(m, attached, next, slices.Collect(maps.Keys(next)), adapter, nil)
}

// SyncMapSorted is SyncMap with callbacks issued in ascending key order, for
// consumers that need reproducible operation logs.
func SyncMapSorted[A any, K cmp.Ordered, I, S any](m *Map[K, S], attached A, next map[K]I, adapter MapAdapter[A, K, I, S]) error {
	if MapUnchanged(m, next, adapter.Unchanged) {
		return nil
	}
	return syncMap(m, attached, next, slices.Sorted(maps.Keys(next)), adapter, slices.Sort[[]K])
}

func syncMap[A any, K comparable, I, S any](m *Map[K, S], attached A, next map[K]I, order []K, adapter MapAdapter[A, K, I, S], sortStale func([]K)) error {
	if m.entries == nil {
		m.entries = make(map[K]S, len(next))
	}

	for _, key := range order {
		value := next[key]
		if old, ok := m.entries[key]; ok {
			if err := adapter.Modified(attached, key, &old, value); err != nil {
				return adapterErr("map.modified", err)
			}
			m.entries[key] = old
			continue
		}
		created, err := adapter.Create(attached, key, value)
		if err != nil {
			return adapterErr("map.create", err)
		}
		m.entries[key] = created
	}

	stale := make([]K, 0, len(m.entries))
	for key := range m.entries {
		if _, ok := next[key]; !ok {
			stale = append(stale, key)
		}
	}
	if sortStale != nil {
		sortStale(stale)
	}

	for _, key := range stale {
		old, ok := m.entries[key]
		if !ok {
			return invariantf("map.remove", "key %v vanished before removal", key)
		}
		if err := adapter.Remove(attached, key, old); err != nil {
			return adapterErr("map.remove", err)
		}
		delete(m.entries, key)
	}
	return nil
}
