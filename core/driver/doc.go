// Package driver runs reconciliation passes for a session.
//
// A Driver owns a reconcile.Tree and a view source. Tick runs a pass when the
// driver was invalidated, Force runs one unconditionally and Run ticks on a
// fixed frame interval until its context ends. Passes are serialized by a
// mutex, so a driver has a single writer even when ticked from several
// goroutines.
//
// Each pass gets a uuid, is timed, counted and logged with zap, recorded in a
// bounded History and, when configured, in Prometheus Metrics. Panics from
// the view source or the adapter are recovered as reconcile.KindPanic
// failures; a panic during Sync taints the tree so the next pass rebuilds it.
package driver
