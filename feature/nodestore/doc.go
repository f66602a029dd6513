// Package nodestore mirrors document views into a relational table.
//
// Every node of a session's view is one row of tree_nodes, linked to its
// parent by parent_id and ordered by a dense position. Store is the
// reconciliation adapter doing the writes through gorm; Mirror owns the live
// tree of one session and purges stale rows before its first pass. Rows are
// only written for nodes that were created, changed or moved, so unchanged
// views cost no statements.
package nodestore
