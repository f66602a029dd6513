// Package inspect serves named document sessions over HTTP.
//
// Routes:
//
//	GET    /sessions              list sessions with their last pass
//	PUT    /sessions/:name/view   apply a YAML or JSON view (?defer=true queues it)
//	GET    /sessions/:name/view   current view as YAML
//	GET    /sessions/:name/html   rendered document
//	GET    /sessions/:name/styles stylesheet of the current view
//	GET    /sessions/:name/passes recent pass reports
//	DELETE /sessions/:name        stop and unmount the session
//
// Every session runs its own driver loop. Applied views can additionally be
// mirrored (for example into nodestore) and have their styles published
// (for example through stylesheet.Publisher).
package inspect
