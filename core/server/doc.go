// Package server holds the HTTP server configuration.
//
// The inspection server itself is assembled by the serve command; this package
// defines the settings it reads: listen port, API key, metrics path and the
// upload size limit for declarative views.
package server
