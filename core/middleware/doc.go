// Package middleware groups the HTTP middleware of the inspection server.
//
// # Components
//
//   - auth: API key validation on the X-API-Key header.
//   - rayid: a request id per request, stored in the fiber locals under
//     "ray_id" and echoed in the X-Ray-ID response header.
//
// Both are registered globally by the serve command, rayid first so that
// every log line of a request carries its id.
package middleware
