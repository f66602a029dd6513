// Package loader provides the feature loading system of the HTTP server.
//
// Each feature implements the Feature interface:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps the registry of features. Register adds one, LoadAll mounts
// every enabled feature in registration order.
package loader
