// Package logger builds the zap loggers used across treesync.
//
// New picks the zap development preset at debug level and the production
// preset otherwise, with json or console encoding. Field names are fixed to
// level, time and message so log pipelines can parse every command alike.
//
// # Scoped loggers
//
//   - WithRayID adds the ray_id of a Fiber request.
//   - WithPass adds the session and pass_id of a reconciliation pass.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	logger.WithPass(log, "home", id).Info("Pass finished")
package logger
