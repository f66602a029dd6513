// Package config provides configuration management for treesync.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file. Defaults come from the `default` struct tags of
// every section.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port, API key, metrics path and body limit
//   - Storage: S3/MinIO credentials and the stylesheet bucket
//   - Log: Logging level and format
//   - Database: MySQL connection of the optional node mirror
//   - Driver: frame interval and pass history size
//   - Stylesheet: object prefix and bundle name of published rules
//
// Nested keys map to upper case variables joined by underscores, so
// driver.frame_interval_ms is read from DRIVER_FRAME_INTERVAL_MS.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
