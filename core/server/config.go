package server

import "strings"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// MetricsPath is where Prometheus metrics are exposed. Empty disables them.
	MetricsPath string `mapstructure:"metrics_path" default:"/metrics"`
	// BodyLimitKB caps the size of uploaded views.
	BodyLimitKB int `mapstructure:"body_limit_kb" default:"1024"`
}

// Addr returns the listen address for the configured port.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// BodyLimit returns the request body limit in bytes, with a 1 MiB floor for
// unset values.
func (c Config) BodyLimit() int {
	if c.BodyLimitKB <= 0 {
		return 1024 * 1024
	}
	return c.BodyLimitKB * 1024
}
