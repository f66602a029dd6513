package stylesheet

// Config holds configuration for stylesheet publishing.
type Config struct {
	// Prefix is prepended to the object name of every published rule.
	Prefix string `mapstructure:"prefix" default:"rules/"`
	// BundleName is the object name of the combined stylesheet.
	BundleName string `mapstructure:"bundle_name" default:"bundle.css"`
	// Enabled turns on publishing from the inspection server.
	Enabled bool `mapstructure:"enabled" default:"false"`
}
