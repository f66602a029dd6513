package storage

// Config holds the connection settings of the S3 compatible store.
type Config struct {
	// Endpoint is the host and port of the store, without scheme.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey and SecretKey are the static credentials.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL switches the client to https.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket receives published style rules and bundles.
	Bucket string `mapstructure:"bucket" default:"styles"`
	// Region is used when the bucket has to be created.
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds each storage request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
