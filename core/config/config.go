package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"treesync/core/database"
	"treesync/core/driver"
	"treesync/core/logger"
	"treesync/core/server"
	"treesync/core/storage"
	"treesync/feature/stylesheet"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the configuration of every treesync command.
type Config struct {
	// Server configures the HTTP listener of the serve command.
	Server server.Config `mapstructure:"server"`
	// Storage configures the bucket styles are published to.
	Storage storage.Config `mapstructure:"storage"`
	// Log configures level and encoding.
	Log logger.Config `mapstructure:"log"`
	// Database configures the optional relational mirror.
	Database database.Config `mapstructure:"database"`
	// Driver holds the tick settings of session drivers.
	Driver driver.Config `mapstructure:"driver"`
	// Stylesheet configures rule publishing.
	Stylesheet stylesheet.Config `mapstructure:"stylesheet"`
}

// LoadConfig reads the .env file in path, when present, then the process
// environment. Unset keys take their struct tag defaults.
func LoadConfig(path string) (*Config, error) {
	envPath := filepath.Join(path, ".env")

	// A missing .env is normal outside development.
	_ = godotenv.Overload(envPath)

	v := viper.New()
	setDefaults(v, reflect.TypeOf(Config{}), "")

	// server.port is read from SERVER_PORT.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers the default tag of every mapstructure field of t
// under its dotted key. Keys without a default are registered empty so
// AutomaticEnv still resolves them on Unmarshal.
func setDefaults(v *viper.Viper, t reflect.Type, prefix string) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			setDefaults(v, field.Type, key)
			continue
		}
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
