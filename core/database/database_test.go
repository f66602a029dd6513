package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := Config{
		Host:     "db.local",
		Port:     3307,
		User:     "sync",
		Password: "p@ss:word",
		Name:     "trees",
	}

	dsn := DSN(cfg)
	assert.Contains(t, dsn, "sync:p%40ss%3Aword@tcp(db.local:3307)/trees?")
	assert.Contains(t, dsn, "timeout=10s")
	assert.Contains(t, dsn, "parseTime=True")

	cfg.TimeoutSeconds = 3
	assert.Contains(t, DSN(cfg), "readTimeout=3s")
}

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Host:           "127.0.0.1",
			Port:           1,
			User:           "root",
			Password:       "wrongpassword",
			Name:           "treesync",
			TimeoutSeconds: 1,
		}

		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}
