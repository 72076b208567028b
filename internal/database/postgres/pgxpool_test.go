package postgres

import (
	"context"
	"testing"
	"time"

	"kala/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unreachable(driver string) config.DatabaseConfig {
	return config.DatabaseConfig{
		Enabled:        true,
		Driver:         driver,
		DBHost:         "127.0.0.1",
		DBPort:         "1",
		DBName:         "kala",
		DBUser:         "kala",
		DBSSLMode:      "disable",
		ConnectTimeout: time.Second,
		PoolMaxConns:   2,
	}
}

func TestConnect_UnknownDriver(t *testing.T) {
	db, err := Connect(context.Background(), unreachable("mysql"), nil)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), `unknown database driver "mysql"`)
}

func TestConnect_StdlibDriverPings(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	db, err := Connect(ctx, unreachable(config.DriverStdlib), nil)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "ping postgres")
}
