package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Session  SessionConfig  `mapstructure:"session"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	AppName     string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	HTTPPort    string `mapstructure:"http_port"`
}

type DatabaseConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Driver     string `mapstructure:"driver"`
	DBHost     string `mapstructure:"host"`
	DBPort     string `mapstructure:"port"`
	DBName     string `mapstructure:"name"`
	DBUser     string `mapstructure:"user"`
	DBPassword string `mapstructure:"password"`
	DBSSLMode  string `mapstructure:"ssl_mode"`

	ConnectTimeout        time.Duration `mapstructure:"connect_timeout"`
	PoolMaxConns          int32         `mapstructure:"pool_max_conns"`
	PoolMinConns          int32         `mapstructure:"pool_min_conns"`
	PoolMaxConnLifetime   time.Duration `mapstructure:"pool_max_conn_lifetime"`
	PoolMaxConnIdleTime   time.Duration `mapstructure:"pool_max_conn_idle_time"`
	PoolHealthCheckPeriod time.Duration `mapstructure:"pool_health_check_period"`

	MigrationsDir string `mapstructure:"migrations_dir"`
}

// Database drivers. pgxpool talks to pgx directly; stdlib goes through
// database/sql with the pgx stdlib driver.
const (
	DriverPgxpool = "pgxpool"
	DriverStdlib  = "stdlib"
)

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	AccessSecret     string        `mapstructure:"access_secret"`
	RefreshSecret    string        `mapstructure:"refresh_secret"`
	AccessExpiresIn  time.Duration `mapstructure:"access_expires_in"`
	RefreshExpiresIn time.Duration `mapstructure:"refresh_expires_in"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

type ChatConfig struct {
	ReplyDelay time.Duration `mapstructure:"reply_delay"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var errInvalidConfig = errors.New("invalid configuration")

func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.App.AppName) == "" {
		problems = append(problems, "app.name is required")
	}
	if strings.TrimSpace(c.App.HTTPPort) == "" {
		problems = append(problems, "app.http_port is required")
	}
	if strings.TrimSpace(c.JWT.AccessSecret) == "" {
		problems = append(problems, "jwt.access_secret is required")
	}
	if strings.TrimSpace(c.JWT.RefreshSecret) == "" {
		problems = append(problems, "jwt.refresh_secret is required")
	}
	if c.JWT.AccessExpiresIn <= 0 || c.JWT.RefreshExpiresIn <= 0 {
		problems = append(problems, "jwt expiry must be positive")
	}
	if c.Session.TTL <= 0 {
		problems = append(problems, "session.ttl must be positive")
	}
	if c.Chat.ReplyDelay < 0 {
		problems = append(problems, "chat.reply_delay must not be negative")
	}
	if c.Database.Enabled && strings.TrimSpace(c.Database.DBHost) == "" {
		problems = append(problems, "database.host is required when database is enabled")
	}
	if c.Database.Enabled {
		switch strings.TrimSpace(c.Database.Driver) {
		case "", DriverPgxpool, DriverStdlib:
		default:
			problems = append(problems, fmt.Sprintf("database.driver %q is not one of pgxpool, stdlib", c.Database.Driver))
		}
	}
	if c.Redis.Enabled && strings.TrimSpace(c.Redis.Address) == "" {
		problems = append(problems, "redis.address is required when redis is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// DSN renders the libpq keyword/value connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		strings.TrimSpace(d.DBHost),
		strings.TrimSpace(d.DBPort),
		strings.TrimSpace(d.DBUser),
		d.DBPassword,
		strings.TrimSpace(d.DBName),
		strings.TrimSpace(d.DBSSLMode),
	)
}
