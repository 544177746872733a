// Package config loads server configuration from a YAML file and FISHLEDGER_* variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Numbering backends.
const (
	NumberingPostgres = "postgres"
	NumberingRedis    = "redis"
	NumberingMemory   = "memory"
)

type Config struct {
	App struct {
		Env      string `mapstructure:"env"`
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"app"`

	HTTP struct {
		Addr            string        `mapstructure:"addr"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`

	Storage struct {
		Driver string `mapstructure:"driver"`
	} `mapstructure:"storage"`

	Postgres struct {
		DSN      string `mapstructure:"dsn"`
		MaxConns int32  `mapstructure:"max_conns"`
		MinConns int32  `mapstructure:"min_conns"`
		Migrate  bool   `mapstructure:"migrate"`
	} `mapstructure:"postgres"`

	Numbering struct {
		Backend string `mapstructure:"backend"`
	} `mapstructure:"numbering"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 30*time.Second)
	v.SetDefault("storage.driver", StorageMemory)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 20)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.migrate", true)
	v.SetDefault("numbering.backend", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("metrics.enabled", true)
}

// Load reads path (optional; empty means defaults and environment only).
// FISHLEDGER_POSTGRES_DSN overrides postgres.dsn and so on.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FISHLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}

	if c.Numbering.Backend == "" {
		// sequences live with the documents unless told otherwise
		c.Numbering.Backend = c.Storage.Driver
	}
	return c, c.Validate()
}

// Validate checks driver combinations.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Numbering.Backend {
	case NumberingMemory:
	case NumberingPostgres:
		if c.Storage.Driver != StoragePostgres {
			return fmt.Errorf("postgres numbering requires postgres storage")
		}
	case NumberingRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for redis numbering")
		}
	default:
		return fmt.Errorf("unknown numbering backend %q", c.Numbering.Backend)
	}
	return nil
}
