// Package config loads the directory configuration from YAML and the
// environment.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	SourceRandomUser = "randomuser"
	SourceSeed       = "seed"
)

// Config is resolved in this order:
//  1. explicit path passed to Load;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. environment only.
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Source   SourceConfig   `yaml:"source"`
	Redis    RedisConfig    `yaml:"redis"`
	Sessions SessionsConfig `yaml:"sessions"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	// CORSOrigins for the JSON API; empty allows any origin.
	CORSOrigins []string `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-separator:","`
}

func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// SourceConfig selects where profiles come from.
type SourceConfig struct {
	Kind    string        `yaml:"kind" env:"SOURCE_KIND" env-default:"randomuser"`
	URL     string        `yaml:"url" env:"SOURCE_URL" env-default:"https://randomuser.me/api/"`
	Timeout time.Duration `yaml:"timeout" env:"SOURCE_TIMEOUT" env-default:"10s"`
	Seed    int64         `yaml:"seed" env:"SOURCE_SEED" env-default:"42"`
}

// RedisConfig: an empty URL keeps sessions in memory.
type RedisConfig struct {
	URL string `yaml:"url" env:"REDIS_URL"`
}

type SessionsConfig struct {
	TTL time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"30m"`
}

type TimeoutConfig struct {
	Request time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"30s"`
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	switch {
	case path != "":
	case os.Getenv("CONFIG_PATH") != "":
		path = os.Getenv("CONFIG_PATH")
	default:
		if _, err := os.Stat("local.yaml"); err == nil {
			path = "local.yaml"
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Source.Kind {
	case SourceRandomUser:
		if c.Source.URL == "" {
			return fmt.Errorf("source.url is required for source.kind=%s", SourceRandomUser)
		}
	case SourceSeed:
	default:
		return fmt.Errorf("source.kind must be %q or %q, got %q", SourceRandomUser, SourceSeed, c.Source.Kind)
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("source.timeout must be > 0")
	}
	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("sessions.ttl must be > 0")
	}
	if c.Timeouts.Request <= 0 {
		return fmt.Errorf("timeouts.request must be > 0")
	}
	return nil
}
