// Package config loads service configuration from an optional YAML
// file, with environment variables taking precedence.
package config

import (
	"os"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Auth     Auth     `yaml:"auth"`
	Failover Failover `yaml:"failover"`
	Log      Log      `yaml:"log"`
}

type Server struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type Database struct {
	DSN string `yaml:"dsn"`
}

type Auth struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type Failover struct {
	// ReprobeInterval is how often a benched primary is re-probed.
	// Zero disables recovery.
	ReprobeInterval time.Duration `yaml:"reprobe_interval"`
}

type Log struct {
	Level string `yaml:"level"`
}

func defaults() Config {
	return Config{
		Server: Server{
			Port:         8080,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Failover: Failover{ReprobeInterval: 30 * time.Second},
		Log:      Log{Level: "info"},
	}
}

// Load reads path (when non-empty and present) and applies env
// overrides on top of the defaults.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, pkgerrors.Wrap(err, "read config")
			}
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, pkgerrors.Wrap(err, "parse config")
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("AUTH_BASE_URL"); v != "" {
		cfg.Auth.BaseURL = v
	}
	if v := os.Getenv("AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FAILOVER_REPROBE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Failover.ReprobeInterval = d
		}
	}
}
