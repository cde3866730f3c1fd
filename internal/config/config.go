package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers for the key-value documents.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl"`
		// Catalog optionally replaces the built-in quizzes with a YAML file.
		Catalog string `yaml:"catalog"`
	} `yaml:"quiz"`
	Storage struct {
		Driver string `yaml:"driver"`
		Path   string `yaml:"path"`
	} `yaml:"storage"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		TokenTTL  string `yaml:"tokenTTL"`
		HashCost  int    `yaml:"hashCost"`
	} `yaml:"auth"`
	Achievements struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"achievements"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Storage.Driver = StorageFile
	cfg.Storage.Path = defaultStatePath()
	cfg.Auth.JWTSecret = "change-me"
	cfg.Auth.TokenTTL = "24h"
	cfg.Achievements.Timezone = "UTC"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not
// an error. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("EDUQUIZ_STATE"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.URL = v
	}
}

// Location resolves the achievements timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.Achievements.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Achievements.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".eduquiz/state.json"
	}
	return dir + "/eduquiz/state.json"
}
