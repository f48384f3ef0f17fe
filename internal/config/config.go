package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Identity struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
	} `yaml:"identity"`
	Secret struct {
		// EncryptionKey obfuscates the cached identity id. Supplied at
		// deploy time; QUIZHUB_ENCRYPTION_KEY overrides the file value.
		EncryptionKey string `yaml:"encryption_key"`
	} `yaml:"secret"`
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
	} `yaml:"quiz"`
	Leaderboard struct {
		RefreshInterval string `yaml:"refresh_interval"`
	} `yaml:"leaderboard"`
	Local struct {
		// Path of the JSON file backing the local key-value store
		// (cached identity blob, theme preference).
		Path string `yaml:"path"`
	} `yaml:"local"`
}

// Load reads YAML config from path. A .env file next to the process, if any,
// is folded into the environment first; selected env vars override the file.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUIZHUB_ENCRYPTION_KEY"); v != "" {
		cfg.Secret.EncryptionKey = v
	}
	if v := os.Getenv("QUIZHUB_POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("QUIZHUB_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("QUIZHUB_IDENTITY_URL"); v != "" {
		cfg.Identity.BaseURL = v
	}
	if v := os.Getenv("QUIZHUB_IDENTITY_API_KEY"); v != "" {
		cfg.Identity.APIKey = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty or invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
