package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string        `yaml:"port"`
	DBDSN       string        `yaml:"db_dsn"`
	LogFile     string        `yaml:"log_file"`
	LogLevel    string        `yaml:"log_level"`
	DeviceDir   string        `yaml:"device_dir"`
	BackendURL  string        `yaml:"backend_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
}

// Load resolves the config from CONFIG_FILE (if set) and the environment.
// Environment variables win over the file.
func Load() Config {
	cfg, err := LoadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Printf("[warn] %v", err)
	}
	return cfg
}

// LoadFile reads an optional YAML file, then applies env overrides and
// defaults. A missing or malformed file is reported but still yields a
// usable config.
func LoadFile(path string) (Config, error) {
	var cfg Config
	var ferr error
	if path != "" {
		if b, err := os.ReadFile(path); err != nil {
			ferr = fmt.Errorf("config: read %s: %w", path, err)
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			ferr = fmt.Errorf("config: parse %s: %w", path, err)
			cfg = Config{}
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port, "8080")
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN, "fandomia.db") // sqlite file in working dir
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile, "")
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel, "info")
	cfg.DeviceDir = getEnv("DEVICE_DIR", cfg.DeviceDir, defaultDeviceDir())
	cfg.BackendURL = getEnv("BACKEND_URL", cfg.BackendURL, "http://127.0.0.1:8080")

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}

	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s LOG_LEVEL=%s DEVICE_DIR=%s BACKEND_URL=%s",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.LogLevel, cfg.DeviceDir, cfg.BackendURL)
	return cfg, ferr
}

func getEnv(key, fromFile, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if fromFile != "" {
		return fromFile
	}
	return def
}

func defaultDeviceDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "fandomia"
	}
	return ".fandomia"
}
