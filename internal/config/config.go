// Package config loads daemon settings from defaults, an optional YAML file and BUZZ_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure returned by Load.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config covers process level configuration.
type Config struct {
	Environment     string        `yaml:"environment"`
	LogLevel        string        `yaml:"log_level"`
	HTTPAddr        string        `yaml:"http_addr"`
	DataDir         string        `yaml:"data_dir"`
	StoreBackend    string        `yaml:"store_backend"` // file, sqlite or memory
	SQLitePath      string        `yaml:"sqlite_path"`
	PlayerCommand   []string      `yaml:"player_command"`
	Volume          float64       `yaml:"volume"`
	TickInterval    time.Duration `yaml:"tick_interval"`
	MaxUploadSizeMB int           `yaml:"max_upload_size_mb"`
	Latitude        float64       `yaml:"latitude"`
	Longitude       float64       `yaml:"longitude"`
	SeedTimes       []string      `yaml:"seed_times"` // added on startup when the store is empty
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Environment:     "production",
		LogLevel:        "info",
		HTTPAddr:        "127.0.0.1:8787",
		DataDir:         defaultDataDir(),
		StoreBackend:    "file",
		PlayerCommand:   []string{"aplay", "-q"},
		Volume:          1,
		TickInterval:    time.Second,
		MaxUploadSizeMB: 10,
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}

// Load reads path (if not empty), then applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Environment = getEnv("BUZZ_ENV", cfg.Environment)
	cfg.LogLevel = getEnv("BUZZ_LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPAddr = getEnv("BUZZ_HTTP_ADDR", cfg.HTTPAddr)
	cfg.DataDir = getEnv("BUZZ_DATA_DIR", cfg.DataDir)
	cfg.StoreBackend = getEnv("BUZZ_STORE_BACKEND", cfg.StoreBackend)
	cfg.SQLitePath = getEnv("BUZZ_SQLITE_PATH", cfg.SQLitePath)
	cfg.PlayerCommand = getEnvFields("BUZZ_PLAYER_COMMAND", cfg.PlayerCommand)
	cfg.Volume = getEnvFloat("BUZZ_VOLUME", cfg.Volume)
	cfg.TickInterval = getEnvDuration("BUZZ_TICK_INTERVAL", cfg.TickInterval)
	cfg.MaxUploadSizeMB = getEnvInt("BUZZ_MAX_UPLOAD_SIZE_MB", cfg.MaxUploadSizeMB)
	cfg.Latitude = getEnvFloat("BUZZ_LATITUDE", cfg.Latitude)
	cfg.Longitude = getEnvFloat("BUZZ_LONGITUDE", cfg.Longitude)
	cfg.SeedTimes = getEnvFields("BUZZ_SEED_TIMES", cfg.SeedTimes)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case "file", "sqlite", "memory":
	default:
		errs = append(errs, fmt.Errorf("unsupported store backend %q", c.StoreBackend))
	}
	if c.Volume < 0 || c.Volume > 1 {
		errs = append(errs, fmt.Errorf("volume must be between 0 and 1, got %v", c.Volume))
	}
	if c.TickInterval <= 0 || c.TickInterval > time.Second {
		errs = append(errs, fmt.Errorf("tick interval must be in (0, 1s], got %s", c.TickInterval))
	}
	if len(c.PlayerCommand) == 0 {
		errs = append(errs, errors.New("player command must not be empty"))
	}
	if c.MaxUploadSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadSizeMB))
	}
	if c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		errs = append(errs, fmt.Errorf("invalid coordinates %v,%v", c.Latitude, c.Longitude))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// HasLocation reports whether coordinates were configured for sunrise and sunset times.
func (c *Config) HasLocation() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

// MaxUploadSizeBytes returns the configured upload limit in bytes.
func (c *Config) MaxUploadSizeBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvFields splits the value on whitespace and commas.
func getEnvFields(key string, def []string) []string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return strings.FieldsFunc(val, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
