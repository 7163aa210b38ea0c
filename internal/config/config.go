// Package config loads the server configuration from a YAML file, applies
// WW_* environment overrides and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vector76/wordwall/internal/store"
)

// Config is the server configuration.
type Config struct {
	Port   int    `yaml:"port"`
	Secret string `yaml:"secret"`

	// SecureCookies marks the CSRF cookie Secure; enable behind HTTPS.
	SecureCookies bool `yaml:"secure_cookies"`

	// MaxBodyBytes caps request bodies on the mutating routes.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	Intro string `yaml:"intro"`

	Store StoreConfig `yaml:"store"`
	Limit LimitConfig `yaml:"rate_limit"`
	Cloud CloudConfig `yaml:"cloud"`
	Log   LogConfig   `yaml:"log"`
}

// StoreConfig selects the comment store backend.
type StoreConfig struct {
	Backend  string `yaml:"backend"`
	DataFile string `yaml:"data_file"`
}

// LimitConfig holds per-IP requests per minute; 0 disables a limit.
type LimitConfig struct {
	Create int `yaml:"create"`
	Like   int `yaml:"like"`
}

// CloudConfig holds the default canvas and layout settings.
type CloudConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Padding    float64 `yaml:"padding"`
	FontFamily string  `yaml:"font_family"`
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:         9999,
		MaxBodyBytes: 16 << 20,
		Store: StoreConfig{Backend: store.BackendJSON, DataFile: "comments.json"},
		Limit: LimitConfig{Create: 5, Like: 10},
		Cloud: CloudConfig{Width: 800, Height: 600, Padding: 5, FontFamily: "Arial"},
		Log:   LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from WW_* variables.
func (c *Config) applyEnv(getenv func(string) string) error {
	setInt := func(key string, dst *int) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	for key, dst := range map[string]*int{
		"WW_PORT":         &c.Port,
		"WW_CREATE_LIMIT": &c.Limit.Create,
		"WW_LIKE_LIMIT":   &c.Limit.Like,
		"WW_CLOUD_WIDTH":  &c.Cloud.Width,
		"WW_CLOUD_HEIGHT": &c.Cloud.Height,
	} {
		if err := setInt(key, dst); err != nil {
			return err
		}
	}
	setString("WW_SECRET", &c.Secret)
	setString("WW_STORE", &c.Store.Backend)
	setString("WW_DATA_FILE", &c.Store.DataFile)
	setString("WW_LOG_LEVEL", &c.Log.Level)
	setString("WW_LOG_FORMAT", &c.Log.Format)
	if v := getenv("WW_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid WW_MAX_BODY_BYTES %q: %w", v, err)
		}
		c.MaxBodyBytes = n
	}
	if v := getenv("WW_SECURE_COOKIES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid WW_SECURE_COOKIES %q: %w", v, err)
		}
		c.SecureCookies = b
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	switch c.Store.Backend {
	case store.BackendJSON, store.BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Store.DataFile == "" {
		errs = append(errs, errors.New("store data_file must not be empty"))
	}
	if c.MaxBodyBytes < 1 {
		errs = append(errs, fmt.Errorf("max_body_bytes %d must be positive", c.MaxBodyBytes))
	}
	if c.Limit.Create < 0 || c.Limit.Like < 0 {
		errs = append(errs, errors.New("rate limits must not be negative"))
	}
	if c.Cloud.Width < 1 || c.Cloud.Height < 1 {
		errs = append(errs, fmt.Errorf("cloud size %dx%d must be positive", c.Cloud.Width, c.Cloud.Height))
	}
	if c.Cloud.Padding < 0 {
		errs = append(errs, errors.New("cloud padding must not be negative"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
