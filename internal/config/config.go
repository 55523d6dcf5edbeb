// Package config builds the server configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	envstruct "code.cloudfoundry.org/go-envstruct"
	"gopkg.in/yaml.v3"

	"github.com/bf4stats/api/pkg/gametools"
)

// DefaultAddr matches the API URL the web frontend uses when none is configured.
const DefaultAddr = ":8001"

// Config holds the server settings.
type Config struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	UpstreamBaseURL string        `yaml:"upstream_base_url" env:"GAMETOOLS_BASE_URL"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout" env:"GAMETOOLS_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:            DefaultAddr,
		UpstreamBaseURL: gametools.DefaultBaseURL,
		UpstreamTimeout: gametools.DefaultTimeout,
		AllowedOrigins:  []string{"*"},
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped when
// path is empty) and then with environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := envstruct.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("loading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every required setting is usable.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr must not be empty")
	}
	if c.UpstreamBaseURL == "" {
		return errors.New("config: upstream_base_url must not be empty")
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("config: upstream_timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("config: shutdown_timeout must be positive")
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("config: allowed_origins must not be empty")
	}
	return nil
}
