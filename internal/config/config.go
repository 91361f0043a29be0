// Package config loads projecthub settings from YAML, .env files, the
// environment and command-line overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jeanhaley32/projecthub/internal/constants"
)

// Config is the resolved configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Log     LogConfig     `yaml:"log"`
	Preview PreviewConfig `yaml:"preview"`
	Export  ExportConfig  `yaml:"export"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PreviewConfig struct {
	Addr string `yaml:"addr"`
	// ControlURL points --headless at an already running browser.
	ControlURL string `yaml:"control_url"`
}

type ExportConfig struct {
	Dest string `yaml:"dest"`
}

// Overrides carries command-line values. Empty fields are ignored.
type Overrides struct {
	BaseURL  string
	LogLevel string
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: constants.DefaultAPIBase,
			Timeout: constants.DefaultRequestTimeout,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Preview: PreviewConfig{
			Addr: constants.DefaultPreviewAddr,
		},
	}
}

// Load resolves the config file for explicitPath and cwd, then applies
// .env files from cwd, environment variables and overrides.
func Load(explicitPath, cwd string, o Overrides) (*Config, error) {
	resolver, err := NewPathResolver()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	path, exists := resolver.ResolveConfigPath(explicitPath, cwd)
	switch {
	case exists:
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	case explicitPath != "":
		return nil, &ConfigNotFoundError{Path: explicitPath}
	}

	if err := loadDotEnv(cwd); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.apply(o)

	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	c.Source = path
	return nil
}

// loadDotEnv loads .env.local then .env. godotenv never overrides a
// variable that is already set, so .env.local wins over .env and the real
// environment wins over both.
func loadDotEnv(cwd string) error {
	for _, name := range []string{".env.local", ".env"} {
		p := filepath.Join(cwd, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(constants.EnvPrefix + "API_BASE"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(constants.EnvPrefix + "TOKEN"); v != "" {
		c.API.Token = v
	}
	if v := os.Getenv(constants.EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(constants.EnvPrefix + "LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv(constants.EnvPrefix + "PREVIEW_ADDR"); v != "" {
		c.Preview.Addr = v
	}
	if v := os.Getenv(constants.EnvPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT %q: %w", constants.EnvPrefix, v, err)
		}
		c.API.Timeout = d
	}
	return nil
}

func (c *Config) apply(o Overrides) {
	if o.BaseURL != "" {
		c.API.BaseURL = o.BaseURL
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api base URL is empty")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api timeout must not be negative, got %s", c.API.Timeout)
	}
	return nil
}
