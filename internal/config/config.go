// Package config holds the client settings: built in defaults, optionally
// overlaid by a YAML file, then by flags and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/roomzy/internal/apiclient"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the resolved client configuration.
type Config struct {
	APIURL    string        `yaml:"apiUrl"`
	Timeout   time.Duration `yaml:"timeout"`
	StateDir  string        `yaml:"stateDir"`
	LoginPath string        `yaml:"loginPath"`
	Tracing   bool          `yaml:"tracing"`
	Cache     CacheConfig   `yaml:"cache"`
}

// CacheConfig controls the private HTTP cache for GET requests.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Default returns the built in configuration.
func Default() Config {
	return Config{
		APIURL:    apiclient.DefaultBaseURL,
		Timeout:   apiclient.DefaultTimeout,
		LoginPath: apiclient.DefaultLoginPath,
	}
}

// Load returns the defaults overlaid with the YAML file at path. Keys absent
// from the file keep their default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return cfg, nil
}

// Overrides are values given on the command line or in the environment.
// Zero values leave the config untouched.
type Overrides struct {
	APIURL   string
	Timeout  time.Duration
	StateDir string
	Tracing  bool
	Cache    bool
	CacheDir string
}

// Apply overlays o onto c.
func (c *Config) Apply(o Overrides) {
	if o.APIURL != "" {
		c.APIURL = o.APIURL
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.StateDir != "" {
		c.StateDir = o.StateDir
	}
	if o.Tracing {
		c.Tracing = true
	}
	if o.Cache {
		c.Cache.Enabled = true
	}
	if o.CacheDir != "" {
		c.Cache.Enabled = true
		c.Cache.Dir = o.CacheDir
	}
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api url %q must be an absolute URL", ErrInvalidConfig, c.APIURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: api url scheme must be http or https", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Client returns the API client configuration.
func (c Config) Client() apiclient.Config {
	cfg := apiclient.DefaultConfig()
	cfg.BaseURL = c.APIURL
	cfg.Timeout = c.Timeout
	cfg.EnableCache = c.Cache.Enabled
	cfg.CacheDir = c.Cache.Dir
	cfg.Tracing = c.Tracing
	if c.LoginPath != "" {
		cfg.LoginPath = c.LoginPath
	}
	return cfg
}
