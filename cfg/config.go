package cfg

import (
	"flag"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog/log"
)

// HTTPConfiguration controls the HTTP listener and routing
type HTTPConfiguration struct {
	BindAddress string `toml:"bind_address"`
	Port        int    `toml:"port"`
	URLPrefix   string `toml:"url_prefix"` // Console is mounted under /<url_prefix>
	EnableCORS  bool   `toml:"enable_cors"`
}

// DatabaseConfiguration holds the optional pre-configured database file
type DatabaseConfiguration struct {
	Path string `toml:"path"` // Auto-connect target; empty means start disconnected
}

// QueryConfiguration controls query execution limits and write gating
type QueryConfiguration struct {
	MaxResults      int  `toml:"max_results"`       // Cap for non-paginated SELECTs and per_page
	DefaultPageSize int  `toml:"default_page_size"` // per_page when a paginated request omits it
	AllowWrite      bool `toml:"allow_write"`       // Mutations are rejected unless set
}

// AuthConfiguration holds optional basic-auth credentials for the console page.
// The gate is active only when both fields are non-empty.
type AuthConfiguration struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// LoggingConfiguration controls logging behavior
type LoggingConfiguration struct {
	Verbose bool   `toml:"verbose"`
	Format  string `toml:"format"` // "console" or "json"
}

// PrometheusConfiguration for metrics
type PrometheusConfiguration struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Metrics handler mount point on the main mux
}

// Configuration is the main configuration structure. It is constructed once
// in main and handed by pointer to every component that needs it.
type Configuration struct {
	HTTP       HTTPConfiguration       `toml:"http"`
	Database   DatabaseConfiguration   `toml:"database"`
	Query      QueryConfiguration      `toml:"query"`
	Auth       AuthConfiguration       `toml:"auth"`
	Logging    LoggingConfiguration    `toml:"logging"`
	Prometheus PrometheusConfiguration `toml:"prometheus"`
}

// Command line flags
var (
	ConfigPathFlag = flag.String("config", "config.toml", "Path to configuration file")
	DBPathFlag     = flag.String("db", "", "SQLite database file to auto-connect (overrides config)")
	PortFlag       = flag.Int("port", 0, "HTTP port (overrides config)")
	AllowWriteFlag = flag.Bool("allow-write", false, "Allow write queries (overrides config when set)")
)

// Default returns the default configuration
func Default() *Configuration {
	return &Configuration{
		HTTP: HTTPConfiguration{
			BindAddress: "0.0.0.0",
			Port:        8080,
			URLPrefix:   "opus",
			EnableCORS:  true,
		},
		Query: QueryConfiguration{
			MaxResults:      1000,
			DefaultPageSize: 50,
			AllowWrite:      false,
		},
		Logging: LoggingConfiguration{
			Verbose: false,
			Format:  "console",
		},
		Prometheus: PrometheusConfiguration{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load loads configuration from file and applies CLI overrides
func Load(configPath string) (*Configuration, error) {
	config := Default()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			log.Info().Str("path", configPath).Msg("Loading configuration")
			if _, err := toml.DecodeFile(configPath, config); err != nil {
				return nil, fmt.Errorf("failed to decode config: %w", err)
			}
		} else {
			log.Warn().Str("path", configPath).Msg("Config file not found, using defaults")
		}
	}

	// Apply CLI overrides
	if *DBPathFlag != "" {
		config.Database.Path = *DBPathFlag
	}
	if *PortFlag != 0 {
		config.HTTP.Port = *PortFlag
	}
	if *AllowWriteFlag {
		config.Query.AllowWrite = true
	}

	return config, nil
}

// Validate checks the configuration for invalid values
func (c *Configuration) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.URLPrefix == "" {
		return fmt.Errorf("http url_prefix is required")
	}
	if c.Query.MaxResults < 1 {
		return fmt.Errorf("query max_results must be positive, got %d", c.Query.MaxResults)
	}
	if c.Query.DefaultPageSize < 1 {
		return fmt.Errorf("query default_page_size must be positive, got %d", c.Query.DefaultPageSize)
	}
	if c.Query.DefaultPageSize > c.Query.MaxResults {
		return fmt.Errorf("query default_page_size (%d) cannot exceed max_results (%d)",
			c.Query.DefaultPageSize, c.Query.MaxResults)
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return fmt.Errorf("logging format must be \"console\" or \"json\", got %q", c.Logging.Format)
	}
	if c.Prometheus.Enabled && c.Prometheus.Path == "" {
		return fmt.Errorf("prometheus path is required when metrics are enabled")
	}
	return nil
}

// AuthEnabled reports whether the console page requires basic auth.
// Partial credentials are treated as no credentials: open or fully gated only.
func (c *Configuration) AuthEnabled() bool {
	return c.Auth.Username != "" && c.Auth.Password != ""
}
