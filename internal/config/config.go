// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"time"
)

// Default configuration values.
const (
	DefaultHost       = "0.0.0.0"
	DefaultPort       = 8080
	DefaultLogLevel   = "INFO"
	DefaultRepoPath   = "/repo"
	DefaultChunkSize  = 2000
	DefaultGitTimeout = 30 * time.Second
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// AppConfig holds the main application configuration.
type AppConfig struct {
	host           string
	port           int
	repoPath       string
	chunkSize      int
	gitTimeout     time.Duration
	fetchOnCompare bool
	logLevel       string
	logFormat      LogFormat
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		host:           DefaultHost,
		port:           DefaultPort,
		repoPath:       DefaultRepoPath,
		chunkSize:      DefaultChunkSize,
		gitTimeout:     DefaultGitTimeout,
		fetchOnCompare: true,
		logLevel:       DefaultLogLevel,
		logFormat:      LogFormatPretty,
	}
}

// Host returns the HTTP transport host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the HTTP transport port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// RepoPath returns the git repository root path.
func (c AppConfig) RepoPath() string { return c.repoPath }

// ChunkSize returns the maximum diff chunk length in bytes.
func (c AppConfig) ChunkSize() int { return c.chunkSize }

// GitTimeout returns the time budget for each git subprocess.
func (c AppConfig) GitTimeout() time.Duration { return c.gitTimeout }

// FetchOnCompare returns whether comparison operations refresh
// remote-tracking data first.
func (c AppConfig) FetchOnCompare() bool { return c.fetchOnCompare }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// Validate checks the configuration before any subprocess is spawned.
func (c AppConfig) Validate() error {
	if c.chunkSize <= 0 {
		return fmt.Errorf("invalid configuration: chunk size must be positive, got %d", c.chunkSize)
	}
	if c.gitTimeout <= 0 {
		return fmt.Errorf("invalid configuration: git timeout must be positive, got %s", c.gitTimeout)
	}
	if c.repoPath == "" {
		return fmt.Errorf("invalid configuration: repository path must not be empty")
	}
	return nil
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the HTTP transport host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the HTTP transport port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithRepoPath sets the repository root path.
func WithRepoPath(path string) AppConfigOption {
	return func(c *AppConfig) { c.repoPath = path }
}

// WithChunkSize sets the maximum diff chunk length.
func WithChunkSize(n int) AppConfigOption {
	return func(c *AppConfig) { c.chunkSize = n }
}

// WithGitTimeout sets the git subprocess time budget.
func WithGitTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) { c.gitTimeout = d }
}

// WithFetchOnCompare sets whether comparisons refresh remotes first.
func WithFetchOnCompare(fetch bool) AppConfigOption {
	return func(c *AppConfig) { c.fetchOnCompare = fetch }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("repo_path", c.repoPath),
		slog.Int("chunk_size", c.chunkSize),
		slog.Duration("git_timeout", c.gitTimeout),
		slog.Bool("fetch_on_compare", c.fetchOnCompare),
		slog.String("log_level", c.logLevel),
		slog.String("log_format", string(c.logFormat)),
	}
}
