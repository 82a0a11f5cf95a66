package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
type EnvConfig struct {
	// Host is the HTTP transport host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the HTTP transport port to listen on.
	// Env: PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// RepoPath is the git repository root path.
	// Env: REPO_PATH (default: /repo)
	RepoPath string `envconfig:"REPO_PATH" default:"/repo"`

	// ChunkSize is the maximum diff chunk length in bytes.
	// Env: CHUNK_SIZE (default: 2000)
	ChunkSize int `envconfig:"CHUNK_SIZE" default:"2000"`

	// GitTimeout is the git subprocess time budget in seconds.
	// Env: GIT_TIMEOUT (default: 30)
	GitTimeout float64 `envconfig:"GIT_TIMEOUT" default:"30"`

	// FetchOnCompare controls whether comparisons refresh remotes first.
	// Env: FETCH_ON_COMPARE (default: true)
	FetchOnCompare bool `envconfig:"FETCH_ON_COMPARE" default:"true"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "DIFFSCOPE" would require DIFFSCOPE_REPO_PATH
// instead of REPO_PATH.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = cfg.Apply(WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = cfg.Apply(WithPort(e.Port))
	}
	if e.RepoPath != "" {
		cfg = cfg.Apply(WithRepoPath(e.RepoPath))
	}
	if e.ChunkSize != 0 {
		cfg = cfg.Apply(WithChunkSize(e.ChunkSize))
	}
	if e.GitTimeout != 0 {
		cfg = cfg.Apply(WithGitTimeout(time.Duration(e.GitTimeout * float64(time.Second))))
	}
	cfg = cfg.Apply(WithFetchOnCompare(e.FetchOnCompare))
	if e.LogLevel != "" {
		cfg = cfg.Apply(WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = cfg.Apply(WithLogFormat(parseLogFormat(e.LogFormat)))
	}

	return cfg
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
