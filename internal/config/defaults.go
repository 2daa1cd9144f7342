package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/repozip/pkg/version"
)

// Default values
const (
	// Server defaults
	DefaultAddr              = ":8080"
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultWriteTimeout      = 5 * time.Minute
	DefaultIdleTimeout       = 2 * time.Minute
	DefaultShutdownTimeout   = 15 * time.Second

	// GitHub defaults
	DefaultAPIURL         = "https://api.github.com/"
	DefaultArchiveURL     = "https://github.com"
	DefaultGitHubTimeout  = 60 * time.Second
	DefaultLookupTimeout  = 10 * time.Second
	DefaultFallbackBranch = "main"
	DefaultMaxArchiveSize = "512MB"
	DefaultRemoteLookup   = true

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// DefaultUserAgent returns the User-Agent sent to GitHub. GitHub rejects
// requests without one.
func DefaultUserAgent() string {
	return version.UserAgent()
}

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".repozip"
	}
	return filepath.Join(home, ".repozip")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              DefaultAddr,
			ReadHeaderTimeout: DefaultReadHeaderTimeout,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       DefaultIdleTimeout,
			ShutdownTimeout:   DefaultShutdownTimeout,
		},
		GitHub: GitHubConfig{
			APIURL:         DefaultAPIURL,
			ArchiveURL:     DefaultArchiveURL,
			UserAgent:      DefaultUserAgent(),
			Timeout:        DefaultGitHubTimeout,
			LookupTimeout:  DefaultLookupTimeout,
			FallbackBranch: DefaultFallbackBranch,
			MaxArchiveSize: DefaultMaxArchiveSize,
			RemoteLookup:   DefaultRemoteLookup,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
