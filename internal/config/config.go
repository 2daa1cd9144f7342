package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	GitHub  GitHubConfig  `mapstructure:"github" yaml:"github"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// GitHubConfig contains settings for the GitHub API and archive source
type GitHubConfig struct {
	APIURL         string        `mapstructure:"api_url" yaml:"api_url"`
	ArchiveURL     string        `mapstructure:"archive_url" yaml:"archive_url"`
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	LookupTimeout  time.Duration `mapstructure:"lookup_timeout" yaml:"lookup_timeout"`
	FallbackBranch string        `mapstructure:"fallback_branch" yaml:"fallback_branch"`
	MaxArchiveSize string        `mapstructure:"max_archive_size" yaml:"max_archive_size"`
	RemoteLookup   bool          `mapstructure:"remote_lookup" yaml:"remote_lookup"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadHeaderTimeout < time.Second {
		c.Server.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.Server.WriteTimeout < time.Second {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.IdleTimeout < time.Second {
		c.Server.IdleTimeout = DefaultIdleTimeout
	}
	if c.Server.ShutdownTimeout < time.Second {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if c.GitHub.Timeout < time.Second {
		c.GitHub.Timeout = DefaultGitHubTimeout
	}
	// each default branch lookup gets its own budget, never longer than the
	// archive download's
	if c.GitHub.LookupTimeout <= 0 {
		c.GitHub.LookupTimeout = DefaultLookupTimeout
	}
	if c.GitHub.LookupTimeout > c.GitHub.Timeout {
		c.GitHub.LookupTimeout = c.GitHub.Timeout
	}
	if strings.TrimSpace(c.GitHub.UserAgent) == "" {
		c.GitHub.UserAgent = DefaultUserAgent()
	}
	c.GitHub.FallbackBranch = strings.Trim(c.GitHub.FallbackBranch, "/ ")
	if c.GitHub.FallbackBranch == "" {
		c.GitHub.FallbackBranch = DefaultFallbackBranch
	}
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = DefaultAPIURL
	}
	if c.GitHub.ArchiveURL == "" {
		c.GitHub.ArchiveURL = DefaultArchiveURL
	}
	for name, raw := range map[string]string{
		"github.api_url":     c.GitHub.APIURL,
		"github.archive_url": c.GitHub.ArchiveURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s: %q", name, raw)
		}
	}
	if !strings.HasSuffix(c.GitHub.APIURL, "/") {
		c.GitHub.APIURL += "/"
	}
	c.GitHub.ArchiveURL = strings.TrimSuffix(c.GitHub.ArchiveURL, "/")

	if c.GitHub.MaxArchiveSize == "" {
		c.GitHub.MaxArchiveSize = DefaultMaxArchiveSize
	} else if _, err := ParseSize(c.GitHub.MaxArchiveSize); err != nil {
		return fmt.Errorf("invalid github.max_archive_size: %w", err)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	return nil
}

// MaxArchiveBytes returns the parsed archive size cap
func (c *Config) MaxArchiveBytes() int64 {
	n, err := ParseSize(c.GitHub.MaxArchiveSize)
	if err != nil || n <= 0 {
		n, _ = ParseSize(DefaultMaxArchiveSize)
	}
	return n
}

func ParseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	var multiplier int64 = 1
	if strings.HasSuffix(s, "GB") {
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "GB")
	} else if strings.HasSuffix(s, "MB") {
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "MB")
	} else if strings.HasSuffix(s, "KB") {
		multiplier = 1024
		s = strings.TrimSuffix(s, "KB")
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("no numeric value in size string")
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value: %w", err)
	}

	if n < 0 {
		return 0, fmt.Errorf("negative size not allowed")
	}

	return n * multiplier, nil
}
