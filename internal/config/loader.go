package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file, environment, and defaults
// Uses the global viper instance to access CLI flag bindings
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration into the given viper instance
func LoadFrom(v *viper.Viper) (*Config, error) {
	// Set defaults
	setDefaults(v)

	// SetConfigName clears a file set with SetConfigFile, so the search
	// paths are only configured when no explicit file was given
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Environment variables (REPOZIP_*)
	v.SetEnvPrefix("REPOZIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate and apply defaults for invalid values
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.read_header_timeout", DefaultReadHeaderTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.idle_timeout", DefaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	// GitHub defaults
	v.SetDefault("github.api_url", DefaultAPIURL)
	v.SetDefault("github.archive_url", DefaultArchiveURL)
	v.SetDefault("github.user_agent", DefaultUserAgent())
	v.SetDefault("github.timeout", DefaultGitHubTimeout)
	v.SetDefault("github.lookup_timeout", DefaultLookupTimeout)
	v.SetDefault("github.fallback_branch", DefaultFallbackBranch)
	v.SetDefault("github.max_archive_size", DefaultMaxArchiveSize)
	v.SetDefault("github.remote_lookup", DefaultRemoteLookup)

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
