package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.Remote.URL = expandEnvVar(cfg.Remote.URL)
	cfg.Remote.APIKey = expandEnvVar(cfg.Remote.APIKey)
	cfg.Remote.APISecret = expandEnvVar(cfg.Remote.APISecret)
	cfg.Remote.KeyringAccount = expandEnvVar(cfg.Remote.KeyringAccount)

	cfg.Employers.File = expandEnvVar(cfg.Employers.File)
	cfg.Employers.SaveDir = expandEnvVar(cfg.Employers.SaveDir)
	cfg.Jobseekers.SaveDir = expandEnvVar(cfg.Jobseekers.SaveDir)

	cfg.FailureStore.Host = expandEnvVar(cfg.FailureStore.Host)
	cfg.FailureStore.User = expandEnvVar(cfg.FailureStore.User)
	cfg.FailureStore.Password = expandEnvVar(cfg.FailureStore.Password)
	cfg.FailureStore.Database = expandEnvVar(cfg.FailureStore.Database)

	cfg.Lock.Path = expandEnvVar(cfg.Lock.Path)
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
	cfg.Logging.FailureOutput = expandEnvVar(cfg.Logging.FailureOutput)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied; limit applies to both resources.
func (c *Config) ApplyOverrides(logLevel, logFormat, baseURL string, limit int) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if baseURL != "" {
		c.Remote.URL = baseURL
	}
	if limit > 0 {
		c.Employers.ImportLimit = limit
		c.Jobseekers.ImportLimit = limit
	}
}
