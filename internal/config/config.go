// Package config provides configuration structures and loading for clmigrate.
package config

// Config represents the complete application configuration.
type Config struct {
	Remote       RemoteConfig       `yaml:"remote" mapstructure:"remote"`
	Employers    ResourceConfig     `yaml:"employers" mapstructure:"employers"`
	Jobseekers   ResourceConfig     `yaml:"jobseekers" mapstructure:"jobseekers"`
	Pagination   PaginationConfig   `yaml:"pagination" mapstructure:"pagination"`
	FailureStore FailureStoreConfig `yaml:"failure_store" mapstructure:"failure_store"`
	Lock         LockConfig         `yaml:"lock" mapstructure:"lock"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

// RemoteConfig describes the CareerLeaf platform and how to talk to it.
type RemoteConfig struct {
	URL                string  `yaml:"url" mapstructure:"url"`
	APIKey             string  `yaml:"api_key" mapstructure:"api_key"`
	APISecret          string  `yaml:"api_secret" mapstructure:"api_secret"`
	KeyringAccount     string  `yaml:"keyring_account" mapstructure:"keyring_account"` // used when api_secret is empty
	TimeoutSeconds     int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"` // 0 disables the timeout
	InsecureSkipVerify bool    `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
	RequestsPerSecond  float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables pacing
	PageSize           int     `yaml:"page_size" mapstructure:"page_size"`
	QuickListPageSize  int     `yaml:"quick_list_page_size" mapstructure:"quick_list_page_size"`
}

// ResourceConfig holds the per-resource (employers, jobseekers) settings.
type ResourceConfig struct {
	File            string `yaml:"file,omitempty" mapstructure:"file"` // legacy XML export, import only
	SaveDir         string `yaml:"save_dir" mapstructure:"save_dir"`
	SaveProfileData bool   `yaml:"save_profile_data" mapstructure:"save_profile_data"`
	ImportLimit     int    `yaml:"import_limit" mapstructure:"import_limit"` // 0 means unbounded
}

// PaginationConfig tunes the page iterator.
type PaginationConfig struct {
	StartPage              int `yaml:"start_page" mapstructure:"start_page"`
	MaxConsecutiveFailures int `yaml:"max_consecutive_failures" mapstructure:"max_consecutive_failures"` // 0 means unlimited
}

// FailureStoreConfig represents the optional MySQL table receiving failed records.
type FailureStoreConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Database string `yaml:"database" mapstructure:"database"`
	Table    string `yaml:"table" mapstructure:"table"`
	TLS      string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
}

// LockConfig represents the run lock file.
type LockConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level         string `yaml:"level" mapstructure:"level"`                   // debug, info, warn, error
	Format        string `yaml:"format" mapstructure:"format"`                 // json or text
	Output        string `yaml:"output" mapstructure:"output"`                 // stdout, stderr, or file path
	FailureOutput string `yaml:"failure_output" mapstructure:"failure_output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Remote: RemoteConfig{
			TimeoutSeconds:    60,
			PageSize:          1,
			QuickListPageSize: 250,
		},
		Employers: ResourceConfig{
			SaveDir:         "export/employers",
			SaveProfileData: true,
		},
		Jobseekers: ResourceConfig{
			SaveDir:         "export/jobseekers",
			SaveProfileData: true,
		},
		Pagination: PaginationConfig{
			StartPage:              1,
			MaxConsecutiveFailures: 25,
		},
		FailureStore: FailureStoreConfig{
			Enabled: false,
			Port:    3306,
			Table:   "import_failure",
			TLS:     "preferred",
		},
		Lock: LockConfig{
			Path: "clmigrate.lock",
		},
		Logging: LoggingConfig{
			Level:         "info",
			Format:        "text",
			Output:        "stdout",
			FailureOutput: "import_failures.log",
		},
	}
}

// Resource returns the settings block for a named resource.
func (c *Config) Resource(name string) (*ResourceConfig, bool) {
	switch name {
	case "employers":
		return &c.Employers, true
	case "jobseekers":
		return &c.Jobseekers, true
	}
	return nil, false
}
