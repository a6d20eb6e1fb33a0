package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Remote.URL = "https://acme.careerleaf.com"
	cfg.Remote.APIKey = "key"
	cfg.Remote.APISecret = "secret"
	return cfg
}

func TestValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}

func TestSecretFromKeyringAccountIsEnough(t *testing.T) {
	cfg := validConfig()
	cfg.Remote.APISecret = ""
	cfg.Remote.KeyringAccount = "clmigrate:acme"

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected keyring account to satisfy secret requirement, got: %v", err)
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing url", func(c *Config) { c.Remote.URL = "" }, "remote.url"},
		{"relative url", func(c *Config) { c.Remote.URL = "acme.careerleaf.com" }, "remote.url"},
		{"missing api key", func(c *Config) { c.Remote.APIKey = "" }, "remote.api_key"},
		{"missing secret", func(c *Config) { c.Remote.APISecret = "" }, "remote.api_secret"},
		{"negative timeout", func(c *Config) { c.Remote.TimeoutSeconds = -1 }, "remote.timeout_seconds"},
		{"negative rate", func(c *Config) { c.Remote.RequestsPerSecond = -2 }, "remote.requests_per_second"},
		{"zero page size", func(c *Config) { c.Remote.PageSize = 0 }, "remote.page_size"},
		{"zero quick list page size", func(c *Config) { c.Remote.QuickListPageSize = 0 }, "remote.quick_list_page_size"},
		{"missing save dir", func(c *Config) { c.Jobseekers.SaveDir = "" }, "jobseekers.save_dir"},
		{"negative limit", func(c *Config) { c.Employers.ImportLimit = -1 }, "employers.import_limit"},
		{"negative start page", func(c *Config) { c.Pagination.StartPage = -1 }, "pagination.start_page"},
		{"negative failures", func(c *Config) { c.Pagination.MaxConsecutiveFailures = -1 }, "pagination.max_consecutive_failures"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error for %s", tt.field)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("expected error to mention %q, got: %v", tt.field, err)
			}
		})
	}
}

func TestFailureStoreValidatedOnlyWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.FailureStore.Host = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled failure store must not be validated, got: %v", err)
	}

	cfg.FailureStore.Enabled = true
	cfg.FailureStore.TLS = "sometimes"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors for enabled failure store")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}

	fields := make(map[string]bool)
	for _, e := range verrs {
		fields[e.Field] = true
	}
	for _, want := range []string{"failure_store.host", "failure_store.user", "failure_store.database", "failure_store.tls"} {
		if !fields[want] {
			t.Errorf("expected error for %s, got: %v", want, err)
		}
	}
}

func TestValidationErrorsFormatting(t *testing.T) {
	var empty ValidationErrors
	if empty.Error() != "" {
		t.Errorf("expected empty string for no errors, got %q", empty.Error())
	}

	errs := ValidationErrors{
		{Field: "remote.url", Message: "url is required"},
		{Field: "remote.api_key", Message: "api_key is required"},
	}
	msg := errs.Error()
	if !strings.HasPrefix(msg, "validation failed:") {
		t.Errorf("unexpected prefix: %q", msg)
	}
	if !strings.Contains(msg, "remote.url: url is required") || !strings.Contains(msg, "remote.api_key: api_key is required") {
		t.Errorf("expected both errors in message, got %q", msg)
	}
}

func TestFailureStoreTableName(t *testing.T) {
	cfg := validConfig()
	cfg.FailureStore = FailureStoreConfig{
		Enabled:  true,
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Database: "migration",
		Table:    "import_failure; DROP TABLE x",
	}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "failure_store.table") {
		t.Fatalf("expected failure_store.table error, got: %v", err)
	}

	cfg.FailureStore.Table = "migration.import_failure"
	if err := cfg.Validate(); err != nil {
		t.Errorf("qualified table name should be valid, got: %v", err)
	}
}
