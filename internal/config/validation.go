package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dbsmedya/clmigrate/internal/sqlutil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateRemote()...)
	errors = append(errors, c.validateResource("employers", &c.Employers)...)
	errors = append(errors, c.validateResource("jobseekers", &c.Jobseekers)...)
	errors = append(errors, c.validatePagination()...)

	if c.FailureStore.Enabled {
		errors = append(errors, c.validateFailureStore()...)
	}

	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateRemote() ValidationErrors {
	var errors ValidationErrors

	if c.Remote.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "remote.url",
			Message: "url is required",
		})
	} else if u, err := url.Parse(c.Remote.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "remote.url",
			Message: "url must be an absolute http(s) URL",
		})
	}

	if c.Remote.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "remote.api_key",
			Message: "api_key is required",
		})
	}

	if c.Remote.APISecret == "" && c.Remote.KeyringAccount == "" {
		errors = append(errors, ValidationError{
			Field:   "remote.api_secret",
			Message: "api_secret or keyring_account is required",
		})
	}

	if c.Remote.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "remote.timeout_seconds",
			Message: "timeout_seconds cannot be negative",
		})
	}

	if c.Remote.RequestsPerSecond < 0 {
		errors = append(errors, ValidationError{
			Field:   "remote.requests_per_second",
			Message: "requests_per_second cannot be negative",
		})
	}

	if c.Remote.PageSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "remote.page_size",
			Message: "page_size must be positive",
		})
	}

	if c.Remote.QuickListPageSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "remote.quick_list_page_size",
			Message: "quick_list_page_size must be positive",
		})
	}

	return errors
}

func (c *Config) validateResource(prefix string, r *ResourceConfig) ValidationErrors {
	var errors ValidationErrors

	if r.SaveDir == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".save_dir",
			Message: "save_dir is required",
		})
	}

	if r.ImportLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".import_limit",
			Message: "import_limit cannot be negative",
		})
	}

	return errors
}

func (c *Config) validatePagination() ValidationErrors {
	var errors ValidationErrors

	if c.Pagination.StartPage < 0 {
		errors = append(errors, ValidationError{
			Field:   "pagination.start_page",
			Message: "start_page cannot be negative",
		})
	}

	if c.Pagination.MaxConsecutiveFailures < 0 {
		errors = append(errors, ValidationError{
			Field:   "pagination.max_consecutive_failures",
			Message: "max_consecutive_failures cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateFailureStore() ValidationErrors {
	var errors ValidationErrors
	fs := &c.FailureStore

	if fs.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "failure_store.host",
			Message: "host is required when failure_store is enabled",
		})
	}

	if fs.Port <= 0 || fs.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "failure_store.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if fs.User == "" {
		errors = append(errors, ValidationError{
			Field:   "failure_store.user",
			Message: "user is required when failure_store is enabled",
		})
	}

	if fs.Database == "" {
		errors = append(errors, ValidationError{
			Field:   "failure_store.database",
			Message: "database name is required when failure_store is enabled",
		})
	}

	if fs.Table == "" {
		errors = append(errors, ValidationError{
			Field:   "failure_store.table",
			Message: "table is required when failure_store is enabled",
		})
	} else if _, err := sqlutil.QuoteTable(fs.Table); err != nil {
		errors = append(errors, ValidationError{
			Field:   "failure_store.table",
			Message: err.Error(),
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[fs.TLS] {
		errors = append(errors, ValidationError{
			Field:   "failure_store.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
