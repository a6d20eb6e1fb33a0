package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
	limit     int
	baseURL   string
)

var rootCmd = &cobra.Command{
	Use:   "clmigrate",
	Short: "CareerLeaf employer and job seeker migration",
	Long: `clmigrate moves employer records from a legacy XML export into a
CareerLeaf installation and exports employers and job seekers from
CareerLeaf to local JSON documents and files.

Features:
  - Skips employers the platform already has (matched on old_id)
  - Records rejected payloads and platform responses in a failure log
  - Re-runnable exports: records already on disk are not fetched again
  - Run lock against concurrent runs of the same job`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "clmigrate.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Processing overrides
	rootCmd.PersistentFlags().IntVar(&limit, "limit", 0,
		"Override import_limit for the selected resource")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "",
		"Override the CareerLeaf base URL")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel  string
	LogFormat string
	Limit     int
	BaseURL   string
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:  logLevel,
		LogFormat: logFormat,
		Limit:     limit,
		BaseURL:   baseURL,
	}
}
