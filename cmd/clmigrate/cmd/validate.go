package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/clmigrate/internal/careerleaf"
	"github.com/dbsmedya/clmigrate/internal/config"
	"github.com/dbsmedya/clmigrate/internal/database"
	"github.com/dbsmedya/clmigrate/internal/logger"
	"github.com/dbsmedya/clmigrate/internal/secrets"
	"github.com/dbsmedya/clmigrate/internal/sqlutil"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and check connectivity",
	Long: `Validate checks the configuration file and the services it points to.

Checks performed:
  - Configuration syntax and required fields
  - API secret available (config or OS keychain)
  - CareerLeaf reachable and credentials accepted
  - Employer export file readable, when configured
  - Failure store reachable, when enabled

Example:
  clmigrate validate --config clmigrate.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return validateEnvironment(ctx, cfg, log, cmd.OutOrStdout())
}

func validateEnvironment(ctx context.Context, cfg *config.Config, log *logger.Logger, out io.Writer) error {
	log.Info("Starting validation checks...")

	fmt.Fprintf(out, "\n=== Configuration Validation ===\n")
	fmt.Fprintf(out, "Config file: %s\n", GetConfigFile())
	fmt.Fprintf(out, "CareerLeaf: %s\n\n", cfg.Remote.URL)

	hasErrors := false
	check := func(name string, err error) {
		if err != nil {
			fmt.Fprintf(out, "❌ %s: %v\n", name, err)
			hasErrors = true
			return
		}
		fmt.Fprintf(out, "✅ %s\n", name)
	}

	secret, err := secrets.APISecret(cfg.Remote)
	check("API secret", err)
	if err == nil {
		client := careerleaf.NewClient(cfg.Remote,
			careerleaf.Credentials{APIKey: cfg.Remote.APIKey, APISecret: secret}, log)
		pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		check("CareerLeaf API", client.Ping(pingCtx))
		cancel()
	}

	if cfg.Employers.File != "" {
		check("Employer export file", fileReadable(cfg.Employers.File))
	}

	if cfg.FailureStore.Enabled {
		_, err := sqlutil.QuoteTable(cfg.FailureStore.Table)
		check("Failure store table name", err)

		db := database.NewManager(&cfg.FailureStore)
		err = db.Connect(ctx)
		if err == nil {
			err = db.Ping(ctx)
			db.Close()
		}
		check("Failure store", err)
	}

	fmt.Fprintln(out)
	if hasErrors {
		return fmt.Errorf("validation failed")
	}

	fmt.Fprintln(out, "=== Validation Complete ===")
	fmt.Fprintln(out, "✅ Configuration validated successfully")
	return nil
}

func fileReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
