package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/clmigrate/internal/config"
)

var initConfigForce bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a configuration file with default values",
	Long: `Init-config writes the default configuration as YAML, ready to be
edited. The path defaults to the --config value.

Example:
  clmigrate init-config clmigrate.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInitConfig,
}

func init() {
	initConfigCmd.Flags().BoolVar(&initConfigForce, "force", false,
		"Overwrite an existing file (the old one is kept as .bak)")

	rootCmd.AddCommand(initConfigCmd)
}

func runInitConfig(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !initConfigForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	cfg.Remote.URL = "https://example.careerleaf.com"
	cfg.Remote.APIKey = "${CLMIGRATE_API_KEY}"
	cfg.Remote.APISecret = "${CLMIGRATE_API_SECRET}"
	cfg.Employers.File = "employers.xml"

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}
