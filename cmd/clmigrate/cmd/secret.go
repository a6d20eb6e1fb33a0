package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/clmigrate/internal/config"
	"github.com/dbsmedya/clmigrate/internal/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret <set|delete>",
	Short: "Store the API secret in the OS keychain",
	Long: `Secret manages the CareerLeaf API secret in the OS keychain so it
does not have to live in the configuration file.

set reads the secret from standard input. The keychain account is
remote.keyring_account, or one derived from the API key and host.

Example:
  echo -n "$SECRET" | clmigrate secret set`,
	Args: cobra.ExactArgs(1),
	RunE: runSecret,
}

func init() {
	rootCmd.AddCommand(secretCmd)
}

func runSecret(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	account := cfg.Remote.KeyringAccount
	if account == "" {
		account = secrets.DefaultAccount(cfg.Remote)
	}

	switch args[0] {
	case "set":
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read secret from stdin: %w", err)
		}
		if err := secrets.SetAPISecret(account, strings.TrimSpace(line)); err != nil {
			return err
		}
		cmd.Printf("Stored API secret for %s\n", account)
	case "delete":
		if err := secrets.DeleteAPISecret(account); err != nil {
			return err
		}
		cmd.Printf("Deleted API secret for %s\n", account)
	default:
		unsupportedAction(cmd.ErrOrStderr(), args[0])
		return nil
	}

	if cfg.Remote.KeyringAccount == "" {
		cmd.Printf("Set remote.keyring_account: %q to use it\n", account)
	}
	return nil
}
