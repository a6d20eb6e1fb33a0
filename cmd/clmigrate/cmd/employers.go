package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/clmigrate/internal/config"
	"github.com/dbsmedya/clmigrate/internal/importer"
	"github.com/dbsmedya/clmigrate/internal/source"
)

var (
	employersFile    string
	employersDryRun  bool
	employersSaveDir string
	employersForce   bool
)

var employersCmd = &cobra.Command{
	Use:   "employers <import|export>",
	Short: "Import employers from the XML export or export them from CareerLeaf",
	Long: `Employers moves employer records in either direction.

import reads the legacy XML export, groups the contact rows of each
employer and creates every employer CareerLeaf does not have yet
(matched on old_id). Rejected records go to the failure log.

export saves every CareerLeaf employer as <name>_<id>data.json in the
save directory. Employers already saved are skipped.

Example:
  clmigrate employers import --config clmigrate.yaml --file employers.xml
  clmigrate employers export --save-dir export/employers`,
	Args: cobra.ExactArgs(1),
	RunE: runEmployers,
}

func init() {
	employersCmd.Flags().StringVarP(&employersFile, "file", "f", "",
		"Override employers.file (legacy XML export, import only)")
	employersCmd.Flags().BoolVar(&employersDryRun, "dry-run", false,
		"Derive every payload but do not submit anything (import only)")
	employersCmd.Flags().StringVar(&employersSaveDir, "save-dir", "",
		"Override employers.save_dir (export only)")
	employersCmd.Flags().BoolVar(&employersForce, "force", false,
		"Run even if the run lock is held (use with caution)")

	rootCmd.AddCommand(employersCmd)
}

func runEmployers(cmd *cobra.Command, args []string) error {
	action := args[0]
	if action != "import" && action != "export" {
		unsupportedAction(cmd.ErrOrStderr(), action)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if employersFile != "" {
		cfg.Employers.File = employersFile
	}
	overrideSaveDir(cfg, cmd.Name(), employersSaveDir)

	if action == "import" {
		return importEmployers(cmd.Context(), cfg, employersDryRun, employersForce, cmd.OutOrStdout())
	}
	return exportResource(cmd.Context(), cfg, cmd.Name(), employersForce, cmd.OutOrStdout())
}

func unsupportedAction(w io.Writer, action string) {
	fmt.Fprintf(w, "ERROR: unsupported action: %s\n", action)
}

func importEmployers(parent context.Context, cfg *config.Config, dryRun, force bool, out io.Writer) error {
	if cfg.Employers.File == "" {
		return fmt.Errorf("employers.file is required for import (set it in the config or use --file)")
	}

	return runJob(parent, cfg, "employers", "employers import", force, func(ctx context.Context, s *session) error {
		start := time.Now()
		s.log.Infow("starting employer import", "file", cfg.Employers.File, "dry_run", dryRun)

		nodes, err := source.ReadFile(cfg.Employers.File)
		if err != nil {
			return err
		}
		grouped := source.GroupUsers(nodes)
		s.log.Infow("read export", "nodes", len(nodes), "employers", grouped.Len())

		existing, err := s.client.ExistingIDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to load existing employers: %w", err)
		}

		rec, err := s.failureRecorder(ctx)
		if err != nil {
			return err
		}

		im := importer.New(s.client, rec, s.log, importer.Options{
			Limit:  cfg.Employers.ImportLimit,
			DryRun: dryRun,
		})
		stats, err := im.Run(ctx, grouped, existing)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				s.log.Warn("import cancelled by user")
				return nil
			}
			return fmt.Errorf("import failed: %w", err)
		}

		importSummary(s.runID, cfg.Employers.File, stats, dryRun, time.Since(start)).render(out)
		return nil
	})
}
