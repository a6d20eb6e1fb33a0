package cmd

import (
	"github.com/spf13/cobra"
)

var (
	jobseekersSaveDir string
	jobseekersForce   bool
)

var jobseekersCmd = &cobra.Command{
	Use:   "jobseekers <export>",
	Short: "Export job seekers with their photos and resumes",
	Long: `Export saves every CareerLeaf candidate into the save directory:

  <id>_<first>_<last>_data.json         the candidate document
  <id>_<first>_<last>_photo.<ext>       profile photo, when there is one
  <id>_<first>_<last>_resume-auto.pdf   the generated resume
  <id>_<first>_<last>_resume-<file>     every uploaded resume

A candidate whose resume-auto.pdf already exists is skipped.

Example:
  clmigrate jobseekers export --config clmigrate.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runJobseekers,
}

func init() {
	jobseekersCmd.Flags().StringVar(&jobseekersSaveDir, "save-dir", "",
		"Override jobseekers.save_dir")
	jobseekersCmd.Flags().BoolVar(&jobseekersForce, "force", false,
		"Run even if the run lock is held (use with caution)")

	rootCmd.AddCommand(jobseekersCmd)
}

func runJobseekers(cmd *cobra.Command, args []string) error {
	if args[0] != "export" {
		unsupportedAction(cmd.ErrOrStderr(), args[0])
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	overrideSaveDir(cfg, cmd.Name(), jobseekersSaveDir)
	return exportResource(cmd.Context(), cfg, cmd.Name(), jobseekersForce, cmd.OutOrStdout())
}
