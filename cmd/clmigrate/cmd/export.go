package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dbsmedya/clmigrate/internal/careerleaf"
	"github.com/dbsmedya/clmigrate/internal/config"
	"github.com/dbsmedya/clmigrate/internal/exporter"
	"github.com/dbsmedya/clmigrate/internal/pager"
)

// overrideSaveDir applies a --save-dir flag to the named resource.
func overrideSaveDir(cfg *config.Config, name, dir string) {
	if dir == "" {
		return
	}
	if rc, ok := cfg.Resource(name); ok {
		rc.SaveDir = dir
	}
}

// exportResource saves every record of the named resource ("employers",
// "jobseekers") into its save directory.
func exportResource(parent context.Context, cfg *config.Config, name string, force bool, out io.Writer) error {
	resource, err := careerleaf.ParseResource(name)
	if err != nil {
		return err
	}
	rc, ok := cfg.Resource(name)
	if !ok {
		return fmt.Errorf("no settings for %s", name)
	}

	return runJob(parent, cfg, name, name+" export", force, func(ctx context.Context, s *session) error {
		store, err := exporter.NewStore(rc.SaveDir)
		if err != nil {
			return err
		}

		opts := pager.Options{
			StartPage:              cfg.Pagination.StartPage,
			MaxConsecutiveFailures: cfg.Pagination.MaxConsecutiveFailures,
			Logger:                 s.log,
		}
		var (
			m     exporter.Materializer
			title string
		)
		switch resource {
		case careerleaf.Employers:
			// one employer per page, so the limit bounds the pages as well
			opts.PageLimit = rc.ImportLimit
			m = exporter.NewEmployers(store, s.log)
			title = "Employer Export Complete"
		default:
			m = exporter.NewJobseekers(store, s.client, rc.SaveProfileData, s.log)
			title = "Job Seeker Export Complete"
		}

		start := time.Now()
		it := pager.New(s.client, s.client.ListURL(resource, cfg.Remote.PageSize), opts)
		stats, err := exporter.New(it, m, s.log, rc.ImportLimit).Run(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				s.log.Warn("export cancelled by user")
				return nil
			}
			return fmt.Errorf("export failed: %w", err)
		}

		exportSummary(title, s.runID, store.Dir(), stats, time.Since(start)).render(out)
		return nil
	})
}
