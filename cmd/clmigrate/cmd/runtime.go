package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dbsmedya/clmigrate/internal/careerleaf"
	"github.com/dbsmedya/clmigrate/internal/config"
	"github.com/dbsmedya/clmigrate/internal/database"
	"github.com/dbsmedya/clmigrate/internal/failures"
	"github.com/dbsmedya/clmigrate/internal/lock"
	"github.com/dbsmedya/clmigrate/internal/logger"
	"github.com/dbsmedya/clmigrate/internal/secrets"
)

// loadConfig reads the config file, applies flag overrides and validates.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat, overrides.BaseURL, overrides.Limit)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// session holds what a single import or export run needs.
type session struct {
	cfg    *config.Config
	runID  string
	log    *logger.Logger
	client *careerleaf.Client
	db     *database.Manager
}

// runJob runs fn for job ("employers import", ...) under the job's run lock,
// or without it when force is set. fn receives a context cancelled by
// SIGINT/SIGTERM and a session that is closed when fn returns.
func runJob(parent context.Context, cfg *config.Config, resource, job string, force bool, fn func(context.Context, *session) error) error {
	if parent == nil {
		parent = context.Background()
	}

	run := func() error {
		s, err := newSession(cfg, resource, job)
		if err != nil {
			return err
		}
		defer s.Close()
		if force {
			s.log.Warnw("skipping run lock acquisition (--force flag used)", "job", job)
		}

		ctx, cancel := signalContext(parent, s.log)
		defer cancel()
		return fn(ctx, s)
	}
	if force {
		return run()
	}

	runLock := lock.NewJobLock(cfg.Lock.Path, job)
	err := runLock.WithLock(parent, lock.TimeoutShort, run)
	if errors.Is(err, lock.ErrLockHeld) {
		return fmt.Errorf("'%s' is already running (use --force to override)", job)
	}
	return err
}

// newSession builds the logger and client for job.
func newSession(cfg *config.Config, resource, job string) (*session, error) {
	base, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s := &session{cfg: cfg, runID: uuid.NewString()}
	s.log = base.WithResource(resource).WithRun(s.runID).WithFields(map[string]interface{}{
		"job":    job,
		"config": GetConfigFile(),
	})

	secret, err := secrets.APISecret(cfg.Remote)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.client = careerleaf.NewClient(cfg.Remote,
		careerleaf.Credentials{APIKey: cfg.Remote.APIKey, APISecret: secret},
		s.log,
		careerleaf.WithPagination(cfg.Pagination),
	)
	return s, nil
}

// failureRecorder returns the failure log recorder, fanned out to the MySQL
// failure store when one is enabled.
func (s *session) failureRecorder(ctx context.Context) (failures.Recorder, error) {
	logRec := failures.NewLogRecorder(s.log.Failures())
	if !s.cfg.FailureStore.Enabled {
		return logRec, nil
	}

	s.db = database.NewManager(&s.cfg.FailureStore)
	if err := s.db.Connect(ctx); err != nil {
		return nil, err
	}
	sqlRec, err := failures.NewSQLRecorder(s.db.DB, s.cfg.FailureStore.Table, s.runID)
	if err != nil {
		return nil, err
	}
	if err := sqlRec.EnsureTable(ctx); err != nil {
		return nil, err
	}
	s.log.Infow("recording failures to MySQL", "table", s.cfg.FailureStore.Table)
	return failures.Multi{logRec, sqlRec}, nil
}

// Close closes connections and flushes the logs.
func (s *session) Close() {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warnw("failed to close failure store", "error", err)
		}
	}
	_ = s.log.Sync()
}
