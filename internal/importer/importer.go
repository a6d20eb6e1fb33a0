// Package importer pushes records from the legacy export to the platform,
// skipping those the platform already has.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbsmedya/clmigrate/internal/careerleaf"
	"github.com/dbsmedya/clmigrate/internal/failures"
	"github.com/dbsmedya/clmigrate/internal/logger"
	"github.com/dbsmedya/clmigrate/internal/source"
	"github.com/dbsmedya/clmigrate/internal/types"
)

var (
	// ErrMalformedID aborts a run when a record id is not an integer.
	ErrMalformedID = errors.New("malformed record id")
	// ErrDuplicateID aborts a run when the same id is seen twice.
	ErrDuplicateID = errors.New("record id already processed in this run")
)

// progressEvery is how often, in attempted records, progress is logged.
const progressEvery = 10

// Creator submits one record to the platform.
type Creator interface {
	Create(ctx context.Context, r careerleaf.Resource, record interface{}) (careerleaf.CreateResult, error)
}

// Source yields grouped employer records in import order.
type Source interface {
	Items() []source.Item
}

// Options tune a run.
type Options struct {
	// Limit stops the run once more than Limit records were attempted.
	// Skipped records do not count. 0 means no limit.
	Limit int
	// DryRun derives every payload but never calls the platform.
	DryRun bool
}

// Importer runs the employer import.
type Importer struct {
	client   Creator
	failures failures.Recorder
	logger   *logger.Logger
	opts     Options
}

// New creates an Importer.
func New(client Creator, rec failures.Recorder, log *logger.Logger, opts Options) *Importer {
	if rec == nil {
		rec = failures.Nop{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Importer{
		client:   client,
		failures: rec,
		logger:   log,
		opts:     opts,
	}
}

// Run imports every item of src whose id is not in existing.
//
// Malformed and duplicate ids abort the run with the stats gathered so far.
// Records that cannot be derived or are rejected by the platform are handed
// to the failure recorder and the run continues.
func (im *Importer) Run(ctx context.Context, src Source, existing careerleaf.IDSet) (types.RunStats, error) {
	var stats types.RunStats
	processed := make(map[int64]struct{})

	im.logger.Debugw("starting import", "limit", im.opts.Limit, "dry_run", im.opts.DryRun, "existing", len(existing))

	for _, item := range src.Items() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		id, err := source.NodeID(item.Node)
		if err != nil {
			return stats, fmt.Errorf("%w: %v", ErrMalformedID, err)
		}

		if existing.Has(id) {
			im.logger.Debugw("skipping existing record", "old_id", id)
			stats.Skipped++
			stats.Total++
			continue
		}

		if _, seen := processed[id]; seen {
			return stats, fmt.Errorf("%w: %d", ErrDuplicateID, id)
		}
		processed[id] = struct{}{}

		if im.importOne(ctx, item, id) {
			stats.Success++
		} else {
			stats.Failed++
		}
		stats.Total++

		attempted := stats.Attempted()
		if im.opts.Limit > 0 && attempted > im.opts.Limit {
			im.logger.Infow("reached the limit, stopping", "limit", im.opts.Limit)
			break
		}
		if attempted%progressEvery == 0 {
			im.logger.Infow("processing record", "attempted", attempted)
		}
	}

	im.logger.Info(stats.String())
	return stats, nil
}

func (im *Importer) importOne(ctx context.Context, item source.Item, id int64) bool {
	emp, err := source.DeriveEmployer(item.Node, id, item.Contacts)
	if err != nil {
		im.record(ctx, failures.Failure{
			Kind:     failures.KindData,
			Identity: source.RecordIdentity(item.Node),
			OldID:    id,
			Err:      err,
		})
		return false
	}

	if im.opts.DryRun {
		im.logger.Debugw("dry run, not submitting", "old_id", id, "name", emp.Name, "users", len(emp.Users))
		return true
	}

	res, err := im.client.Create(ctx, careerleaf.Employers, emp)
	if err != nil {
		im.logger.Infow("failed for record", "name", emp.Name, "error", err)
		kind := failures.KindTransport
		if errors.Is(err, careerleaf.ErrEncodeRecord) {
			kind = failures.KindData
		}
		im.record(ctx, failures.Failure{
			Kind:     kind,
			Identity: "name=" + emp.Name,
			OldID:    id,
			Payload:  res.Payload,
			Err:      err,
		})
		return false
	}
	if !res.OK {
		im.logger.Infow("failed for record", "name", emp.Name, "status_code", res.StatusCode)
		im.record(ctx, failures.Failure{
			Kind:       failures.KindRejected,
			Identity:   "name=" + emp.Name,
			OldID:      id,
			StatusCode: res.StatusCode,
			Payload:    res.Payload,
			Response:   res.Body,
		})
		return false
	}

	im.logger.Infow("successful for record", "name", emp.Name)
	return true
}

func (im *Importer) record(ctx context.Context, f failures.Failure) {
	f.Resource = string(careerleaf.Employers)
	if err := im.failures.Record(ctx, f); err != nil {
		im.logger.Warnw("failed to record failure", "old_id", f.OldID, "error", err)
	}
}
