// Package exporter saves platform records as JSON documents and asset files.
//
// An export walks a paginated listing and hands every record to a
// Materializer, which decides the file names and writes them through a
// Store. Each record has a sentinel file; when it exists the record is
// skipped, so re-running an export only fetches what is missing.
package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"

	"github.com/dbsmedya/clmigrate/internal/logger"
	"github.com/dbsmedya/clmigrate/internal/pager"
	"github.com/dbsmedya/clmigrate/internal/types"
)

var (
	// ErrBadRecord marks a record that cannot be decoded.
	ErrBadRecord = errors.New("record cannot be decoded")
	// ErrNotWritten marks a record whose document could not be written.
	ErrNotWritten = errors.New("record not written")
)

// recordError reports whether err concerns a single record only.
func recordError(err error) bool {
	return errors.Is(err, ErrBadRecord) || errors.Is(err, ErrNotWritten)
}

// notWritten wraps a per-record write error. Errors affecting the whole save
// directory are returned unchanged.
func notWritten(err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrNotWritten, err)
}

// PageSource is the listing being exported. *pager.Iterator satisfies it.
type PageSource interface {
	All(ctx context.Context) iter.Seq[pager.Page]
	Err() error
	Stats() pager.Stats
}

// Outcome is what a Materializer did with one record.
type Outcome struct {
	Prefix        string
	Saved         bool // false when the sentinel already existed
	Assets        int
	AssetFailures int
}

// Materializer writes one record.
type Materializer interface {
	Save(ctx context.Context, raw json.RawMessage) (Outcome, error)
}

// Exporter runs one export.
type Exporter struct {
	pages  PageSource
	m      Materializer
	logger *logger.Logger
	limit  int
}

// New creates an Exporter. limit stops the run once that many records were
// saved; 0 means no limit.
func New(pages PageSource, m Materializer, log *logger.Logger, limit int) *Exporter {
	if log == nil {
		log = logger.NewNop()
	}
	return &Exporter{pages: pages, m: m, logger: log, limit: limit}
}

// Run exports every record of the listing.
func (e *Exporter) Run(ctx context.Context) (types.ExportStats, error) {
	var stats types.ExportStats
	e.logger.Debugw("starting export", "limit", e.limit)

	stop := false
	for page := range e.pages.All(ctx) {
		for _, raw := range page.Results {
			if e.limit > 0 && stats.Saved >= e.limit {
				e.logger.Debug("reached limit")
				stop = true
				break
			}
			stats.Seen++

			out, err := e.m.Save(ctx, raw)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return e.finish(stats), ctxErr
				}
				if !recordError(err) {
					return e.finish(stats), err
				}
				e.logger.Errorw("cannot export record", "error", err)
				stats.Failed++
				continue
			}

			stats.AssetsDownloaded += out.Assets
			stats.AssetFailures += out.AssetFailures
			if !out.Saved {
				e.logger.Debugw("already saved, skipping", "prefix", out.Prefix)
				stats.Skipped++
				continue
			}
			stats.Saved++
		}
		if stop {
			break
		}
	}

	stats = e.finish(stats)
	if err := e.pages.Err(); err != nil {
		return stats, err
	}
	e.logger.Infow("completed export", "saved", stats.Saved, "skipped", stats.Skipped, "failed_pages", stats.FailedPages)
	return stats, nil
}

func (e *Exporter) finish(stats types.ExportStats) types.ExportStats {
	stats.FailedPages = e.pages.Stats().FailedPages
	return stats
}
