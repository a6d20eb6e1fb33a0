// Package pager turns a cursor-paginated listing into a lazy sequence of
// result batches.
//
// The listing envelope is {"results": [...], "next": <url|null>}. An
// Iterator follows "next" until it is absent or a page limit is reached. A
// page that cannot be fetched or decoded is counted and not followed: when
// the current URL carries a "page" query parameter it is rewritten to the
// internal page counter, which can drop one page worth of records; otherwise
// the same URL is requested again. MaxConsecutiveFailures bounds both.
package pager

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strconv"

	"github.com/dbsmedya/clmigrate/internal/logger"
)

// Fetcher retrieves the raw body for a listing URL. Implementations carry
// authentication headers; a non-success status must be returned as an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Page is one decoded listing page.
type Page struct {
	Results []json.RawMessage `json:"results"`
	Next    *string           `json:"next"`
}

// NextURL returns the cursor, or "" on the final page.
func (p Page) NextURL() string {
	if p.Next == nil {
		return ""
	}
	return *p.Next
}

// Options controls iteration.
type Options struct {
	// PageLimit stops iteration once the page counter exceeds it. 0 means no limit.
	PageLimit int
	// StartPage is the initial counter value. The counter is incremented
	// before every request.
	StartPage int
	// MaxConsecutiveFailures ends iteration after that many failed pages in a
	// row. 0 means unlimited.
	MaxConsecutiveFailures int
	Logger                 *logger.Logger
}

// Stats describes an iteration so far.
type Stats struct {
	Requests    int
	Pages       int // pages yielded
	FailedPages int
}

// Iterator is a forward-only, single-consumer page sequence. It is not safe
// for concurrent use and cannot be rewound; build a new one to start over.
type Iterator struct {
	fetcher     Fetcher
	url         string
	opts        Options
	log         *logger.Logger
	counter     int
	consecutive int
	done        bool
	err         error
	stats       Stats
}

// New creates an Iterator starting at startURL.
func New(f Fetcher, startURL string, opts Options) *Iterator {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Iterator{
		fetcher: f,
		url:     startURL,
		opts:    opts,
		log:     log,
		counter: opts.StartPage,
	}
}

// Next fetches the next page. It returns false once the sequence is
// exhausted or the context is cancelled; Err reports the latter.
func (it *Iterator) Next(ctx context.Context) (Page, bool) {
	for !it.done {
		if err := ctx.Err(); err != nil {
			it.err = err
			it.finish()
			return Page{}, false
		}

		it.counter++
		it.stats.Requests++

		page, err := it.fetch(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				it.err = ctxErr
				it.finish()
				return Page{}, false
			}
			it.log.Errorw("cannot parse page", "url", it.url, "error", err)
			it.stats.FailedPages++
			it.consecutive++
			if max := it.opts.MaxConsecutiveFailures; max > 0 && it.consecutive >= max {
				it.log.Warnw("giving up after consecutive page failures", "failures", it.consecutive)
				it.finish()
				return Page{}, false
			}
			it.url = withPage(it.url, it.counter)
			continue
		}
		it.consecutive = 0
		it.stats.Pages++

		if it.opts.PageLimit > 0 && it.counter > it.opts.PageLimit {
			it.finish()
			return page, true
		}

		next := page.NextURL()
		if next == "" {
			it.finish()
			return page, true
		}
		it.url = resolve(it.url, next)
		return page, true
	}
	return Page{}, false
}

// All returns the remaining pages as a range-over-func sequence.
func (it *Iterator) All(ctx context.Context) iter.Seq[Page] {
	return func(yield func(Page) bool) {
		for {
			page, ok := it.Next(ctx)
			if !ok || !yield(page) {
				return
			}
		}
	}
}

// Err returns the context error that ended iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Stats returns counters for the iteration so far.
func (it *Iterator) Stats() Stats {
	return it.stats
}

func (it *Iterator) fetch(ctx context.Context) (Page, error) {
	body, err := it.fetcher.Fetch(ctx, it.url)
	if err != nil {
		return Page{}, err
	}
	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return Page{}, fmt.Errorf("decode page: %w", err)
	}
	if page.Results == nil {
		return Page{}, fmt.Errorf("decode page: missing results")
	}
	return page, nil
}

func (it *Iterator) finish() {
	if it.done {
		return
	}
	it.done = true
	it.log.Debugw("completed listing",
		"pages", it.stats.Pages,
		"failed_pages", it.stats.FailedPages,
	)
}

// withPage replaces an existing page query parameter. A URL without one
// is returned unchanged so the request is retried.
func withPage(raw string, page int) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if !q.Has("page") {
		return raw
	}
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// resolve makes a relative cursor absolute against the current URL.
func resolve(current, next string) string {
	base, err := url.Parse(current)
	if err != nil {
		return next
	}
	ref, err := url.Parse(next)
	if err != nil {
		return next
	}
	return base.ResolveReference(ref).String()
}
