// Package careerleaf is a thin client for the CareerLeaf applicant-tracking
// REST API: paginated listing, record creation and asset download.
package careerleaf

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dbsmedya/clmigrate/internal/config"
	"github.com/dbsmedya/clmigrate/internal/logger"
	"github.com/dbsmedya/clmigrate/internal/pager"
	"github.com/dbsmedya/clmigrate/internal/types"
)

// maxErrorBody bounds how much of an error response is kept for the failure log.
const maxErrorBody = 64 << 10

// Credentials authenticate every request.
type Credentials struct {
	APIKey    string
	APISecret string
}

// Header returns the value of the Authentication header.
func (c Credentials) Header() string {
	return fmt.Sprintf("CL %s/%s", c.APIKey, c.APISecret)
}

// Client talks to one CareerLeaf installation.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	limiter    *rate.Limiter
	pagination config.PaginationConfig
	quickSize  int
	logger     *logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithPagination sets how the client's own listings (the quick-list) are paged.
func WithPagination(p config.PaginationConfig) Option {
	return func(c *Client) {
		c.pagination = p
	}
}

// NewClient creates a client from the remote configuration. TLS and timeout
// settings apply to this client's transport only.
func NewClient(cfg config.RemoteConfig, creds Credentials, log *logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.NewNop()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in for self-signed staging hosts
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		pagination: config.PaginationConfig{StartPage: 1},
		quickSize:  cfg.QuickListPageSize,
		logger:     log,
	}
	if c.quickSize <= 0 {
		c.quickSize = 250
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the platform root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListURL returns the first-page URL of a resource listing.
func (c *Client) ListURL(r Resource, pageSize int) string {
	return fmt.Sprintf("%s%s?page_size=%d", c.baseURL, r.Path(), pageSize)
}

// QuickListURL returns the first-page URL of the lightweight employer listing.
func (c *Client) QuickListURL(pageSize int) string {
	return fmt.Sprintf("%s%s?page_size=%d", c.baseURL, quickListPath, pageSize)
}

// Fetch performs an authenticated GET and returns the body of a 200 response.
// It satisfies pager.Fetcher.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url, nil, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(url, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	return body, nil
}

// ExistingIDs pages through the quick-list and returns every non-empty
// old_id. A value that cannot be coerced to an integer is an error.
func (c *Client) ExistingIDs(ctx context.Context) (IDSet, error) {
	it := pager.New(c, c.QuickListURL(c.quickSize), pager.Options{
		StartPage:              c.pagination.StartPage,
		MaxConsecutiveFailures: c.pagination.MaxConsecutiveFailures,
		Logger:                 c.logger,
	})

	ids := make(IDSet)
	for page := range it.All(ctx) {
		for _, raw := range page.Results {
			var item struct {
				OldID json.RawMessage `json:"old_id"`
			}
			if err := json.Unmarshal(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to decode quick-list item: %w", err)
			}
			id, ok, err := oldID(item.OldID)
			if err != nil {
				return nil, err
			}
			if ok {
				ids[id] = struct{}{}
			}
		}
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	if failed := it.Stats().FailedPages; failed > 0 {
		c.logger.Warnw("existing id scan skipped pages; some duplicates may not be detected",
			"failed_pages", failed)
	}
	c.logger.Debugw("loaded existing ids", "count", len(ids))
	return ids, nil
}

// oldID treats null, "", 0 and false as absent.
func oldID(raw json.RawMessage) (int64, bool, error) {
	if len(raw) == 0 {
		return 0, false, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return 0, false, fmt.Errorf("failed to decode old_id: %w", err)
	}
	switch x := v.(type) {
	case nil:
		return 0, false, nil
	case bool:
		if !x {
			return 0, false, nil
		}
	case string:
		if x == "" {
			return 0, false, nil
		}
	case json.Number:
		if f, err := x.Float64(); err == nil && f == 0 {
			return 0, false, nil
		}
	}
	id, err := types.ToInt64(v)
	if err != nil {
		return 0, false, fmt.Errorf("invalid old_id %s: %w", string(raw), err)
	}
	return id, true, nil
}

// CreateResult describes the platform's answer to a create request.
// Payload is the request body that was sent.
type CreateResult struct {
	OK         bool
	StatusCode int
	Payload    []byte
	Body       []byte
}

// Create submits one record. OK is set only for 200 and 201; any other
// status is returned in the result, not as an error. Errors are transport
// failures, which still carry Payload, or ErrEncodeRecord.
func (c *Client) Create(ctx context.Context, r Resource, record interface{}) (CreateResult, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return CreateResult{}, fmt.Errorf("%w: %v", ErrEncodeRecord, err)
	}

	url := c.baseURL + r.Path()
	resp, err := c.do(ctx, http.MethodPost, url, bytes.NewReader(payload), true)
	if err != nil {
		return CreateResult{Payload: payload}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	result := CreateResult{
		OK:         resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated,
		StatusCode: resp.StatusCode,
		Payload:    payload,
		Body:       body,
	}
	if !result.OK {
		c.logger.Infow("create rejected", "resource", r, "status_code", resp.StatusCode)
	}
	return result, nil
}

// Update is not supported by this tool.
func (c *Client) Update(ctx context.Context, r Resource, id int64, record interface{}) (CreateResult, error) {
	return CreateResult{}, fmt.Errorf("%s %d: %w", r, id, ErrUpdateNotImplemented)
}

// Download is an open asset stream. Callers must close Body.
type Download struct {
	ContentType string
	Body        io.ReadCloser
}

// Extension guesses a file extension from the content type, e.g. ".png".
func (d *Download) Extension() string {
	ct := d.ContentType
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	_, sub, ok := strings.Cut(strings.TrimSpace(ct), "/")
	if !ok || sub == "" {
		return ""
	}
	return "." + sub
}

// OpenDownload starts an authenticated streamed GET of {base}{path}; an
// absolute URL is used as is. A non-200 status is returned as *StatusError.
func (c *Client) OpenDownload(ctx context.Context, path string) (*Download, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.baseURL + path
	}
	resp, err := c.do(ctx, http.MethodGet, url, nil, false)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(url, resp)
	}
	return &Download{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}

// Ping checks that the credentials are accepted by fetching one quick-list item.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Fetch(ctx, c.QuickListURL(1))
	return err
}

func (c *Client) do(ctx context.Context, method, url string, body io.Reader, jsonContent bool) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authentication", c.creds.Header())
	if jsonContent {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func statusError(url string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{URL: url, StatusCode: resp.StatusCode, Body: body}
}

var _ pager.Fetcher = (*Client)(nil)
