package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/gookit/color"

	"github.com/dbsmedya/clmigrate/internal/config"
)

// fakeCareerLeaf serves the endpoints the commands use: the employer
// quick-list, employer creation and one-record-per-page listings.
type fakeCareerLeaf struct {
	mu         sync.Mutex
	existing   []int64
	created    []map[string]interface{}
	reject     map[string]bool
	employers  []string
	candidates []string
	srv        *httptest.Server
}

func newFakeCareerLeaf(t *testing.T) *fakeCareerLeaf {
	t.Helper()
	color.Disable()

	f := &fakeCareerLeaf{reject: map[string]bool{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeCareerLeaf) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authentication") != "CL key/secret" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/app/api/v1/employers/quick-list":
		results := make([]map[string]interface{}, 0, len(f.existing))
		for _, id := range f.existing {
			results = append(results, map[string]interface{}{"old_id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": results, "next": nil})
	case r.URL.Path == "/app/api/v1/employers/" && r.Method == http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		_ = json.Unmarshal(body, &payload)
		name, _ := payload["name"].(string)
		if f.reject[name] {
			http.Error(w, `{"name":["rejected"]}`, http.StatusBadRequest)
			return
		}
		f.created = append(f.created, payload)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	case r.URL.Path == "/app/api/v1/employers/":
		f.list(w, r, f.employers)
	case r.URL.Path == "/app/api/v1/candidates":
		f.list(w, r, f.candidates)
	default:
		_, _ = w.Write([]byte("asset " + r.URL.Path))
	}
}

func (f *fakeCareerLeaf) list(w http.ResponseWriter, r *http.Request, records []string) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page == 0 {
		page = 1
	}
	var next interface{}
	if page < len(records) {
		next = fmt.Sprintf("%s%s?page_size=1&page=%d", f.srv.URL, r.URL.Path, page+1)
	}
	results := []json.RawMessage{}
	if page <= len(records) {
		results = append(results, json.RawMessage(records[page-1]))
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"results": results, "next": next})
}

func (f *fakeCareerLeaf) createdNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.created))
	for _, p := range f.created {
		name, _ := p["name"].(string)
		names = append(names, name)
	}
	return names
}

// testConfig points every path of a default config into dir.
func testConfig(dir, url string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Remote.URL = url
	cfg.Remote.APIKey = "key"
	cfg.Remote.APISecret = "secret"
	cfg.Employers.SaveDir = filepath.Join(dir, "employers")
	cfg.Jobseekers.SaveDir = filepath.Join(dir, "jobseekers")
	cfg.Lock.Path = filepath.Join(dir, "clmigrate.lock")
	cfg.Logging.Output = filepath.Join(dir, "run.log")
	cfg.Logging.FailureOutput = filepath.Join(dir, "failures.log")
	return cfg
}
