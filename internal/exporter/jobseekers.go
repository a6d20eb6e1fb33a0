package exporter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dbsmedya/clmigrate/internal/careerleaf"
	"github.com/dbsmedya/clmigrate/internal/logger"
)

const autoResume = "resume-auto.pdf"

// Downloader opens authenticated asset streams.
type Downloader interface {
	OpenDownload(ctx context.Context, path string) (*careerleaf.Download, error)
}

// Jobseekers writes the candidate document, photo and resumes. The
// generated resume, "<prefix>resume-auto.pdf", is the sentinel.
type Jobseekers struct {
	store           *Store
	client          Downloader
	saveProfileData bool
	logger          *logger.Logger
}

// NewJobseekers creates the job seeker materializer. With saveProfileData
// unset only the assets are written.
func NewJobseekers(store *Store, client Downloader, saveProfileData bool, log *logger.Logger) *Jobseekers {
	if log == nil {
		log = logger.NewNop()
	}
	return &Jobseekers{store: store, client: client, saveProfileData: saveProfileData, logger: log}
}

// Prefix returns the sanitized file prefix of a candidate.
func (m *Jobseekers) Prefix(c careerleaf.Candidate) string {
	return Sanitize(fmt.Sprintf("%s_%s_%s_", c.ID, c.User.FirstName, c.User.LastName))
}

// Save implements Materializer.
func (m *Jobseekers) Save(ctx context.Context, raw json.RawMessage) (Outcome, error) {
	var c careerleaf.Candidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}

	prefix := m.Prefix(c)
	out := Outcome{Prefix: prefix}
	if m.store.Exists(prefix + autoResume) {
		return out, nil
	}
	m.logger.Debugw("processing", "prefix", prefix)

	if m.saveProfileData {
		if err := m.store.WriteJSON(prefix+"data.json", raw, false); err != nil {
			return out, notWritten(err)
		}
	}

	type asset struct {
		path, name string
		detectExt  bool
	}
	var assets []asset
	if c.Profile.PhotoURL != "" {
		assets = append(assets, asset{path: c.Profile.PhotoURL, name: prefix + "photo", detectExt: true})
	}
	assets = append(assets, asset{path: careerleaf.ResumePath(c.ID, "auto"), name: prefix + autoResume})
	for _, r := range c.Resumes {
		assets = append(assets, asset{
			path: careerleaf.ResumePath(c.ID, r.ID.String()),
			name: prefix + "resume-" + Sanitize(r.FileName),
		})
	}

	for _, a := range assets {
		err := m.download(ctx, a.path, a.name, a.detectExt)
		if err == nil {
			out.Assets++
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, ctxErr
		}
		out.AssetFailures++
	}

	out.Saved = true
	return out, nil
}

func (m *Jobseekers) download(ctx context.Context, path, name string, detectExt bool) error {
	d, err := m.client.OpenDownload(ctx, path)
	if err != nil {
		var se *careerleaf.StatusError
		if errors.As(err, &se) {
			m.logger.Errorw("request failed", "url", se.URL, "status_code", se.StatusCode, "body", string(se.Body))
		} else {
			m.logger.Errorw("request failed", "path", path, "error", err)
		}
		return err
	}
	defer d.Body.Close()

	if detectExt {
		name += d.Extension()
	}
	if _, err := m.store.WriteStream(name, d.Body); err != nil {
		m.logger.Errorw("download failed", "file", name, "error", err)
		return err
	}
	return nil
}
