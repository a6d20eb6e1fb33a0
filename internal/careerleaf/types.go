package careerleaf

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dbsmedya/clmigrate/internal/types"
)

// Resource names a platform collection.
type Resource string

const (
	Employers  Resource = "employers"
	Candidates Resource = "candidates"
)

// Path returns the API path of the collection.
func (r Resource) Path() string {
	switch r {
	case Employers:
		return "/app/api/v1/employers/"
	case Candidates:
		return "/app/api/v1/candidates"
	default:
		return "/app/api/v1/" + string(r) + "/"
	}
}

func (r Resource) String() string {
	return string(r)
}

// ParseResource maps a CLI resource name to a Resource.
func ParseResource(name string) (Resource, error) {
	switch name {
	case "employers":
		return Employers, nil
	case "jobseekers", "candidates":
		return Candidates, nil
	}
	return "", fmt.Errorf("unknown resource %q", name)
}

const quickListPath = "/app/api/v1/employers/quick-list"

// ID is a record identifier that the platform sends either as a JSON number
// or as a string.
type ID string

// UnmarshalJSON accepts numbers, strings and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("identifier must be a number or string: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Int64 coerces the identifier to an integer.
func (id ID) Int64() (int64, error) {
	return types.ToInt64(string(id))
}

func (id ID) String() string {
	return string(id)
}

// IDSet is the snapshot of identifiers already present on the platform.
type IDSet map[int64]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// User is an employer contact submitted with a new employer.
type User struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Employer is the create payload for the employers collection.
type Employer struct {
	Name  string  `json:"name"`
	OldID int64   `json:"old_id"`
	URL   *string `json:"url"`
	Users []User  `json:"users"`
}

// EmployerSummary is the part of an exported employer document the
// exporter needs; the full document is kept as raw JSON.
type EmployerSummary struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Candidate is the part of an exported job seeker document the exporter needs.
type Candidate struct {
	ID   ID `json:"id"`
	User struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"user"`
	Profile struct {
		PhotoURL string `json:"photo_url"`
	} `json:"profile"`
	Resumes []Resume `json:"resumes"`
}

// Resume references one uploaded resume of a candidate.
type Resume struct {
	ID       ID     `json:"id"`
	FileName string `json:"file_name"`
}

// ResumePath returns the download path for a resume; resumeID "auto" selects
// the platform-generated resume.
func ResumePath(candidateID ID, resumeID string) string {
	return fmt.Sprintf("/app/api/v1/candidates/%s/resumes/%s", candidateID, resumeID)
}
