package source

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dbsmedya/clmigrate/internal/careerleaf"
	"github.com/dbsmedya/clmigrate/internal/types"
)

var (
	// ErrMissingName marks a node without an employer name.
	ErrMissingName = errors.New("employer name is missing")
	// ErrNoUsers marks an employer without a single usable contact.
	ErrNoUsers = errors.New("employer must have at least one user")
)

var schemePattern = regexp.MustCompile(`^https?:`)

// NodeID returns the integer id of a node.
func NodeID(n Node) (int64, error) {
	raw, _ := n.Field("id")
	id, err := types.ToInt64(raw)
	if err != nil {
		return 0, fmt.Errorf("malformed id %q: %w", raw, err)
	}
	return id, nil
}

// RecordIdentity names a node for the failure log: the first present of
// name, full_name and id, as "key=value".
func RecordIdentity(n Node) string {
	for _, k := range []string{"name", "full_name", "id"} {
		if v, ok := n.Field(k); ok {
			return k + "=" + v
		}
	}
	return ""
}

// DeriveEmployer builds the create payload for one grouped employer.
func DeriveEmployer(n Node, id int64, contacts []Contact) (careerleaf.Employer, error) {
	name, ok := n.Field("name")
	if !ok {
		return careerleaf.Employer{}, ErrMissingName
	}

	users := make([]careerleaf.User, 0, len(contacts))
	for _, c := range contacts {
		first, last := SplitName(c.FullName)
		users = append(users, careerleaf.User{FirstName: first, LastName: last, Email: c.Email})
	}
	if len(users) == 0 {
		return careerleaf.Employer{}, fmt.Errorf("%w: %d", ErrNoUsers, id)
	}

	var url *string
	if raw, ok := n.Field("url"); ok {
		fixed := FixURL(raw)
		url = &fixed
	}

	return careerleaf.Employer{
		Name:  name,
		OldID: id,
		URL:   url,
		Users: users,
	}, nil
}

// SplitName splits on single spaces: the first token is the first name and
// the remaining tokens, re-joined with a space, are the last name.
func SplitName(fullName string) (first, last string) {
	parts := strings.Split(fullName, " ")
	return parts[0], strings.Join(parts[1:], " ")
}

// FixURL prefixes http:// unless the value already starts with a scheme.
func FixURL(url string) string {
	if url == "" || schemePattern.MatchString(url) {
		return url
	}
	return "http://" + url
}
