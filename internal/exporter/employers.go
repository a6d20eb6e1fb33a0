package exporter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dbsmedya/clmigrate/internal/careerleaf"
	"github.com/dbsmedya/clmigrate/internal/logger"
)

// Employers writes "<name>_<id>data.json" per employer. The data file is
// its own sentinel.
type Employers struct {
	store  *Store
	logger *logger.Logger
}

// NewEmployers creates the employer materializer.
func NewEmployers(store *Store, log *logger.Logger) *Employers {
	if log == nil {
		log = logger.NewNop()
	}
	return &Employers{store: store, logger: log}
}

// Prefix returns the sanitized file prefix of an employer.
func (m *Employers) Prefix(e careerleaf.EmployerSummary) string {
	return fmt.Sprintf("%s_%s", Sanitize(e.Name), Sanitize(e.ID.String()))
}

// Save implements Materializer.
func (m *Employers) Save(_ context.Context, raw json.RawMessage) (Outcome, error) {
	var e careerleaf.EmployerSummary
	if err := json.Unmarshal(raw, &e); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}

	prefix := m.Prefix(e)
	dataFile := prefix + "data.json"
	if m.store.Exists(dataFile) {
		return Outcome{Prefix: prefix}, nil
	}

	m.logger.Debugw("processing", "prefix", prefix)
	if err := m.store.WriteJSON(dataFile, raw, true); err != nil {
		return Outcome{Prefix: prefix}, notWritten(err)
	}
	return Outcome{Prefix: prefix, Saved: true}, nil
}
