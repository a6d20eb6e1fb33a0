// Package failures records per-record import failures for later review.
package failures

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Kind classifies a failure.
type Kind string

const (
	// KindData is a record that could not be turned into a payload.
	KindData Kind = "data"
	// KindRejected is a payload the platform answered with a non-success status.
	KindRejected Kind = "rejected"
	// KindTransport is a payload that never got an answer.
	KindTransport Kind = "transport"
)

// Failure describes one record that was not imported.
type Failure struct {
	Resource   string
	Kind       Kind
	Identity   string // "name=Acme", "full_name=...", "id=42"
	OldID      int64
	StatusCode int
	Payload    []byte
	Response   []byte
	Err        error
}

func (f Failure) errString() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// Recorder receives failures. Implementations must tolerate being called
// once per failed record for the whole run.
type Recorder interface {
	Record(ctx context.Context, f Failure) error
}

// LogRecorder writes failures to the failure log channel.
type LogRecorder struct {
	log *zap.SugaredLogger
}

// NewLogRecorder creates a recorder writing to log.
func NewLogRecorder(log *zap.SugaredLogger) *LogRecorder {
	return &LogRecorder{log: log}
}

// Record implements Recorder.
func (r *LogRecorder) Record(_ context.Context, f Failure) error {
	switch f.Kind {
	case KindData:
		r.log.Errorw("failed, data problem",
			"identity", f.Identity,
			"old_id", f.OldID,
			"error", f.errString(),
		)
	default:
		r.log.Errorw("failed to import data",
			"kind", string(f.Kind),
			"old_id", f.OldID,
			"status_code", f.StatusCode,
			"payload", string(f.Payload),
			"response", string(f.Response),
			"error", f.errString(),
		)
	}
	return nil
}

// Multi fans a failure out to several recorders. Every recorder is called;
// their errors are joined.
type Multi []Recorder

// Record implements Recorder.
func (m Multi) Record(ctx context.Context, f Failure) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ctx, f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards failures.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Failure) error { return nil }
