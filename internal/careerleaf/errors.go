package careerleaf

import (
	"errors"
	"fmt"
)

var (
	// ErrUpdateNotImplemented is returned by Update. Records are only ever created.
	ErrUpdateNotImplemented = errors.New("update is not implemented")
	// ErrEncodeRecord is returned by Create when the record cannot be encoded.
	ErrEncodeRecord = errors.New("cannot encode record")
)

// StatusError represents an unexpected HTTP status from the platform.
type StatusError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}
