package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAccount is returned when the commerce system has no account for an email.
	ErrNoAccount = errors.New("no account found for this email address")
	// ErrNoContent is returned when the corpus directory holds no documents at build time.
	ErrNoContent = errors.New("no content available to index")
	// ErrProvisionFailed is returned when fetching the bundled content snapshot fails,
	// so callers can tell a network/config failure apart from an intentionally empty corpus.
	ErrProvisionFailed = errors.New("content provisioning failed")
	// ErrNoIndex is returned when retrieval is attempted without a built index.
	ErrNoIndex = errors.New("vector index not initialized")
	// ErrInvalidQuery is returned for query input that fails validation.
	ErrInvalidQuery = errors.New("invalid query input")
	// ErrAggregation wraps any unexpected failure inside account aggregation.
	ErrAggregation = errors.New("failed to extract account data")
)

// UpstreamError carries the status and message of a failed commerce API call.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return e.Message
}

// IsUpstreamError reports whether err is (or wraps) an UpstreamError.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
