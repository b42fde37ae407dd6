package generation

import (
	"errors"
	"fmt"
)

// Kind classifies a generation failure so callers can decide between
// aborting a batch (auth), retrying (rate limit, transient), or recording
// and moving on (content policy, unknown).
type Kind string

const (
	KindAuth          Kind = "AUTH"
	KindRateLimit     Kind = "RATE_LIMIT"
	KindContentPolicy Kind = "CONTENT_POLICY"
	KindTransient     Kind = "TRANSIENT"
	KindUnknown       Kind = "UNKNOWN"
)

// Error is a classified failure from the external API.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("generation %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("generation %s: %s", e.Kind, e.Message)
}

// KindOf extracts the classification from err, defaulting to UNKNOWN.
func KindOf(err error) Kind {
	var genErr *Error
	if errors.As(err, &genErr) {
		return genErr.Kind
	}
	return KindUnknown
}

// IsAuth reports whether err indicates a bad or missing API key.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}

// retryable kinds are the only ones worth a second attempt.
func retryable(k Kind) bool {
	return k == KindRateLimit || k == KindTransient
}
