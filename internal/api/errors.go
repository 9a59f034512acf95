package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the uniform failure surfaced by the adapter. Transport-level
// failures (DNS, timeout, connection refused) carry Status 0; HTTP-level
// failures carry the response status. Callers get one handling path and
// distinguish by inspecting Status.
type Error struct {
	Status  int
	Message string

	// Authenticated records whether the rejected call was made with
	// session auth. A 401 only means a stale token when it was.
	Authenticated bool
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// IsTransport reports whether err is a network-level failure with no
// response received.
func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == 0
}

// IsAuthExpired reports whether err is a 401-class rejection of an
// authenticated call, i.e. the stored token is stale. A 401 from an
// unauthenticated call (wrong password on login) is an ordinary rejection.
func IsAuthExpired(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) &&
		apiErr.Status == http.StatusUnauthorized &&
		apiErr.Authenticated
}
