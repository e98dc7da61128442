package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned on HTTP 401. By the time a caller sees
	// it, the credential store has already been invalidated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited is returned on HTTP 429. Session state is untouched.
	ErrRateLimited = errors.New("rate limited")

	// ErrNotFound is returned on HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable covers transport-level failures and undecodable
	// responses. Nothing can be assumed about server-side effects.
	ErrUnavailable = errors.New("server unavailable")
)

// ClientError carries a server-supplied rejection message for 4xx
// responses that are not part of the sentinel set above (typically
// validation failures such as a duplicate document number).
type ClientError struct {
	Code    int
	Message string
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("request rejected (%d): %s", e.Code, e.Message)
}
