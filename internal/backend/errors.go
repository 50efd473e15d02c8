package backend

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoToken reports a precondition failure: the caller asked for an
// authenticated operation without a bearer token. No HTTP request is made.
var ErrNoToken = errors.New("missing access token, request not sent")

// APIError is a non-2xx backend response translated into a recoverable,
// user-presentable error. Message comes from the response body when the
// backend provides one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// IsAPIError unwraps err into an *APIError when the backend rejected the
// request, as opposed to a network-level failure.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
