package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/recipelib/recipes-go/internal/model"
)

var ErrEmptyBody = errors.New("empty response body")

// Error is a failed API call. StatusCode is 0 when no response arrived
// (network failure); otherwise Body holds the response body as received.
type Error struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if !e.HasResponse() {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasResponse reports whether the server answered at all.
func (e *Error) HasResponse() bool {
	return e.StatusCode != 0
}

// Unauthorized reports whether the server answered 401.
func (e *Error) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// ValidationErrors returns the body's "errors" field. It is nil when there was
// no response, the body is not JSON, or the field is absent or empty.
func (e *Error) ValidationErrors() model.ValidationErrors {
	if !e.HasResponse() || len(e.Body) == 0 {
		return nil
	}

	var body struct {
		Errors model.ValidationErrors `json:"errors"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return nil
	}
	if len(body.Errors) == 0 {
		return nil
	}
	return body.Errors
}

// AsError unwraps err to an *Error.
func AsError(err error) (*Error, bool) {
	var terr *Error
	if errors.As(err, &terr) {
		return terr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	terr, ok := AsError(err)
	return ok && terr.Unauthorized()
}
