package adminsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorResponse is the body of every non-2xx response from the API.
type ErrorResponse struct {
	Errors []string `json:"errors"`
}

// APIError is returned for any non-2xx response.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Errors are the messages from the response body, possibly empty
	Errors []string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("adminusers: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("adminusers: %d %s", e.StatusCode, strings.Join(e.Errors, "; "))
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsUnauthorized reports whether err is an APIError with status 401. Locked
// accounts also answer 401 with a distinct message.
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

// IsConflict reports whether err is an APIError with status 409.
func IsConflict(err error) bool { return hasStatus(err, http.StatusConflict) }

// IsTooManyRequests reports whether err is an APIError with status 429.
func IsTooManyRequests(err error) bool { return hasStatus(err, http.StatusTooManyRequests) }

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// parseErrorResponse turns an error response into an *APIError. Bodies that
// are not in the {"errors": [...]} shape yield an APIError without messages.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Errors = errResp.Errors
	}
	return apiErr
}
