package custodian

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Error is a structured failure reported by the custodian API.
type Error struct {
	// StatusCode is the HTTP status of the failing response.
	StatusCode int `json:"-"`
	// Code is the machine-readable error code, e.g. "not_found".
	Code string `json:"code"`
	// Message is the human-readable error message.
	Message string `json:"message"`
	// Details carries optional structured context.
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// IsUnauthorized reports whether the API key was rejected.
func (e *Error) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.Code == "unauthorized"
}

// IsForbidden reports whether the API key lacks the required permission.
func (e *Error) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden || e.Code == "forbidden"
}

// IsNotFound reports whether the referenced resource does not exist.
func (e *Error) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.Code == "not_found"
}

// IsRateLimited reports whether the request was throttled. Callers should
// back off before retrying; the client never retries on its own.
func (e *Error) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limited"
}

// IsRetryable reports whether retrying the request may succeed.
func (e *Error) IsRetryable() bool {
	return e.IsRateLimited() || e.StatusCode >= http.StatusInternalServerError
}

// AsError returns the *Error wrapped anywhere in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// parseError builds an *Error from a non-2xx response body. The body is
// expected to be {"error": {"code": ..., "message": ...}} but malformed
// bodies still yield a usable error.
func parseError(statusCode int, body []byte) error {
	var wrapped struct {
		Error Error `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error.Message != "" {
		wrapped.Error.StatusCode = statusCode
		return &wrapped.Error
	}

	var flat Error
	if err := json.Unmarshal(body, &flat); err == nil && flat.Message != "" {
		flat.StatusCode = statusCode
		return &flat
	}

	return &Error{
		StatusCode: statusCode,
		Code:       codeForStatus(statusCode),
		Message:    string(body),
	}
}

func codeForStatus(statusCode int) string {
	switch statusCode {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "api_error"
	}
}
